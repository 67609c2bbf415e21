package file

import (
	"errors"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/gobeaver/valkit"
)

// IsImageName is the validator's registered factory name.
const IsImageName = "fileisimage"

// Message codes
const (
	CodeFalseType   = "fileIsImageFalseType"
	CodeNotDetected = "fileIsImageNotDetected"
	CodeNotReadable = "fileIsImageNotReadable"
)

// Option keys
const (
	OptionMimeType          = "mimeType"
	OptionEnableHeaderCheck = "enableHeaderCheck"
	OptionMagicFile         = "magicFile"
	OptionDetector          = "detector"
)

func isImageTemplates() []valkit.Message {
	return []valkit.Message{
		{Key: CodeFalseType, Text: "File is no image, '%type%' detected"},
		{Key: CodeNotDetected, Text: "The mimetype could not be detected from the file"},
		{Key: CodeNotReadable, Text: "File is not readable or does not exist"},
	}
}

// IsImage checks that a file is an image: its MIME type must be in the
// accepted set and, with the header check enabled, its leading bytes must
// carry a real image header.
//
// Setters are not safe to call concurrently with IsValid.
type IsImage struct {
	*valkit.Messenger

	mimeTypes   *MimeTypeSet
	headerCheck bool
	magicFile   string
	detector    Detector
}

// NewIsImage creates an image validator. options may be a MIME list (comma
// or space separated string, or []string) or an option record with the keys
// "mimeType", "enableHeaderCheck", "magicFile" and "detector" plus the shared
// message options. Without "mimeType" DefaultImageTypes is accepted.
func NewIsImage(options any) (*IsImage, error) {
	v := &IsImage{
		Messenger: valkit.NewMessenger(isImageTemplates()...),
		mimeTypes: NewMimeTypeSet(),
		detector:  defaultDetector,
	}

	var opts valkit.Options
	switch o := options.(type) {
	case string, []string:
		opts = valkit.Options{OptionMimeType: o}
	default:
		parsed, err := valkit.ParseOptions(options)
		if err != nil {
			return nil, err
		}
		opts = parsed
	}

	if raw, ok := opts[OptionMimeType]; ok && raw != nil {
		if err := v.SetMimeType(raw); err != nil {
			return nil, err
		}
	} else {
		v.mimeTypes = NewMimeTypeSet(DefaultImageTypes...)
	}

	check, ok, err := opts.Bool(OptionEnableHeaderCheck)
	if err != nil {
		return nil, err
	}
	if ok {
		v.EnableHeaderCheck(check)
	}

	path, ok, err := opts.String(OptionMagicFile)
	if err != nil {
		return nil, err
	}
	if ok && path != "" {
		if err := v.SetMagicFile(path); err != nil {
			return nil, err
		}
	}

	if raw, ok := opts[OptionDetector]; ok {
		d, isDetector := raw.(Detector)
		if !isDetector || d == nil {
			return nil, valkit.NewInvalidArgumentError("NewIsImage", "option '%s' must be a file.Detector", OptionDetector)
		}
		v.SetDetector(d)
	}

	if err := v.ApplyOptions(opts); err != nil {
		return nil, err
	}
	return v, nil
}

// SetMimeType replaces the accepted MIME types.
func (v *IsImage) SetMimeType(mimeTypes any) error {
	return v.mimeTypes.Set(mimeTypes)
}

// AddMimeType merges mimeTypes into the accepted set.
func (v *IsImage) AddMimeType(mimeTypes any) error {
	return v.mimeTypes.Add(mimeTypes)
}

// MimeType returns the accepted MIME types joined by commas.
func (v *IsImage) MimeType() string {
	return v.mimeTypes.String()
}

// MimeTypes returns the accepted MIME types in order.
func (v *IsImage) MimeTypes() []string {
	return v.mimeTypes.List()
}

// EnableHeaderCheck toggles the binary header check.
func (v *IsImage) EnableHeaderCheck(enabled bool) {
	v.headerCheck = enabled
}

// HeaderCheck reports whether the binary header check is enabled.
func (v *IsImage) HeaderCheck() bool {
	return v.headerCheck
}

// SetMagicFile loads the magic file at path and detects types with it.
func (v *IsImage) SetMagicFile(path string) error {
	db, err := LoadMagicFile(path)
	if err != nil {
		return valkit.NewInvalidArgumentError("SetMagicFile", "the given magicfile ('%s') could not be read: %v", path, err)
	}
	v.magicFile = path
	v.detector = NewMagicDetector(db)
	return nil
}

// MagicFile returns the configured magic file path.
func (v *IsImage) MagicFile() string {
	return v.magicFile
}

// SetDetector replaces the MIME detector.
func (v *IsImage) SetDetector(d Detector) {
	if d == nil {
		d = defaultDetector
	}
	v.detector = d
}

// Detector returns the MIME detector.
func (v *IsImage) Detector() Detector {
	return v.detector
}

// Option returns the named option.
func (v *IsImage) Option(name string) (any, bool) {
	switch name {
	case OptionMimeType:
		return v.MimeType(), true
	case OptionEnableHeaderCheck:
		return v.headerCheck, true
	case OptionMagicFile:
		return v.magicFile, true
	case OptionDetector:
		return v.detector, true
	}
	return v.Messenger.Option(name)
}

// IsValid reports whether value is a readable image file. value may be a
// FileDescriptor, a *FileDescriptor, a path or a *multipart.FileHeader.
func (v *IsImage) IsValid(value any) bool {
	valid := v.validate(value)
	valkit.Record(IsImageName, valid, v.Messages())
	return valid
}

func (v *IsImage) validate(value any) bool {
	v.Reset()

	src, ok := describe(value)
	if !ok || src.status != 0 {
		v.Error(CodeNotReadable, src.name)
		return false
	}

	rc, err := src.open()
	if err != nil {
		valkit.Logger().WithFields(logrus.Fields{
			"validator": IsImageName,
			"file":      src.name,
			"error":     err,
		}).Debug("file not readable")
		v.Error(CodeNotReadable, src.name)
		return false
	}
	defer rc.Close()

	header := make([]byte, HeaderSize)
	n, err := io.ReadFull(rc, header)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		v.Error(CodeNotReadable, src.name)
		return false
	}
	header = header[:n]

	mimeType := stripParams(v.detector.Detect(header))
	if mimeType == "" {
		mimeType = stripParams(src.declared)
	}
	if mimeType == "" {
		v.Error(CodeNotDetected, src.name)
		return false
	}

	if !v.mimeTypes.Match(mimeType) {
		v.Error(CodeFalseType, src.name, "type", mimeType)
		return false
	}

	if v.headerCheck && !HasImageHeader(header, rc, v.signatures()) {
		v.Error(CodeFalseType, src.name, "type", mimeType)
		return false
	}

	return true
}

func (v *IsImage) signatures() []Signature {
	if md, ok := v.detector.(*MagicDetector); ok {
		return md.Signatures()
	}
	return builtinSignatures
}
