package file

import (
	"bytes"
	"net/http"
	"strings"
	"sync/atomic"
)

// Signature identifies a file format by the bytes found at an offset.
type Signature struct {
	MIME   string
	Offset int    // Offset from start of file
	Magic  []byte // Magic bytes to match
}

// Match reports whether data carries the signature.
func (s Signature) Match(data []byte) bool {
	if s.Offset < 0 || len(s.Magic) == 0 || s.Offset+len(s.Magic) > len(data) {
		return false
	}
	return bytes.Equal(data[s.Offset:s.Offset+len(s.Magic)], s.Magic)
}

// HeaderSize is the number of leading bytes read for detection.
const HeaderSize = 512

// builtinSignatures contains file signatures for MIME detection
// Ordered by specificity (most specific first)
var builtinSignatures = []Signature{
	// Images
	{MIME: "image/jpeg", Offset: 0, Magic: []byte{0xFF, 0xD8, 0xFF}},
	{MIME: "image/png", Offset: 0, Magic: []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	{MIME: "image/gif", Offset: 0, Magic: []byte("GIF87a")},
	{MIME: "image/gif", Offset: 0, Magic: []byte("GIF89a")},
	{MIME: "image/webp", Offset: 8, Magic: []byte("WEBP")}, // After RIFF header
	{MIME: "image/bmp", Offset: 0, Magic: []byte("BM")},
	{MIME: "image/tiff", Offset: 0, Magic: []byte{0x49, 0x49, 0x2A, 0x00}}, // Little endian
	{MIME: "image/tiff", Offset: 0, Magic: []byte{0x4D, 0x4D, 0x00, 0x2A}}, // Big endian
	{MIME: "image/vnd.microsoft.icon", Offset: 0, Magic: []byte{0x00, 0x00, 0x01, 0x00}},
	{MIME: "image/vnd.adobe.photoshop", Offset: 0, Magic: []byte("8BPS")},
	{MIME: "image/jp2", Offset: 0, Magic: []byte{0x00, 0x00, 0x00, 0x0C, 'j', 'P', ' ', ' ', 0x0D, 0x0A, 0x87, 0x0A}},
	{MIME: "image/heic", Offset: 4, Magic: []byte("ftypheic")},
	{MIME: "image/heic", Offset: 4, Magic: []byte("ftypmif1")},
	{MIME: "image/avif", Offset: 4, Magic: []byte("ftypavif")},

	// Documents
	{MIME: "application/pdf", Offset: 0, Magic: []byte("%PDF-")},
	{MIME: "application/postscript", Offset: 0, Magic: []byte("%!PS")},

	// Archives
	{MIME: "application/zip", Offset: 0, Magic: []byte{0x50, 0x4B, 0x03, 0x04}},
	{MIME: "application/zip", Offset: 0, Magic: []byte{0x50, 0x4B, 0x05, 0x06}}, // Empty ZIP
	{MIME: "application/gzip", Offset: 0, Magic: []byte{0x1F, 0x8B}},
	{MIME: "application/x-tar", Offset: 257, Magic: []byte("ustar")}, // POSIX tar
	{MIME: "application/x-rar-compressed", Offset: 0, Magic: []byte("Rar!\x1a\x07")},
	{MIME: "application/x-7z-compressed", Offset: 0, Magic: []byte{'7', 'z', 0xBC, 0xAF, 0x27, 0x1C}},

	// Audio / video
	{MIME: "audio/mpeg", Offset: 0, Magic: []byte("ID3")},
	{MIME: "audio/flac", Offset: 0, Magic: []byte("fLaC")},
	{MIME: "audio/ogg", Offset: 0, Magic: []byte("OggS")},
	{MIME: "audio/wav", Offset: 8, Magic: []byte("WAVE")},
	{MIME: "video/x-msvideo", Offset: 8, Magic: []byte("AVI ")},
	{MIME: "video/webm", Offset: 0, Magic: []byte{0x1A, 0x45, 0xDF, 0xA3}},
	{MIME: "video/mp4", Offset: 4, Magic: []byte("ftyp")},

	// Executables
	{MIME: "application/x-msdownload", Offset: 0, Magic: []byte("MZ")},
	{MIME: "application/x-executable", Offset: 0, Magic: []byte{0x7F, 'E', 'L', 'F'}},
}

// Detector guesses a MIME type from the leading bytes of a file. It returns
// an empty string when it cannot tell.
type Detector interface {
	Detect(header []byte) string
}

// DetectorFunc adapts a function to Detector.
type DetectorFunc func(header []byte) string

// Detect calls f(header).
func (f DetectorFunc) Detect(header []byte) string {
	return f(header)
}

// MagicDetector detects MIME types from the signatures of an optional magic
// database followed by the built-in table. It is safe for concurrent use;
// the database can be swapped while detections run.
type MagicDetector struct {
	db atomic.Pointer[MagicDB]
}

// NewMagicDetector creates a detector over db, which may be nil.
func NewMagicDetector(db *MagicDB) *MagicDetector {
	d := &MagicDetector{}
	if db != nil {
		d.db.Store(db)
	}
	return d
}

// Database returns the current magic database, or nil.
func (d *MagicDetector) Database() *MagicDB {
	return d.db.Load()
}

// SetDatabase swaps the magic database.
func (d *MagicDetector) SetDatabase(db *MagicDB) {
	d.db.Store(db)
}

// Detect implements Detector.
func (d *MagicDetector) Detect(header []byte) string {
	if db := d.db.Load(); db != nil {
		if mime := matchSignatures(db.Signatures, header); mime != "" {
			return mime
		}
	}
	return DetectMIMEFromBytes(header)
}

// Signatures returns the signatures the detector consults, magic database first.
func (d *MagicDetector) Signatures() []Signature {
	var sigs []Signature
	if db := d.db.Load(); db != nil {
		sigs = append(sigs, db.Signatures...)
	}
	return append(sigs, builtinSignatures...)
}

// DetectMIMEFromBytes detects the MIME type of data from the built-in
// signatures, falling back to http.DetectContentType. Empty data yields "".
func DetectMIMEFromBytes(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	if mime := matchSignatures(builtinSignatures, data); mime != "" {
		return mime
	}

	if isSVG(data) {
		return "image/svg+xml"
	}

	return stripParams(http.DetectContentType(data))
}

func matchSignatures(sigs []Signature, data []byte) string {
	for _, sig := range sigs {
		if sig.Match(data) {
			return sig.MIME
		}
	}
	return ""
}

// isSVG checks if the data looks like an SVG file
func isSVG(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	if !bytes.HasPrefix(trimmed, []byte("<?xml")) && !bytes.HasPrefix(trimmed, []byte("<svg")) {
		return false
	}
	return bytes.Contains(trimmed, []byte("<svg"))
}

// stripParams removes MIME parameters such as "; charset=utf-8".
func stripParams(mime string) string {
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = mime[:idx]
	}
	return strings.TrimSpace(mime)
}

// defaultDetector serves validators without a magic file.
var defaultDetector = NewMagicDetector(nil)
