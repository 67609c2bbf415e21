package file

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobeaver/valkit"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 60), B: 128, A: 255})
		}
	}
	return img
}

func encodeJPEG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(), nil))
	return buf.Bytes()
}

func encodePNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage()))
	return buf.Bytes()
}

func encodeGIF(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, testImage(), nil))
	return buf.Bytes()
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// ppmData is a 1x1 binary pixmap, a format with no registered Go decoder.
var ppmData = []byte("P6\n1 1\n255\n\x00\x00\x00")

func TestIsImage_MimeTypeOptions(t *testing.T) {
	picture := writeFile(t, t.TempDir(), "picture.jpg", encodeJPEG(t))
	file := FileDescriptor{Path: picture, Name: "picture.jpg", Type: "image/jpeg", Size: 1}

	tests := []struct {
		name     string
		mimeType any
		want     bool
	}{
		{"default list", nil, true},
		{"bare subtype", "jpeg", true},
		{"unknown type", "test/notype", false},
		{"comma list", "image/gif, image/jpeg", true},
		{"list with unknown", []string{"image/vasa", "image/jpeg"}, true},
		{"list with bare token", []string{"image/jpeg", "gif"}, true},
		{"list without match", []string{"image/gif", "gif"}, false},
		{"partial subtype", "image/jp", false},
		{"longer subtype", "image/jpg2000", false},
		{"jpeg2000", "image/jpeg2000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewIsImage(valkit.Options{
				OptionMimeType:          tt.mimeType,
				OptionEnableHeaderCheck: true,
			})
			require.NoError(t, err)

			assert.Equal(t, tt.want, v.IsValid(file))
			if !tt.want {
				assert.True(t, v.Messages().Has(CodeFalseType))
			}
		})
	}
}

func TestNewIsImage_Defaults(t *testing.T) {
	v, err := NewIsImage(nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultImageTypes, v.MimeTypes())
	assert.False(t, v.HeaderCheck())
	assert.Empty(t, v.MagicFile())

	v, err = NewIsImage(valkit.Options{OptionEnableHeaderCheck: true})
	require.NoError(t, err)
	assert.Equal(t, DefaultImageTypes, v.MimeTypes())
	assert.True(t, v.HeaderCheck())
}

func TestNewIsImage_InvalidOptions(t *testing.T) {
	tests := []struct {
		name    string
		options any
	}{
		{"number", 42},
		{"empty mime list", ""},
		{"header check not bool", valkit.Options{OptionEnableHeaderCheck: "yes"}},
		{"missing magic file", valkit.Options{OptionMagicFile: "/nonexistent/magic.yaml"}},
		{"bad detector", valkit.Options{OptionDetector: "libmagic"}},
		{"unknown message key", valkit.Options{valkit.OptionMessages: map[string]string{"nope": "x"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewIsImage(tt.options)
			require.Error(t, err)
			assert.True(t, valkit.IsInvalidArgument(err))
		})
	}
}

func TestIsImage_MimeTypeAccessors(t *testing.T) {
	v, err := NewIsImage("image/gif,video,text/test")
	require.NoError(t, err)
	assert.Equal(t, "image/gif,video,text/test", v.MimeType())
	assert.Equal(t, []string{"image/gif", "video", "text/test"}, v.MimeTypes())

	require.NoError(t, v.SetMimeType("image/jpeg"))
	assert.Equal(t, "image/jpeg", v.MimeType())

	require.NoError(t, v.AddMimeType("jpg, to"))
	assert.Equal(t, "image/jpeg,jpg,to", v.MimeType())

	require.NoError(t, v.AddMimeType([]string{"zip", "ti"}))
	assert.Equal(t, "image/jpeg,jpg,to,zip,ti", v.MimeType())

	require.NoError(t, v.AddMimeType(""))
	assert.Equal(t, "image/jpeg,jpg,to,zip,ti", v.MimeType())

	opt, ok := v.Option(OptionMimeType)
	require.True(t, ok)
	assert.Equal(t, "image/jpeg,jpg,to,zip,ti", opt)
}

func TestIsImage_NotReadable(t *testing.T) {
	dir := t.TempDir()
	v, err := NewIsImage(nil)
	require.NoError(t, err)

	tests := []struct {
		name  string
		value any
	}{
		{"missing path", "/nofile.mo"},
		{"missing descriptor", FileDescriptor{Path: "/nofile.mo", Name: "nofile.mo"}},
		{"directory", dir},
		{"upload error", FileDescriptor{Path: writeFile(t, dir, "a.png", encodePNG(t)), Error: 4}},
		{"nil descriptor", (*FileDescriptor)(nil)},
		{"unsupported value", 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, v.IsValid(tt.value))
			msg, ok := v.Messages().Get(CodeNotReadable)
			require.True(t, ok)
			assert.Contains(t, msg, "does not exist")
		})
	}
}

func TestIsImage_Formats(t *testing.T) {
	dir := t.TempDir()
	v, err := NewIsImage(valkit.Options{OptionEnableHeaderCheck: true})
	require.NoError(t, err)

	assert.True(t, v.IsValid(writeFile(t, dir, "a.png", encodePNG(t))))
	assert.True(t, v.IsValid(writeFile(t, dir, "a.gif", encodeGIF(t))))
	assert.True(t, v.IsValid(writeFile(t, dir, "a.jpg", encodeJPEG(t))))

	assert.False(t, v.IsValid(writeFile(t, dir, "a.txt", []byte("just some text"))))
	msg, ok := v.Messages().Get(CodeFalseType)
	require.True(t, ok)
	assert.Equal(t, "File is no image, 'text/plain' detected", msg)
}

func TestIsImage_HeaderCheck(t *testing.T) {
	dir := t.TempDir()
	// sniffs as JPEG but carries no decodable image
	fake := writeFile(t, dir, "fake.jpg", append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, []byte("not really a jpeg")...))

	v, err := NewIsImage("image/jpeg")
	require.NoError(t, err)
	assert.True(t, v.IsValid(fake))

	v.EnableHeaderCheck(true)
	assert.False(t, v.IsValid(fake))
	assert.True(t, v.Messages().Has(CodeFalseType))
}

func TestIsImage_DeclaredTypeFallback(t *testing.T) {
	dir := t.TempDir()
	text := writeFile(t, dir, "notes.txt", []byte("plain text"))
	picture := writeFile(t, dir, "a.png", encodePNG(t))
	blind := DetectorFunc(func([]byte) string { return "" })

	tests := []struct {
		name        string
		mimeType    any
		headerCheck bool
		file        FileDescriptor
		want        bool
		wantCodes   []string
	}{
		{
			name: "declared type without header check",
			file: FileDescriptor{Path: text, Name: "notes.txt", Type: "image/jpeg; q=1"},
			want: true,
		},
		{
			name:        "declared type on text with header check",
			headerCheck: true,
			file:        FileDescriptor{Path: text, Name: "notes.txt", Type: "image/jpeg"},
			wantCodes:   []string{CodeFalseType},
		},
		{
			name:        "declared type on image with header check",
			mimeType:    "image/png",
			headerCheck: true,
			file:        FileDescriptor{Path: picture, Name: "a.png", Type: "image/png"},
			want:        true,
		},
		{
			name:        "declared type outside accepted set",
			mimeType:    "image/png",
			headerCheck: true,
			file:        FileDescriptor{Path: picture, Name: "a.png", Type: "image/gif"},
			wantCodes:   []string{CodeFalseType},
		},
		{
			name:      "no declared type",
			file:      FileDescriptor{Path: text},
			wantCodes: []string{CodeNotDetected},
		},
		{
			name:        "no declared type with header check",
			headerCheck: true,
			file:        FileDescriptor{Path: picture},
			wantCodes:   []string{CodeNotDetected},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewIsImage(valkit.Options{
				OptionMimeType:          tt.mimeType,
				OptionEnableHeaderCheck: tt.headerCheck,
				OptionDetector:          blind,
			})
			require.NoError(t, err)

			assert.Equal(t, tt.want, v.IsValid(tt.file))
			if tt.want {
				assert.Empty(t, v.Messages())
			} else {
				assert.Equal(t, tt.wantCodes, v.Messages().Keys())
			}
		})
	}
}

func TestIsImage_Matching(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.png", encodePNG(t))

	tests := []struct {
		mimeType string
		want     bool
	}{
		{"image/*", true},
		{"image/p*", true},
		{"video/*", false},
		{"*", false},
		{"image", true},
		{"png", true},
		{"PNG", false},
		{"image/PNG", false},
	}

	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			v, err := NewIsImage(tt.mimeType)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.IsValid(path))
		})
	}
}

func TestIsImage_MultipartFile(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="upload"; filename="picture.png"`)
	h.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(encodePNG(t))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	form, err := multipart.NewReader(&buf, mw.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	v, err := NewIsImage(valkit.Options{OptionMimeType: "image/png", OptionEnableHeaderCheck: true})
	require.NoError(t, err)
	assert.True(t, v.IsValid(form.File["upload"][0]))
}

func TestIsImage_MagicFile(t *testing.T) {
	dir := t.TempDir()
	ppm := writeFile(t, dir, "pixel.ppm", ppmData)
	magic := writeFile(t, dir, "magic.yaml", []byte(`signatures:
  - mime: image/x-portable-pixmap
    offset: 0
    text: "P6"
`))

	v, err := NewIsImage(valkit.Options{OptionEnableHeaderCheck: true})
	require.NoError(t, err)
	assert.False(t, v.IsValid(ppm))

	require.NoError(t, v.SetMagicFile(magic))
	assert.Equal(t, magic, v.MagicFile())
	assert.True(t, v.IsValid(ppm))

	err = v.SetMagicFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.True(t, valkit.IsInvalidArgument(err))
	assert.Equal(t, magic, v.MagicFile())
}

func TestIsImage_Idempotent(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.txt", []byte("hello"))
	v, err := NewIsImage(nil)
	require.NoError(t, err)

	first := v.IsValid(path)
	firstMessages := v.Messages()
	assert.Equal(t, first, v.IsValid(path))
	assert.Equal(t, firstMessages, v.Messages())

	assert.True(t, v.IsValid(writeFile(t, t.TempDir(), "a.gif", encodeGIF(t))))
	assert.Zero(t, v.Messages().Len())
}

func TestIsImage_MessageOptions(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.txt", []byte("hello"))
	v, err := NewIsImage(valkit.Options{
		valkit.OptionMessages: map[string]string{
			CodeFalseType: "%value% is %type%",
		},
	})
	require.NoError(t, err)

	assert.False(t, v.IsValid(FileDescriptor{Path: path, Name: "a.txt"}))
	msg, _ := v.Messages().Get(CodeFalseType)
	assert.Equal(t, "a.txt is text/plain", msg)

	assert.Equal(t, []string{CodeFalseType, CodeNotDetected, CodeNotReadable}, v.MessageTemplates().Keys())
}

func TestIsImage_Factory(t *testing.T) {
	assert.Contains(t, valkit.Registered(), IsImageName)

	v, err := valkit.Create(IsImageName, "image/png")
	require.NoError(t, err)
	assert.True(t, v.IsValid(writeFile(t, t.TempDir(), "a.png", encodePNG(t))))
}
