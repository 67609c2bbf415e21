package file

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// HasImageHeader reports whether the file starting with header (and
// continuing in rest) carries an image signature from sigs. When a decoder
// is registered for the format, the image configuration must also decode;
// formats without a decoder pass on the signature alone.
func HasImageHeader(header []byte, rest io.Reader, sigs []Signature) bool {
	if !matchesImageSignature(header, sigs) {
		return false
	}

	if rest == nil {
		rest = bytes.NewReader(nil)
	}
	// Reconstruct reader with the bytes we already read
	combined := io.MultiReader(bytes.NewReader(header), rest)

	_, _, err := image.DecodeConfig(combined)
	if err == nil {
		return true
	}
	return errors.Is(err, image.ErrFormat)
}

func matchesImageSignature(header []byte, sigs []Signature) bool {
	for _, sig := range sigs {
		if strings.HasPrefix(sig.MIME, "image/") && sig.Match(header) {
			return true
		}
	}
	return false
}
