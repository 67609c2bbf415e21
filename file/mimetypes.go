package file

import (
	"strings"
	"unicode"

	"github.com/gobwas/glob"

	"github.com/gobeaver/valkit"
)

// DefaultImageTypes lists the MIME types accepted when no type is configured.
var DefaultImageTypes = []string{
	"application/cdf",
	"application/dicom",
	"application/fractals",
	"application/postscript",
	"application/vnd.hp-hpgl",
	"application/vnd.oasis.opendocument.graphics",
	"application/x-cdf",
	"application/x-cmu-raster",
	"application/x-ima",
	"application/x-inventor",
	"application/x-koan",
	"application/x-portable-anymap",
	"application/x-world-x-3dmf",
	"image/avif",
	"image/bmp",
	"image/c",
	"image/cgm",
	"image/fif",
	"image/gif",
	"image/heic",
	"image/heif",
	"image/jpeg",
	"image/jpm",
	"image/jpx",
	"image/jp2",
	"image/naplps",
	"image/pjpeg",
	"image/png",
	"image/svg",
	"image/svg+xml",
	"image/tiff",
	"image/vnd.adobe.photoshop",
	"image/vnd.djvu",
	"image/vnd.fpx",
	"image/vnd.microsoft.icon",
	"image/vnd.net-fpx",
	"image/webp",
	"image/x-cmu-raster",
	"image/x-cmx",
	"image/x-coreldraw",
	"image/x-cpi",
	"image/x-emf",
	"image/x-ico",
	"image/x-icon",
	"image/x-jg",
	"image/x-ms-bmp",
	"image/x-niff",
	"image/x-pict",
	"image/x-pcx",
	"image/x-png",
	"image/x-portable-anymap",
	"image/x-portable-bitmap",
	"image/x-portable-greymap",
	"image/x-portable-pixmap",
	"image/x-quicktime",
	"image/x-rgb",
	"image/x-tiff",
	"image/x-unknown",
	"image/x-windows-bmp",
	"image/x-xpmi",
}

// MimeTypeSet is an insertion-ordered set of accepted MIME types or bare
// tokens such as "gif" or "image".
type MimeTypeSet struct {
	items []string
	globs map[string]glob.Glob // compiled entries containing '*'
}

// NewMimeTypeSet creates a set holding values, deduplicated.
func NewMimeTypeSet(values ...string) *MimeTypeSet {
	s := &MimeTypeSet{}
	s.add(values)
	return s
}

// Set replaces the set with v: a comma or space separated string, a []string
// or a []any of strings.
func (s *MimeTypeSet) Set(v any) error {
	tokens, err := mimeTokens(v)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return valkit.NewInvalidArgumentError("SetMimeType", "at least one mimetype is required")
	}
	s.items = nil
	s.globs = nil
	s.add(tokens)
	return nil
}

// Add merges v into the set. Tokens already present and empty tokens are ignored.
func (s *MimeTypeSet) Add(v any) error {
	tokens, err := mimeTokens(v)
	if err != nil {
		return err
	}
	s.add(tokens)
	return nil
}

// Contains reports whether token is in the set.
func (s *MimeTypeSet) Contains(token string) bool {
	for _, item := range s.items {
		if item == token {
			return true
		}
	}
	return false
}

// List returns the tokens in insertion order.
func (s *MimeTypeSet) List() []string {
	return append([]string(nil), s.items...)
}

// String returns the tokens joined by commas.
func (s *MimeTypeSet) String() string {
	return strings.Join(s.items, ",")
}

// Len returns the number of tokens.
func (s *MimeTypeSet) Len() int {
	return len(s.items)
}

func (s *MimeTypeSet) add(tokens []string) {
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" || s.Contains(token) {
			continue
		}
		s.items = append(s.items, token)
		if strings.Contains(token, "*") {
			if g, err := glob.Compile(token, '/'); err == nil {
				if s.globs == nil {
					s.globs = make(map[string]glob.Glob)
				}
				s.globs[token] = g
			}
		}
	}
}

// Match reports whether mimeType is accepted: an exact entry, an entry
// without "/" naming the top-level type or subtype, or a wildcard entry
// matching with "/" as separator.
func (s *MimeTypeSet) Match(mimeType string) bool {
	top, sub, _ := strings.Cut(mimeType, "/")
	for _, entry := range s.items {
		switch {
		case entry == mimeType:
			return true
		case strings.Contains(entry, "*"):
			if g, ok := s.globs[entry]; ok && g.Match(mimeType) {
				return true
			}
		case !strings.Contains(entry, "/"):
			if entry == top || (sub != "" && entry == sub) {
				return true
			}
		}
	}
	return false
}

func mimeTokens(v any) ([]string, error) {
	switch src := v.(type) {
	case string:
		return splitMimeList(src), nil
	case []string:
		return src, nil
	case []any:
		tokens := make([]string, 0, len(src))
		for _, item := range src {
			if s, ok := item.(string); ok {
				tokens = append(tokens, s)
			}
		}
		return tokens, nil
	}
	return nil, valkit.NewInvalidArgumentError("SetMimeType", "invalid options to validator provided: %T", v)
}

func splitMimeList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}
