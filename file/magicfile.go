package file

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// MagicDB is a signature database loaded from a magic file.
//
// A magic file is YAML:
//
//	signatures:
//	  - mime: image/x-portable-pixmap
//	    offset: 0
//	    magic: "5036"      # hex encoded
//	  - mime: image/x-xbitmap
//	    text: "#define"    # literal bytes
type MagicDB struct {
	Path       string
	Digest     uint64 // xxhash of the file content
	Signatures []Signature
}

type magicFile struct {
	Signatures []magicEntry `yaml:"signatures"`
}

type magicEntry struct {
	MIME   string `yaml:"mime"`
	Offset int    `yaml:"offset"`
	Magic  string `yaml:"magic"`
	Text   string `yaml:"text"`
}

// parsed signatures keyed by content digest. Only the latest digest of each
// path is kept, so reloading a file that changed replaces its entry.
var magicCache = struct {
	sync.Mutex
	entries map[uint64][]Signature
	byPath  map[string]uint64
}{entries: make(map[uint64][]Signature), byPath: make(map[string]uint64)}

// LoadMagicFile reads and parses the magic file at path. Files with
// identical content are parsed once.
func LoadMagicFile(path string) (*MagicDB, error) {
	if path == "" {
		return nil, errors.New("magic file path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read magic file %s", path)
	}

	digest := xxhash.Sum64(data)

	magicCache.Lock()
	sigs, ok := magicCache.entries[digest]
	magicCache.Unlock()

	if !ok {
		sigs, err = ParseMagic(data)
		if err != nil {
			return nil, errors.Wrapf(err, "parse magic file %s", path)
		}
	}
	cacheMagic(filepath.Clean(path), digest, sigs)

	return &MagicDB{Path: path, Digest: digest, Signatures: sigs}, nil
}

func cacheMagic(path string, digest uint64, sigs []Signature) {
	magicCache.Lock()
	defer magicCache.Unlock()

	magicCache.entries[digest] = sigs
	prev, ok := magicCache.byPath[path]
	magicCache.byPath[path] = digest
	if !ok || prev == digest {
		return
	}
	for _, d := range magicCache.byPath {
		if d == prev {
			return
		}
	}
	delete(magicCache.entries, prev)
}

// ParseMagic parses magic file content.
func ParseMagic(data []byte) ([]Signature, error) {
	var mf magicFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, errors.Wrap(err, "decode yaml")
	}
	if len(mf.Signatures) == 0 {
		return nil, errors.New("no signatures defined")
	}

	sigs := make([]Signature, 0, len(mf.Signatures))
	for i, entry := range mf.Signatures {
		sig, err := entry.signature()
		if err != nil {
			return nil, errors.Wrapf(err, "signature %d", i)
		}
		sigs = append(sigs, sig)
	}
	return sigs, nil
}

func (e magicEntry) signature() (Signature, error) {
	mime := strings.TrimSpace(e.MIME)
	if mime == "" || !strings.Contains(mime, "/") {
		return Signature{}, errors.Errorf("invalid mime %q", e.MIME)
	}
	if e.Offset < 0 {
		return Signature{}, errors.Errorf("negative offset %d", e.Offset)
	}

	var magic []byte
	switch {
	case e.Magic != "" && e.Text != "":
		return Signature{}, errors.New("magic and text are mutually exclusive")
	case e.Magic != "":
		decoded, err := hex.DecodeString(strings.ReplaceAll(e.Magic, " ", ""))
		if err != nil {
			return Signature{}, errors.Wrap(err, "decode magic")
		}
		magic = decoded
	case e.Text != "":
		magic = []byte(e.Text)
	default:
		return Signature{}, errors.New("magic or text is required")
	}

	return Signature{MIME: mime, Offset: e.Offset, Magic: magic}, nil
}
