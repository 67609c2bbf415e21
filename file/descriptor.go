package file

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// FileDescriptor describes an uploaded file: where its bytes live, the name
// the client gave it, the type it declared and the transfer status.
type FileDescriptor struct {
	Path  string // location of the file content
	Name  string // client file name, used in messages
	Type  string // client declared MIME type
	Size  int64
	Error int // upload status, 0 means success
}

// source is what the image validator reads from.
type source struct {
	name     string
	declared string
	status   int
	open     func() (io.ReadCloser, error)
}

// describe turns a validated value into a source. Accepted values are a
// FileDescriptor, a *FileDescriptor, a path string and a
// *multipart.FileHeader.
func describe(value any) (source, bool) {
	switch f := value.(type) {
	case FileDescriptor:
		return f.source(), true
	case *FileDescriptor:
		if f == nil {
			return source{}, false
		}
		return f.source(), true
	case string:
		return FileDescriptor{Path: f}.source(), true
	case *multipart.FileHeader:
		if f == nil {
			return source{}, false
		}
		return source{
			name:     f.Filename,
			declared: f.Header.Get("Content-Type"),
			open: func() (io.ReadCloser, error) {
				return f.Open()
			},
		}, true
	}
	return source{}, false
}

func (d FileDescriptor) source() source {
	name := d.Name
	if name == "" && d.Path != "" {
		name = filepath.Base(d.Path)
	}
	path := d.Path
	return source{
		name:     name,
		declared: d.Type,
		status:   d.Error,
		open: func() (io.ReadCloser, error) {
			return openRegular(path)
		},
	}
}

func openRegular(path string) (io.ReadCloser, error) {
	if path == "" {
		return nil, errors.New("file path is empty")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(err, "stat")
	}
	if info.IsDir() {
		return nil, errors.Errorf("%s is a directory", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	return f, nil
}
