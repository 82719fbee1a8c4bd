package filesystem

import (
	"fmt"
	"os"

	"drive-upload-relay/domain/distribution"

	"github.com/gabriel-vasile/mimetype"
)

// Remover implements distribution.FileRemover using the os package
type Remover struct{}

// NewRemover creates a new filesystem remover
func NewRemover() *Remover {
	return &Remover{}
}

// Remove deletes the file at path
func (r *Remover) Remove(path string) error {
	return os.Remove(path)
}

// EnsureDir creates dir (and parents) if it does not exist
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// Exists returns true if the path exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Ensure Remover implements distribution.FileRemover
var _ distribution.FileRemover = (*Remover)(nil)

// Describe builds a descriptor for the local file at path, reported under name
func Describe(path, name string) (distribution.FileDescriptor, error) {
	info, err := os.Stat(path)
	if err != nil {
		return distribution.FileDescriptor{}, err
	}
	if info.IsDir() {
		return distribution.FileDescriptor{}, fmt.Errorf("%s is a directory", path)
	}

	fd := distribution.FileDescriptor{
		Path:         path,
		OriginalName: name,
		Size:         info.Size(),
	}
	if mt, err := mimetype.DetectFile(path); err == nil {
		fd.MimeType = mt.String()
	}
	return fd, nil
}
