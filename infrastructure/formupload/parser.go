// Package formupload stages multipart/form-data file parts as temp files.
package formupload

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"drive-upload-relay/domain/distribution"
	"drive-upload-relay/infrastructure/filesystem"

	"github.com/google/uuid"
)

// Parser writes every file part of a request under one field to dir
type Parser struct {
	dir   string
	field string
}

// NewParser creates a parser that accepts files under field and stages them in dir
func NewParser(dir, field string) *Parser {
	if field == "" {
		field = distribution.DefaultField
	}
	return &Parser{dir: dir, field: field}
}

// Parse streams the request body to temp files. A request that is not
// multipart yields no descriptors and no error. On error every temp file
// already written for this request is removed.
func (p *Parser) Parse(r *http.Request) ([]distribution.FileDescriptor, error) {
	mr, err := r.MultipartReader()
	if errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("invalid multipart request: %w", err)
	}

	var files []distribution.FileDescriptor
	cleanup := func() {
		for _, f := range files {
			os.Remove(f.Path)
		}
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("invalid multipart request: %w", err)
		}

		fd, err := p.stage(part)
		part.Close()
		if err != nil {
			cleanup()
			return nil, err
		}
		if fd != nil {
			files = append(files, *fd)
		}
	}

	return files, nil
}

// stage writes one part to disk. Plain form values are skipped.
func (p *Parser) stage(part *multipart.Part) (*distribution.FileDescriptor, error) {
	name := fileName(part)
	if name == "" {
		_, err := io.Copy(io.Discard, part)
		return nil, err
	}
	if part.FormName() != p.field {
		return nil, fmt.Errorf("%w: %s", distribution.ErrUnexpectedField, part.FormName())
	}

	path := filepath.Join(p.dir, uuid.NewString())
	out, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("unable to create temp file: %w", err)
	}

	_, err = io.Copy(out, part)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("unable to write %s: %w", name, err)
	}

	fd, err := filesystem.Describe(path, name)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("unable to stat %s: %w", name, err)
	}
	return &fd, nil
}

// fileName returns the filename parameter as the client sent it.
// multipart.Part.FileName strips directories, which would rename the file.
func fileName(part *multipart.Part) string {
	_, params, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
	if err != nil {
		return part.FileName()
	}
	return params["filename"]
}
