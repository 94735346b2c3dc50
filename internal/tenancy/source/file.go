package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/wolfman30/clinic-tenancy/internal/tenancy"
)

// FileSource reads a YAML or JSON registry document from disk.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Name() string { return "file" }

// Document reads and decodes the file without validating it.
func (s *FileSource) Document() (tenancy.Document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return tenancy.Document{}, fmt.Errorf("source: file %s: %w", s.path, ErrRegistryNotFound)
	}
	if err != nil {
		return tenancy.Document{}, fmt.Errorf("source: file: read %s: %w", s.path, err)
	}
	doc, err := tenancy.ParseDocument(data)
	if err != nil {
		return tenancy.Document{}, fmt.Errorf("source: file %s: %w", s.path, err)
	}
	return doc, nil
}

func (s *FileSource) Load(_ context.Context) (*tenancy.Registry, error) {
	doc, err := s.Document()
	if err != nil {
		return nil, err
	}
	reg, err := doc.Registry()
	if err != nil {
		return nil, fmt.Errorf("source: file %s: %w", s.path, err)
	}
	return reg, nil
}
