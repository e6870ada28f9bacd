package repository

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"MarketClose/internal/domain/repository"
)

// FSArtifacts overwrites the latest text and spreadsheet in a data directory.
type FSArtifacts struct {
	dir       string
	textName  string
	sheetName string
}

func NewFSArtifacts(dir, textName, sheetName string) repository.ArtifactStore {
	return &FSArtifacts{dir: dir, textName: textName, sheetName: sheetName}
}

func (s *FSArtifacts) SaveText(_ context.Context, b []byte) (string, error) {
	return s.write(s.textName, b)
}

func (s *FSArtifacts) SaveSpreadsheet(_ context.Context, b []byte) (string, error) {
	return s.write(s.sheetName, b)
}

func (s *FSArtifacts) OpenText(_ context.Context) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.dir, s.textName))
	if err != nil {
		return nil, fmt.Errorf("open text artifact: %w", err)
	}
	return f, nil
}

// write replaces name through a temp file and rename so readers never see a
// partial artifact.
func (s *FSArtifacts) write(name string, b []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("artifact dir: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}

	dst := filepath.Join(s.dir, name)
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("replace %s: %w", name, err)
	}
	return dst, nil
}
