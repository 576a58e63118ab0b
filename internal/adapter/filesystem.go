package adapter

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrFileTooLarge is returned by ReadFileLimit when a file exceeds its limit
var ErrFileTooLarge = errors.New("file too large")

// FileSystem reads the local files the tools consume: blocklists and images to pin
//
//go:generate mockgen -source=filesystem.go -destination=../mocks/filesystem.go -package=mocks -mock_names=FileSystem=MockFileSystem
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
	// ReadFileLimit reads at most limit bytes and fails with ErrFileTooLarge beyond that.
	// A limit of zero or less reads the whole file.
	ReadFileLimit(name string, limit int64) ([]byte, error)
}

type osFileSystem struct{}

func NewFileSystem() FileSystem {
	return osFileSystem{}
}

func (osFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name) //nolint:gosec,G304
}

func (fs osFileSystem) ReadFileLimit(name string, limit int64) ([]byte, error) {
	if limit <= 0 {
		return fs.ReadFile(name)
	}

	f, err := os.Open(name) //nolint:gosec,G304
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%s: %w (limit %d bytes)", name, ErrFileTooLarge, limit)
	}
	return data, nil
}
