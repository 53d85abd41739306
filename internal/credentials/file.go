package credentials

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var errNoFile = errors.New("no file selected")

// File is a credential chosen for upload.
type File interface {
	Name() string
	Size() int64
	Open() (io.ReadCloser, error)
}

// LocalFile is a File on disk.
type LocalFile struct {
	path string
	size int64
}

// OpenLocal stats path and returns it as a File.
func OpenLocal(path string) (*LocalFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return &LocalFile{path: path, size: info.Size()}, nil
}

// A nil *LocalFile reports an empty name, so it reads as "nothing chosen"
// even when stored in a File.
func (f *LocalFile) Name() string {
	if f == nil {
		return ""
	}
	return filepath.Base(f.path)
}

func (f *LocalFile) Size() int64 {
	if f == nil {
		return 0
	}
	return f.size
}

func (f *LocalFile) Open() (io.ReadCloser, error) {
	if f == nil {
		return nil, errNoFile
	}
	return os.Open(f.path)
}

// MemoryFile is a File held in memory.
type MemoryFile struct {
	name string
	data []byte
	size int64
}

// NewMemoryFile returns data as a File named name.
func NewMemoryFile(name string, data []byte) *MemoryFile {
	return &MemoryFile{name: name, data: data, size: int64(len(data))}
}

// SizedMemoryFile reports size regardless of how much data it holds. It
// lets tests exercise the size ceiling without allocating it.
func SizedMemoryFile(name string, size int64) *MemoryFile {
	return &MemoryFile{name: name, size: size}
}

func (f *MemoryFile) Name() string {
	if f == nil {
		return ""
	}
	return f.name
}

func (f *MemoryFile) Size() int64 {
	if f == nil {
		return 0
	}
	return f.size
}

func (f *MemoryFile) Open() (io.ReadCloser, error) {
	if f == nil {
		return nil, errNoFile
	}
	return io.NopCloser(bytes.NewReader(f.data)), nil
}
