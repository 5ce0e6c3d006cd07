package mmap

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

var (
	// ErrIO wraps every failure to open, stat or map a file.
	ErrIO = errors.New("mmap: io error")

	// ErrEmpty is returned for zero-length files, which cannot be mapped.
	ErrEmpty = errors.New("mmap: empty file")
)

// File is a read-only memory mapping of a whole file.
type File struct {
	path string
	file *os.File
	data []byte
}

// Open maps the file at path read-only. The caller must Close it.
func Open(path string) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s: %v", ErrIO, path, err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%w: failed to stat %s: %v", ErrIO, path, err)
	}

	if stat.Size() == 0 {
		file.Close()
		return nil, fmt.Errorf("%w: %s", ErrEmpty, path)
	}

	data, err := unix.Mmap(int(file.Fd()), 0, int(stat.Size()), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%w: failed to mmap %s: %v", ErrIO, path, err)
	}

	// Hashing reads front to back.
	_ = unix.Madvise(data, unix.MADV_SEQUENTIAL)

	return &File{path: path, file: file, data: data}, nil
}

// Bytes returns the mapped contents. The slice is invalid after Close.
func (f *File) Bytes() []byte {
	return f.data
}

// Len returns the mapped length in bytes.
func (f *File) Len() int {
	return len(f.data)
}

// Close unmaps the region and closes the underlying file. It is safe to call twice.
func (f *File) Close() error {
	var errs []error

	if f.data != nil {
		if err := unix.Munmap(f.data); err != nil {
			errs = append(errs, fmt.Errorf("failed to unmap %s: %w", f.path, err))
		}
		f.data = nil
	}

	if f.file != nil {
		if err := f.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close %s: %w", f.path, err))
		}
		f.file = nil
	}

	return errors.Join(errs...)
}
