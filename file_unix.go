//go:build unix

package fdtforge

import (
	"fmt"
	"math"
	"os"

	"golang.org/x/sys/unix"
)

// functions can be overridden for testing
var mmapFunc = unix.Mmap
var munmapFunc = unix.Munmap

// FileBlob is a read-only memory mapping of a .dtb file. The mapping
// is private: nothing we do can touch the file, and page cache is
// shared with other readers. This is host-side tooling; kernels get
// their blob from firmware via FromPointer instead.
type FileBlob struct {
	data []byte
	path string
}

// MapFile maps the file at path read-only and returns it as a blob
// buffer. Caller must call Close when every FDT derived from the
// buffer is done.
func MapFile(path string) (*FileBlob, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fdtforge: open %s: %w", path, err)
	}
	// the mapping outlives the descriptor
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("fdtforge: stat %s: %w", path, err)
	}
	size := info.Size()
	if size < HeaderSize {
		return nil, fmt.Errorf("fdtforge: %s is %d bytes, smaller than a blob header: %w", path, size, ErrTruncated)
	}
	if size > math.MaxInt32 {
		return nil, fmt.Errorf("fdtforge: %s is %d bytes, too large to map: %w", path, size, ErrOutOfBounds)
	}

	data, err := mmapFunc(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("fdtforge: mmap %s: %w", path, err)
	}
	return &FileBlob{data: data, path: path}, nil
}

// Bytes returns the mapped file contents. Valid until Close.
func (b *FileBlob) Bytes() []byte { return b.data }

// Parse parses the mapped bytes as a device tree blob. The returned
// FDT borrows the mapping and must not be used after Close.
func (b *FileBlob) Parse(opts ...Option) (*FDT, error) {
	if b.data == nil {
		return nil, fmt.Errorf("fdtforge: parse %s: mapping is closed: %w", b.path, ErrOutOfBounds)
	}
	return FromBytes(b.data, opts...)
}

// Close unmaps the file. Idempotent.
func (b *FileBlob) Close() error {
	if b.data == nil {
		return nil
	}
	err := munmapFunc(b.data)
	b.data = nil
	if err != nil {
		return fmt.Errorf("fdtforge: munmap %s: %w", b.path, err)
	}
	return nil
}
