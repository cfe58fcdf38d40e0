// Package drdatfile reads and writes .drdat files.
//
// Files are always handled as one whole buffer: WriteFile encodes before
// touching the filesystem and ReadFile reads everything before decoding.
package drdatfile

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"golang.org/x/sys/unix"

	"github.com/samcharles93/drdat/pkg/drdat"
)

// Ext is the conventional file extension.
const Ext = ".drdat"

var ErrTooLarge = errors.New("drdatfile: file too large to address")

// ReadFile reads path from fs and decodes it.
func ReadFile(fs afero.Fs, path string, opts ...drdat.Option) ([]drdat.Variable, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	vars, err := drdat.Decode(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return vars, nil
}

// WriteFile encodes vars and writes them to path.
//
// The blob is written to a temporary sibling and renamed into place, so a
// failed encode or write leaves any existing file untouched.
func WriteFile(fs afero.Fs, path string, vars []drdat.Variable, opts ...drdat.Option) error {
	blob, err := drdat.Encode(vars, opts...)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := afero.WriteFile(fs, tmp, blob, 0o644); err != nil {
		_ = fs.Remove(tmp)
		return err
	}
	if err := fs.Rename(tmp, path); err != nil {
		_ = fs.Remove(tmp)
		return err
	}
	return nil
}

// File is an opened .drdat file whose layout has been validated.
type File struct {
	Data    []byte
	header  drdat.Header
	mmapped bool
}

// Open maps a .drdat file read-only and validates its layout.
// If mmap is unavailable, it falls back to ReadAt-based loading.
// The returned file must be closed to release any mapping.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size64 := stat.Size()
	if size64 < 0 || size64 > math.MaxInt {
		return nil, ErrTooLarge
	}
	size := int(size64)

	if size > 0 {
		data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
		if err == nil {
			df, parseErr := parse(data, true)
			if parseErr != nil {
				_ = unix.Munmap(data)
				return nil, fmt.Errorf("%s: %w", path, parseErr)
			}
			return df, nil
		}
	}

	data, err := readAllAt(f, size)
	if err != nil {
		return nil, err
	}
	df, err := parse(data, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return df, nil
}

// OpenReaderAt loads and validates a .drdat blob from a random-access reader without mmap.
func OpenReaderAt(r io.ReaderAt, size int64) (*File, error) {
	if size < 0 || size > math.MaxInt {
		return nil, ErrTooLarge
	}
	data, err := readAllAt(r, int(size))
	if err != nil {
		return nil, err
	}
	return parse(data, false)
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}

func parse(data []byte, mmapped bool) (*File, error) {
	h, err := drdat.Inspect(data)
	if err != nil {
		return nil, err
	}
	return &File{Data: data, header: h, mmapped: mmapped}, nil
}

// Header returns the record layout parsed at open time.
func (f *File) Header() drdat.Header {
	return f.header
}

// Variables decodes every variable. The returned arrays do not reference
// the file's mapping and stay valid after Close.
func (f *File) Variables(opts ...drdat.Option) ([]drdat.Variable, error) {
	if f == nil || f.Data == nil {
		return nil, errors.New("drdatfile: file is closed")
	}
	return drdat.Decode(f.Data, opts...)
}

// Close releases the file's mapping, if any.
func (f *File) Close() error {
	if f == nil || f.Data == nil {
		return nil
	}
	var err error
	if f.mmapped {
		err = unix.Munmap(f.Data)
	}
	f.Data = nil
	f.header = drdat.Header{}
	f.mmapped = false
	return err
}
