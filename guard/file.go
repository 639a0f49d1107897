package guard

import (
	"context"
	"io"
	"os"

	"go.dw1.io/mmapfile"

	"go.dw1.io/x/exp/rendersec"
	"go.dw1.io/x/exp/rendersec/access"
)

var (
	_ io.Reader       = (*File)(nil)
	_ io.Writer       = (*File)(nil)
	_ io.Seeker       = (*File)(nil)
	_ io.ReaderAt     = (*File)(nil)
	_ io.WriterAt     = (*File)(nil)
	_ io.Closer       = (*File)(nil)
	_ io.ReaderFrom   = (*File)(nil)
	_ io.WriterTo     = (*File)(nil)
	_ io.StringWriter = (*File)(nil)
)

// File is a file opened through a sandbox check. It wraps either a
// memory-mapped file or a plain os.File.
type File struct {
	mm *mmapfile.MmapFile
	os *os.File
}

// Open opens name for reading, checked as a read of name.
func Open(ctx context.Context, name string) (*File, error) {
	if err := rendersec.Check(ctx, rendersec.FileAccess{Path: name, Rights: access.FS_READ}); err != nil {
		return nil, err
	}

	if mf, err := mmapfile.Open(name); err == nil {
		return &File{mm: mf}, nil
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}

	return &File{os: f}, nil
}

// OpenFile opens name with flag, checked with the rights flag requests.
//
// size is the mapped length when creating or truncating; with size <= 0 or
// O_APPEND the os.File path is used. When falling back with size > 0 on
// create or truncate, the file is truncated to size to mirror the mmap path.
func OpenFile(ctx context.Context, name string, flag int, perm os.FileMode, size int64) (*File, error) {
	if err := rendersec.Check(ctx, rendersec.FileAccess{Path: name, Rights: access.FromFlag(flag)}); err != nil {
		return nil, err
	}

	if canMmap(flag, size) {
		if mf, err := mmapfile.OpenFile(name, flag, perm, size); err == nil {
			return &File{mm: mf}, nil
		}
	}

	f, err := os.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}

	if size > 0 && (flag&(os.O_CREATE|os.O_TRUNC) != 0) {
		if err := f.Truncate(size); err != nil {
			f.Close()
			return nil, err
		}
	}

	return &File{os: f}, nil
}

// Create creates or truncates name, checked as a write.
func Create(ctx context.Context, name string) (*File, error) {
	return OpenFile(ctx, name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o666, 0)
}

// Read reads up to len(p) bytes from the current offset.
func (f *File) Read(p []byte) (int, error) {
	if f.mm != nil {
		return f.mm.Read(p)
	}

	return f.os.Read(p)
}

// Write writes p at the current offset and advances it.
func (f *File) Write(p []byte) (int, error) {
	if f.mm != nil {
		return f.mm.Write(p)
	}

	return f.os.Write(p)
}

// Seek moves the offset used by the next Read or Write.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	if f.mm != nil {
		return f.mm.Seek(offset, whence)
	}

	return f.os.Seek(offset, whence)
}

// ReadAt reads from off and leaves the current offset alone.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	if f.mm != nil {
		return f.mm.ReadAt(p, off)
	}

	return f.os.ReadAt(p, off)
}

// WriteAt writes at off and leaves the current offset alone.
func (f *File) WriteAt(p []byte, off int64) (int, error) {
	if f.mm != nil {
		return f.mm.WriteAt(p, off)
	}

	return f.os.WriteAt(p, off)
}

// Close unmaps or closes the underlying file.
func (f *File) Close() error {
	if f.mm != nil {
		return f.mm.Close()
	}

	return f.os.Close()
}

// ReadFrom copies r into the file until EOF.
func (f *File) ReadFrom(r io.Reader) (int64, error) {
	if f.mm != nil {
		return f.mm.ReadFrom(r)
	}

	return f.os.ReadFrom(r)
}

// WriteTo copies the file contents into w.
func (f *File) WriteTo(w io.Writer) (int64, error) {
	if f.mm != nil {
		return f.mm.WriteTo(w)
	}

	return f.os.WriteTo(w)
}

// WriteString is Write for a string.
func (f *File) WriteString(s string) (int, error) {
	if f.mm != nil {
		return f.mm.WriteString(s)
	}

	return f.os.WriteString(s)
}

// Bytes exposes the mapped region, or nil for the os.File fallback.
func (f *File) Bytes() []byte {
	if f.mm != nil {
		return f.mm.Bytes()
	}

	return nil
}

// Mapped reports whether f is memory-mapped.
func (f *File) Mapped() bool {
	return f.mm != nil
}

// Len returns the mapped length, or the file size for the os.File fallback.
func (f *File) Len() int {
	if f.mm != nil {
		return f.mm.Len()
	}

	info, err := f.os.Stat()
	if err != nil {
		return 0
	}

	return int(info.Size())
}

// Name returns the name the file was opened with.
func (f *File) Name() string {
	if f.mm != nil {
		return f.mm.Name()
	}

	return f.os.Name()
}

// Stat describes the underlying file.
func (f *File) Stat() (os.FileInfo, error) {
	if f.mm != nil {
		return f.mm.Stat()
	}

	return f.os.Stat()
}

// Sync commits written data to stable storage.
func (f *File) Sync() error {
	if f.mm != nil {
		return f.mm.Sync()
	}

	return f.os.Sync()
}

func canMmap(flag int, size int64) bool {
	if flag&os.O_APPEND != 0 {
		return false
	}

	if flag&(os.O_CREATE|os.O_TRUNC) != 0 && size <= 0 {
		return false
	}

	return true
}
