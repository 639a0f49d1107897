package guard

import (
	"context"
	"io/fs"
	"os"

	"go.dw1.io/x/exp/rendersec"
	"go.dw1.io/x/exp/rendersec/access"
)

func check(ctx context.Context, path string, rights access.FS) error {
	return rendersec.Check(ctx, rendersec.FileAccess{Path: path, Rights: rights})
}

// ReadFile is [os.ReadFile], checked as a read.
func ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := check(ctx, name, access.FS_READ); err != nil {
		return nil, err
	}

	return os.ReadFile(name)
}

// WriteFile is [os.WriteFile], checked as a write.
func WriteFile(ctx context.Context, name string, data []byte, perm os.FileMode) error {
	if err := check(ctx, name, access.FromFlag(os.O_WRONLY|os.O_CREATE|os.O_TRUNC)); err != nil {
		return err
	}

	return os.WriteFile(name, data, perm)
}

// Remove is [os.Remove], checked as a removal.
func Remove(ctx context.Context, name string) error {
	if err := check(ctx, name, access.FS_REMOVE); err != nil {
		return err
	}

	return os.Remove(name)
}

// RemoveAll is [os.RemoveAll], checked as a removal of path.
func RemoveAll(ctx context.Context, path string) error {
	if err := check(ctx, path, access.FS_REMOVE); err != nil {
		return err
	}

	return os.RemoveAll(path)
}

// Rename is [os.Rename], checked as a removal of oldpath and a write of
// newpath.
func Rename(ctx context.Context, oldpath, newpath string) error {
	if err := check(ctx, oldpath, access.FS_REMOVE); err != nil {
		return err
	}

	if err := check(ctx, newpath, access.FS_WRITE); err != nil {
		return err
	}

	return os.Rename(oldpath, newpath)
}

// MkdirAll is [os.MkdirAll], checked as a write.
func MkdirAll(ctx context.Context, path string, perm os.FileMode) error {
	if err := check(ctx, path, access.FS_WRITE); err != nil {
		return err
	}

	return os.MkdirAll(path, perm)
}

// ReadDir is [os.ReadDir], checked as a read.
func ReadDir(ctx context.Context, name string) ([]os.DirEntry, error) {
	if err := check(ctx, name, access.FS_READ); err != nil {
		return nil, err
	}

	return os.ReadDir(name)
}

// Stat is [os.Stat], checked as a read.
func Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	if err := check(ctx, name, access.FS_READ); err != nil {
		return nil, err
	}

	return os.Stat(name)
}
