package guard

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"go.dw1.io/x/exp/rendersec"
)

func TestOpenFileMmapPreferred(t *testing.T) {
	ctx, _ := activate(t)
	path := filepath.Join(t.TempDir(), "data.bin")

	f, err := OpenFile(ctx, path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644, 4)
	if err != nil {
		t.Fatalf("OpenFile mmap: %v", err)
	}
	t.Cleanup(func() { f.Close() })

	if !f.Mapped() {
		t.Skip("mmap backend unavailable; running fallback")
	}

	if n, err := f.Write([]byte("hey")); err != nil || n != 3 {
		t.Fatalf("write mmap: n=%d err=%v", n, err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("seek mmap: %v", err)
	}

	buf := make([]byte, 3)
	if n, err := f.Read(buf); err != nil || n != 3 || string(buf) != "hey" {
		t.Fatalf("read mmap: n=%d err=%v buf=%q", n, err, buf)
	}

	if got := f.Len(); got != 4 {
		t.Fatalf("len mmap: got %d want 4", got)
	}

	if f.Bytes() == nil {
		t.Fatalf("bytes mmap: expected non-nil slice")
	}
}

func TestOpenExistingFile(t *testing.T) {
	ctx, _ := activate(t)
	path := filepath.Join(t.TempDir(), "open.bin")

	content := []byte("xyz")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	rendersec.SetRestrictReads(true)

	f, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { f.Close() })

	buf := make([]byte, 3)
	if n, err := f.ReadAt(buf, 0); err != nil || n != 3 || string(buf) != "xyz" {
		t.Fatalf("read: n=%d err=%v buf=%q", n, err, buf)
	}

	if got := f.Len(); got != len(content) {
		t.Fatalf("len: got %d want %d", got, len(content))
	}

	if f.Name() != path {
		t.Fatalf("name: got %q want %q", f.Name(), path)
	}
}

func TestOpenFileAppendFallback(t *testing.T) {
	ctx, _ := activate(t)
	path := filepath.Join(t.TempDir(), "append.log")

	f, err := OpenFile(ctx, path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644, 0)
	if err != nil {
		t.Fatalf("OpenFile append: %v", err)
	}

	if f.Mapped() || f.Bytes() != nil {
		t.Fatalf("expected os.File fallback for append mode")
	}

	if _, err := f.WriteString("line\n"); err != nil {
		t.Fatalf("WriteString: %v", err)
	}

	if err := f.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil || string(data) != "line\n" {
		t.Fatalf("contents: %q %v", data, err)
	}
}

func TestOpenFileFallbackTruncatesToSize(t *testing.T) {
	ctx := rendersec.WithThread(context.Background())
	path := filepath.Join(t.TempDir(), "sized.bin")

	f, err := OpenFile(ctx, path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC|os.O_APPEND, 0o644, 16)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	t.Cleanup(func() { f.Close() })

	info, err := f.Stat()
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}

	if info.Size() != 16 {
		t.Fatalf("size: got %d want 16", info.Size())
	}
}

func TestCreateDenied(t *testing.T) {
	ctx, _ := activate(t)

	if _, err := Create(ctx, "/etc/rendersec.conf"); !errors.Is(err, rendersec.ErrDenied) {
		t.Fatalf("expected denial, got %v", err)
	}

	f, err := Create(ctx, filepath.Join(t.TempDir(), "ok.txt"))
	if err != nil {
		t.Fatalf("Create under temp: %v", err)
	}

	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
