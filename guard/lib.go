package guard

import (
	"context"
	"fmt"
	"sync"
	"unsafe"

	"go.dw1.io/x/exp/rendersec"
)

// Library is a dynamic library loaded through a sandbox check.
type Library struct {
	name string

	mu     sync.Mutex
	handle unsafe.Pointer
}

// LoadLibrary loads the dynamic library name, checked as a
// [rendersec.LoadLibrary]. Only allow-listed libraries load inside a
// sandbox.
func LoadLibrary(ctx context.Context, name string) (*Library, error) {
	if err := rendersec.Check(ctx, rendersec.LoadLibrary{Name: name}); err != nil {
		return nil, err
	}

	handle, err := dlopen(name)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}

	return &Library{name: name, handle: handle}, nil
}

// Name returns the name the library was loaded with.
func (l *Library) Name() string {
	return l.name
}

// Symbol returns the address of the exported symbol sym.
func (l *Library) Symbol(sym string) (unsafe.Pointer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.handle == nil {
		return nil, fmt.Errorf("symbol %s: library %s is closed", sym, l.name)
	}

	return dlsym(l.handle, sym)
}

// Close unloads the library. Closing twice is a no-op.
func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.handle == nil {
		return nil
	}

	err := dlclose(l.handle)
	l.handle = nil

	return err
}
