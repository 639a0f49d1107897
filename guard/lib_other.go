//go:build !(((linux || freebsd || darwin) && (amd64 || arm64) && !cgo) || windows)

package guard

import (
	"errors"
	"unsafe"
)

// ErrNoDynamicLoading is returned by LoadLibrary on builds without a
// dynamic loader. Pure-Go loading needs CGO_ENABLED=0.
var ErrNoDynamicLoading = errors.New("dynamic library loading unavailable on this build")

func dlopen(string) (unsafe.Pointer, error) {
	return nil, ErrNoDynamicLoading
}

func dlsym(unsafe.Pointer, string) (unsafe.Pointer, error) {
	return nil, ErrNoDynamicLoading
}

func dlclose(unsafe.Pointer) error {
	return nil
}
