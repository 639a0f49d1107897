//go:build ((linux || freebsd || darwin) && (amd64 || arm64) && !cgo) || windows

package guard

import (
	"unsafe"

	"github.com/go-webgpu/goffi/ffi"
)

func dlopen(name string) (unsafe.Pointer, error) {
	return ffi.LoadLibrary(name)
}

func dlsym(handle unsafe.Pointer, name string) (unsafe.Pointer, error) {
	return ffi.GetSymbol(handle, name)
}

func dlclose(handle unsafe.Pointer) error {
	return ffi.FreeLibrary(handle)
}
