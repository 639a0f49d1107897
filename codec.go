package rendersec

import (
	"context"
	"sync/atomic"
)

// CodecCacheProperty is the property key guarding the image codec cache
// directory.
const CodecCacheProperty = "rendersec.codec.cachedir"

var codecCacheDir atomic.Pointer[string]

// SetCodecCacheDir sets the directory image codecs spill decoded data to. It
// is checked as a [SetProperty] of [CodecCacheProperty].
func SetCodecCacheDir(ctx context.Context, dir string) error {
	if err := Check(ctx, SetProperty{Key: CodecCacheProperty}); err != nil {
		return err
	}

	codecCacheDir.Store(&dir)

	return nil
}

// CodecCacheDir returns the codec cache directory, or "" when none is set.
//
// While a sandbox is installed and active the cache is off for every thread,
// so decoders never touch the disk on behalf of sandboxed code.
func CodecCacheDir() string {
	if !disabled.Load() {
		if s := installedSandbox(); s != nil && s.Active() {
			return ""
		}
	}

	if dir := codecCacheDir.Load(); dir != nil {
		return *dir
	}

	return ""
}
