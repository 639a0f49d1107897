package rendersec

import (
	"fmt"

	"go.dw1.io/x/exp/rendersec/internal/pattern"
)

// Option configures a Sandbox.
//
// Returning an error records the first failure and exposes it through
// [Sandbox.Activate].
type Option func(*config) error

type config struct {
	appTempDir         string
	logger             Logger
	readRoots          []string
	libraries          pattern.Set
	noDefaultLibraries bool
	noRuntimeDiscovery bool
	resolveCacheSize   int
}

func newConfig(opts ...Option) (config, error) {
	var (
		cfg    config
		optErr error
	)

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil && optErr == nil {
			optErr = err
		}
	}

	return cfg, optErr
}

// WithAppTempDir exempts reads and writes under dir, a temporary directory
// the host reserves for sandboxed code.
func WithAppTempDir(dir string) Option {
	return func(cfg *config) error {
		if dir == "" {
			return fmt.Errorf("%w: AppTempDir requires a path", ErrInvalidOption)
		}

		cfg.appTempDir = dir

		return nil
	}
}

// WithLogger sets the diagnostics sink. A nil logger discards diagnostics.
func WithLogger(l Logger) Option {
	return func(cfg *config) error {
		cfg.logger = l

		return nil
	}
}

// WithRuntimeHome exempts reads under dir, in addition to the discovered
// runtime directories.
func WithRuntimeHome(dir string) Option {
	return func(cfg *config) error {
		if dir == "" {
			return fmt.Errorf("%w: RuntimeHome requires a path", ErrInvalidOption)
		}

		cfg.readRoots = append(cfg.readRoots, dir)

		return nil
	}
}

// WithLibrary allows loading the library with the given file name or path.
func WithLibrary(name string) Option {
	return func(cfg *config) error {
		if name == "" {
			return fmt.Errorf("%w: Library requires a name", ErrInvalidOption)
		}

		cfg.libraries.AddName(name)

		return nil
	}
}

// WithLibraryPattern allows loading every library whose file name matches
// the regular expression src.
//
// Patterns using PCRE-only syntax (lookarounds, backreferences) are accepted.
func WithLibraryPattern(src string) Option {
	return func(cfg *config) error {
		if err := cfg.libraries.AddPattern(src); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidOption, err)
		}

		return nil
	}
}

// WithoutDefaultLibraries drops the built-in font and image codec library
// allow-list.
func WithoutDefaultLibraries() Option {
	return func(cfg *config) error {
		cfg.noDefaultLibraries = true

		return nil
	}
}

// WithoutRuntimeDiscovery skips discovery of the executable, GOROOT and
// dynamic linker directories. Only roots given with [WithRuntimeHome] stay
// readable.
func WithoutRuntimeDiscovery() Option {
	return func(cfg *config) error {
		cfg.noRuntimeDiscovery = true

		return nil
	}
}

// WithResolveCacheSize bounds the number of symlink resolutions each
// activation caches. The default is 4096.
func WithResolveCacheSize(n int) Option {
	return func(cfg *config) error {
		if n <= 0 {
			return fmt.Errorf("%w: ResolveCacheSize must be positive", ErrInvalidOption)
		}

		cfg.resolveCacheSize = n

		return nil
	}
}
