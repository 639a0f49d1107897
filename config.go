package rendersec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cast"
	"go.dw1.io/safemath"
	"gopkg.in/yaml.v3"
)

// Environment variables read by [Config.ApplyEnv].
const (
	EnvEnabled          = "RENDERSEC_ENABLED"
	EnvRestrictReads    = "RENDERSEC_RESTRICT_READS"
	EnvAppTempDir       = "RENDERSEC_APP_TEMP_DIR"
	EnvRuntimeHomes     = "RENDERSEC_RUNTIME_HOMES"
	EnvResolveCacheSize = "RENDERSEC_RESOLVE_CACHE_SIZE"
)

// Config is a sandbox policy, usually loaded from a YAML file:
//
//	enabled: true
//	restrict_reads: true
//	app_temp_dir: /var/tmp/render
//	runtime_homes: [/opt/render/share]
//	libraries: [libfoo.so.1]
//	library_patterns: ['^libbar(\.so.*)?$']
//
// Unset fields keep their defaults.
type Config struct {
	Enabled          *bool    `yaml:"enabled"`
	RestrictReads    *bool    `yaml:"restrict_reads"`
	AppTempDir       string   `yaml:"app_temp_dir"`
	RuntimeHomes     []string `yaml:"runtime_homes"`
	Libraries        []string `yaml:"libraries"`
	LibraryPatterns  []string `yaml:"library_patterns"`
	DefaultLibraries *bool    `yaml:"default_libraries"`
	RuntimeDiscovery *bool    `yaml:"runtime_discovery"`
	ResolveCacheSize int64    `yaml:"resolve_cache_size"`
}

// LoadConfig reads the policy file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// ParseConfig decodes a YAML policy. Unknown keys are rejected.
func ParseConfig(data []byte) (*Config, error) {
	cfg := new(Config)

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides c with the RENDERSEC_* environment variables that are
// set. RENDERSEC_RUNTIME_HOMES is a whitespace-separated list appended to
// the configured homes.
func (c *Config) ApplyEnv() error {
	return c.applyEnv(os.LookupEnv)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvEnabled); ok {
		b, err := cast.ToBoolE(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidOption, EnvEnabled, err)
		}

		c.Enabled = &b
	}

	if v, ok := lookup(EnvRestrictReads); ok {
		b, err := cast.ToBoolE(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidOption, EnvRestrictReads, err)
		}

		c.RestrictReads = &b
	}

	if v, ok := lookup(EnvAppTempDir); ok && v != "" {
		c.AppTempDir = v
	}

	if v, ok := lookup(EnvRuntimeHomes); ok {
		homes, err := cast.ToStringSliceE(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidOption, EnvRuntimeHomes, err)
		}

		c.RuntimeHomes = append(c.RuntimeHomes, homes...)
	}

	if v, ok := lookup(EnvResolveCacheSize); ok {
		n, err := cast.ToInt64E(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidOption, EnvResolveCacheSize, err)
		}

		c.ResolveCacheSize = n
	}

	return nil
}

// Apply sets the process-wide switches named by c. Unset switches are left
// alone.
func (c *Config) Apply() {
	if c.Enabled != nil {
		SetEnabled(*c.Enabled)
	}

	if c.RestrictReads != nil {
		SetRestrictReads(*c.RestrictReads)
	}
}

// Options translates the per-sandbox part of c into options for [New].
func (c *Config) Options() ([]Option, error) {
	var opts []Option

	if c.AppTempDir != "" {
		opts = append(opts, WithAppTempDir(c.AppTempDir))
	}

	for _, dir := range c.RuntimeHomes {
		opts = append(opts, WithRuntimeHome(dir))
	}

	for _, name := range c.Libraries {
		opts = append(opts, WithLibrary(name))
	}

	for _, src := range c.LibraryPatterns {
		opts = append(opts, WithLibraryPattern(src))
	}

	if c.DefaultLibraries != nil && !*c.DefaultLibraries {
		opts = append(opts, WithoutDefaultLibraries())
	}

	if c.RuntimeDiscovery != nil && !*c.RuntimeDiscovery {
		opts = append(opts, WithoutRuntimeDiscovery())
	}

	if c.ResolveCacheSize != 0 {
		n, err := safemath.ConvertAny[int](c.ResolveCacheSize)
		if err != nil {
			return nil, fmt.Errorf("%w: resolve_cache_size: %v", ErrInvalidOption, err)
		}

		opts = append(opts, WithResolveCacheSize(n))
	}

	// Surface malformed entries here rather than at Activate.
	if _, err := newConfig(opts...); err != nil {
		return nil, err
	}

	return opts, nil
}
