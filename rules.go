package rendersec

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.dw1.io/x/exp/rendersec/internal/pattern"
	"go.dw1.io/x/exp/rendersec/internal/runtime"
)

// defaultLibraries matches the font and image codec libraries a render host
// loads on behalf of custom views.
const defaultLibraries = `^(lib)?(freetype|fontconfig|harfbuzz|png[0-9]*|jpeg|turbojpeg|lcms2?|z|zlib1|expat|webp|gif|tiff)` +
	`(\.so(\.[0-9]+)*|(\.[0-9]+)*\.dylib|\.dll)?$`

// Rules is the exemption table consulted by [Classify]. Rules are immutable
// once built.
type Rules struct {
	writeRoots []string
	readRoots  []string
	libraries  *pattern.Set
}

// NewRules builds the exemption table described by opts, the same way
// [Sandbox.Activate] does.
func NewRules(opts ...Option) (*Rules, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	return buildRules(&cfg), nil
}

// WritableRoots returns the directories under which reads and writes are
// exempt.
func (r *Rules) WritableRoots() []string {
	if r == nil {
		return nil
	}

	return slices.Clone(r.writeRoots)
}

// ReadableRoots returns the directories under which reads are exempt,
// including the writable roots.
func (r *Rules) ReadableRoots() []string {
	if r == nil {
		return nil
	}

	return slices.Clone(r.readRoots)
}

func (r *Rules) writable(path string) bool {
	if r == nil {
		return false
	}

	for _, root := range r.writeRoots {
		if under(path, root) {
			return true
		}
	}

	return false
}

func (r *Rules) readable(path string) bool {
	if r == nil {
		return false
	}

	for _, root := range r.readRoots {
		if under(path, root) {
			return true
		}
	}

	return false
}

func (r *Rules) library(name string) bool {
	if r == nil {
		return false
	}

	return r.libraries.Match(filepath.Base(name)) || r.libraries.Match(name)
}

// buildRules resolves the roots in cfg. Discovery failures drop the affected
// root instead of failing.
func buildRules(cfg *config) *Rules {
	r := &Rules{libraries: cfg.libraries.Clone()}

	if !cfg.noDefaultLibraries {
		_ = r.libraries.AddPattern(defaultLibraries)
	}

	r.writeRoots = appendRoot(r.writeRoots, os.TempDir())
	r.writeRoots = appendRoot(r.writeRoots, cfg.appTempDir)

	r.readRoots = slices.Clone(r.writeRoots)
	for _, dir := range cfg.readRoots {
		r.readRoots = appendRoot(r.readRoots, dir)
	}

	if !cfg.noRuntimeDiscovery {
		for _, dir := range runtime.HomeDirs() {
			r.readRoots = appendRoot(r.readRoots, dir)
		}

		if dirs, err := runtime.LinkerDirs(); err == nil {
			for _, dir := range dirs {
				r.readRoots = appendRoot(r.readRoots, dir)
			}
		}
	}

	return r
}

// appendRoot appends dir in absolute cleaned form and, when it differs, in
// symlink-resolved form.
func appendRoot(roots []string, dir string) []string {
	if dir == "" {
		return roots
	}

	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	dir = filepath.Clean(dir)
	if !slices.Contains(roots, dir) {
		roots = append(roots, dir)
	}

	if canonical, err := filepath.EvalSymlinks(dir); err == nil {
		canonical = filepath.Clean(canonical)
		if !slices.Contains(roots, canonical) {
			roots = append(roots, canonical)
		}
	}

	return roots
}

// under reports whether the cleaned path is root or lies below it.
func under(path, root string) bool {
	if path == root {
		return true
	}

	if !strings.HasPrefix(path, root) {
		return false
	}

	if strings.HasSuffix(root, string(filepath.Separator)) {
		return true
	}

	return path[len(root)] == filepath.Separator
}
