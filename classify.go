package rendersec

import (
	"path/filepath"
	"strconv"
	"strings"
)

// Category is the classification bucket of a denied operation.
type Category int

const (
	CategoryRead Category = iota
	CategoryWrite
	CategoryExec
	CategoryLink
	CategoryExit
	CategoryProperty
	CategorySecurity
	CategoryReflection
	CategoryThread
)

var categoryNames = [...]string{
	CategoryRead:       "Read",
	CategoryWrite:      "Write",
	CategoryExec:       "Exec",
	CategoryLink:       "Link",
	CategoryExit:       "Exit",
	CategoryProperty:   "Property",
	CategorySecurity:   "Security",
	CategoryReflection: "Reflection",
	CategoryThread:     "Thread",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "Unknown"
	}

	return categoryNames[c]
}

// Verdict is the outcome of [Classify].
type Verdict struct {
	Allowed  bool
	Category Category
	Detail   string
}

// Err returns nil for an allowed verdict and a [*DeniedError] otherwise.
func (v Verdict) Err() error {
	if v.Allowed {
		return nil
	}

	return &DeniedError{Category: v.Category, Detail: v.Detail}
}

var allowed = Verdict{Allowed: true}

func deny(c Category, detail string) Verdict {
	return Verdict{Category: c, Detail: detail}
}

// Classify decides op against rules. It does no I/O and consults no process
// state, so the same inputs always yield the same verdict.
//
// Paths are cleaned lexically before matching; a relative path is never
// under an exempt root.
func Classify(op Operation, rules *Rules, restrictReads bool) Verdict {
	switch op := op.(type) {
	case FileAccess:
		path := filepath.Clean(op.Path)
		if op.Rights.Writes() {
			if rules.writable(path) {
				return allowed
			}

			return deny(CategoryWrite, op.Path)
		}

		if !restrictReads || rules.readable(path) {
			return allowed
		}

		return deny(CategoryRead, op.Path)

	case Exec:
		if restrictReads {
			return deny(CategoryRead, op.Command)
		}

		return deny(CategoryExec, op.Command)

	case LoadLibrary:
		if rules.library(op.Name) {
			return allowed
		}

		return deny(CategoryLink, op.Name)

	case SetProperty:
		if isSignificantProperty(op.Key) {
			return deny(CategoryWrite, op.Key)
		}

		return allowed

	case ReadProperties:
		return deny(CategoryProperty, "")

	case SetTimezone:
		return allowed

	case Exit:
		return deny(CategoryExit, strconv.Itoa(op.Code))

	case ReplaceInterceptor:
		return deny(CategorySecurity, "")

	case Reflect:
		return deny(CategoryReflection, op.Target)

	case ThreadControl:
		return deny(CategoryThread, op.Target)
	}

	return allowed
}

// significantProperties are keys whose mutation would redirect where the
// process reads or writes files, or what code it loads.
var significantProperties = map[string]struct{}{
	"TMPDIR":                   {},
	"TMP":                      {},
	"TEMP":                     {},
	"HOME":                     {},
	"PATH":                     {},
	"LD_LIBRARY_PATH":          {},
	"LD_PRELOAD":               {},
	"DYLD_LIBRARY_PATH":        {},
	"DYLD_INSERT_LIBRARIES":    {},
	"GODEBUG":                  {},
	"GOROOT":                   {},
	"RENDERSEC.CODEC.CACHEDIR": {},
}

func isSignificantProperty(key string) bool {
	_, ok := significantProperties[strings.ToUpper(key)]

	return ok
}
