// Package pattern matches library names against an allow-list.
//
// Patterns compile with coregex (RE2-compatible) unless they use PCRE-only
// syntax, in which case regexp2 is used instead.
package pattern

import (
	"fmt"
	"strings"

	"github.com/coregx/coregex"
	"github.com/dlclark/regexp2"
)

// Pattern is a compiled allow-list pattern.
type Pattern struct {
	src  string
	core *coregex.Regex
	pcre *regexp2.Regexp
}

// Compile parses src. PCRE-only patterns are compiled with regexp2; everything
// else uses coregex.
func Compile(src string) (*Pattern, error) {
	if needsPCRE(src) {
		re, err := regexp2.Compile(src, regexp2.None)
		if err != nil {
			return nil, err
		}

		return &Pattern{src: src, pcre: re}, nil
	}

	re, err := coregex.Compile(src)
	if err != nil {
		return nil, err
	}

	return &Pattern{src: src, core: re}, nil
}

// MustCompile is like Compile but panics if src cannot be parsed.
func MustCompile(src string) *Pattern {
	p, err := Compile(src)
	if err != nil {
		panic(err)
	}

	return p
}

// String returns the source pattern.
func (p *Pattern) String() string {
	return p.src
}

// MatchString reports whether s contains a match of p.
func (p *Pattern) MatchString(s string) bool {
	if p.core != nil {
		return p.core.MatchString(s)
	}

	matched, err := p.pcre.MatchString(s)

	return err == nil && matched
}

// Set is an allow-list of exact names and patterns. The zero value matches
// nothing.
type Set struct {
	names    map[string]struct{}
	patterns []*Pattern
}

// AddName allows name verbatim.
func (s *Set) AddName(name string) {
	if name == "" {
		return
	}

	if s.names == nil {
		s.names = make(map[string]struct{})
	}

	s.names[name] = struct{}{}
}

// AddPattern compiles src and allows every name it matches.
func (s *Set) AddPattern(src string) error {
	p, err := Compile(src)
	if err != nil {
		return fmt.Errorf("library pattern %q: %w", src, err)
	}

	s.patterns = append(s.patterns, p)

	return nil
}

// Match reports whether name is allowed by s.
func (s *Set) Match(name string) bool {
	if s == nil || name == "" {
		return false
	}

	if _, ok := s.names[name]; ok {
		return true
	}

	for _, p := range s.patterns {
		if p.MatchString(name) {
			return true
		}
	}

	return false
}

// Len returns the number of names and patterns in s.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}

	return len(s.names) + len(s.patterns)
}

// Clone returns an independent copy of s. Compiled patterns are shared; they
// are immutable.
func (s *Set) Clone() *Set {
	c := &Set{}
	if s == nil {
		return c
	}

	for name := range s.names {
		c.AddName(name)
	}

	c.patterns = append(c.patterns, s.patterns...)

	return c
}

// needsPCRE checks whether src uses syntax RE2 cannot execute: lookarounds,
// atomic groups, backreferences and PCRE-style named groups.
//
// Ref: https://pcre2project.github.io/pcre2/doc/pcre2syntax/
func needsPCRE(src string) bool {
	tokens := []string{
		"(?=", "(?!", "(?<=", "(?<!",
		"(?>", "(?|", "(?(", "(?#",
		"(?R)", "(?P>", "(?&", "(?P=",
		`\k<`, `\k'`, `\k{`, `\g`,
		`\A`, `\Z`, `\z`, `\G`, `\K`,
	}

	for _, tok := range tokens {
		if strings.Contains(src, tok) {
			return true
		}
	}

	escaped := false
	for i := 0; i < len(src); i++ {
		if src[i] != '\\' {
			escaped = false
			continue
		}

		if !escaped && i+1 < len(src) && src[i+1] >= '1' && src[i+1] <= '9' {
			return true
		}

		escaped = !escaped
	}

	// NOTE(dwisiswant0): Go supports (?P<name>...), but not (?<name>...) or
	// (?'name'...).
	if !strings.Contains(src, "(?P<") &&
		(strings.Contains(src, "(?<") || strings.Contains(src, "(?'")) {
		return true
	}

	return false
}
