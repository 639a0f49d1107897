// Package runtime discovers the directories the running program needs to read
// from while sandboxed: its own installation and the dynamic linker's search
// path.
package runtime

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// HomeDirs returns the installation directories of the running program.
//
// It includes the directory of the executable (and its symlink-resolved
// target) and GOROOT when set. Missing entries are skipped.
func HomeDirs() []string {
	var dirs []string
	seen := make(map[string]struct{})

	if exe, err := os.Executable(); err == nil {
		dirs = appendDirWithSeen(dirs, seen, filepath.Dir(exe))

		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			dirs = appendDirWithSeen(dirs, seen, filepath.Dir(resolved))
		}
	}

	if goroot := os.Getenv("GOROOT"); goroot != "" {
		dirs = appendDirWithSeen(dirs, seen, goroot)
	}

	return dirs
}

// LinkerDirs returns dynamic linker search directories for the host.
//
// It starts with existing common system defaults, then appends directories
// from LD_LIBRARY_PATH and /etc/ld.so.conf (including nested include
// directives), while preserving order and removing duplicates. Relative
// entries are ignored. A missing ld.so.conf is not an error.
func LinkerDirs() ([]string, error) {
	return linkerDirs("/etc/ld.so.conf")
}

func linkerDirs(ldConf string) ([]string, error) {
	var dirs []string
	seen := make(map[string]struct{})

	stdDefaults := []string{
		"/lib",
		"/usr/lib",
		"/lib64",
		"/usr/lib64",
		"/lib/x86_64-linux-gnu",
		"/usr/lib/x86_64-linux-gnu",
		"/lib/aarch64-linux-gnu",
		"/usr/lib/aarch64-linux-gnu",
		"/usr/local/lib",
	}

	dirs = appendDirWithSeen(dirs, seen, stdDefaults...)

	for d := range strings.SplitSeq(os.Getenv("LD_LIBRARY_PATH"), ":") {
		dirs = appendDirWithSeen(dirs, seen, d)
	}

	ldConfDirs, err := parseLdConf(ldConf)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return dirs, nil
		}

		return nil, err
	}

	dirs = appendDirWithSeen(dirs, seen, ldConfDirs...)

	return dirs, nil
}

// parseLdConf reads an ld.so.conf-style file and returns linker directories.
//
// It ignores empty lines and comments and resolves include directives
// recursively.
func parseLdConf(filename string) ([]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	var dirs []string

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		after, ok := strings.CutPrefix(line, "include ")
		if !ok {
			if filepath.IsAbs(line) {
				dirs = append(dirs, line)
			}

			continue
		}

		pattern := strings.TrimSpace(after)
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(filepath.Dir(filename), pattern)
		}

		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}

		for _, match := range matches {
			if match == filename {
				continue
			}

			subDirs, err := parseLdConf(match)
			if err != nil {
				continue
			}

			dirs = append(dirs, subDirs...)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return dirs, nil
}

// appendDirWithSeen appends the existing absolute directories among elems
// that are not in seen. Relative entries would otherwise resolve against the
// working directory.
//
// NOTE(dwisiswant0): Might be separated into a utility package if needed.
func appendDirWithSeen(slice []string, seen map[string]struct{}, elems ...string) []string {
	for _, v := range elems {
		if !filepath.IsAbs(v) {
			continue
		}

		if _, ok := seen[v]; ok {
			continue
		}

		info, err := os.Stat(v)
		if err != nil || !info.IsDir() {
			continue
		}

		seen[v] = struct{}{}
		slice = append(slice, v)
	}

	return slice
}
