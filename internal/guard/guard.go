// Package guard decides whether a directory may be scanned or have files
// deleted inside it.
//
// A path is protected when it is a filesystem root, when any of its segments
// is an operating system directory name (Windows, Unix or macOS), or when it
// is exactly a multi-user root such as /home or C:\Users. Per-user
// directories below a multi-user root are allowed.
package guard

import (
	"path"
	"path/filepath"
	"strings"
)

// reserved are protected wherever they appear in a path, so a system tree
// mounted or copied below another directory is covered too.
var reserved = map[string]bool{
	// Windows
	"windows":                   true,
	"program files":             true,
	"program files (x86)":       true,
	"programdata":               true,
	"$windows.~bt":              true,
	"$windows.~ws":              true,
	"windows.old":               true,
	"system volume information": true,
	"recovery":                  true,
	"perflogs":                  true,
	"boot":                      true,

	// Unix
	"bin":   true,
	"dev":   true,
	"etc":   true,
	"lib":   true,
	"lib32": true,
	"lib64": true,
	"proc":  true,
	"sbin":  true,
	"sys":   true,
	"usr":   true,
	"var":   true,

	// macOS
	"system":       true,
	"library":      true,
	"applications": true,
	"private":      true,

	// Windows system trees, usually nested
	"system32": true,
	"system64": true,
}

// multiUserRoots are protected only when the path is exactly the root itself.
var multiUserRoots = map[string]bool{
	"users": true,
	"home":  true,
}

// Guard applies the built-in rules plus an optional list of extra protected
// directories. The zero value applies only the built-in rules.
type Guard struct {
	extra []string
}

// New returns a Guard that also protects every path in extra and everything
// below it.
func New(extra []string) *Guard {
	g := &Guard{}
	for _, e := range extra {
		if strings.TrimSpace(e) == "" {
			continue
		}
		g.extra = append(g.extra, Normalize(e))
	}
	return g
}

// IsProtected reports whether p must not be scanned or deleted in.
func (g *Guard) IsProtected(p string) bool {
	if IsProtected(p) {
		return true
	}
	if g == nil {
		return false
	}
	n := Normalize(p)
	for _, e := range g.extra {
		if n == e || strings.HasPrefix(n, strings.TrimSuffix(e, "/")+"/") {
			return true
		}
	}
	return false
}

// IsProtected applies the built-in rules to p.
func IsProtected(p string) bool {
	n := Normalize(p)

	if isRoot(n) {
		return true
	}

	segs := segments(n)
	if len(segs) == 0 {
		return true
	}

	if len(segs) == 1 && multiUserRoots[segs[0]] {
		return true
	}

	for _, s := range segs {
		if reserved[s] {
			return true
		}
	}
	return false
}

// Normalize returns p as an absolute, slash-separated, lower-cased path
// without a trailing separator (except for roots). Drive-letter paths are
// kept as-is rather than resolved against the working directory so Windows
// paths classify the same way on every platform.
func Normalize(p string) string {
	s := strings.ReplaceAll(strings.TrimSpace(p), `\`, "/")
	if !hasDrive(s) {
		if abs, err := filepath.Abs(filepath.FromSlash(s)); err == nil {
			s = filepath.ToSlash(abs)
		}
	}
	s = strings.ToLower(s)

	vol, rest := splitDrive(s)
	if rest == "" {
		return vol + "/"
	}
	cleaned := path.Clean(rest)
	if vol != "" && !strings.HasPrefix(cleaned, "/") {
		cleaned = "/" + cleaned
	}
	return vol + cleaned
}

func isRoot(n string) bool {
	if n == "/" {
		return true
	}
	return len(n) <= 3 && strings.Contains(n, ":")
}

func segments(n string) []string {
	_, rest := splitDrive(n)
	var out []string
	for _, s := range strings.Split(rest, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func hasDrive(s string) bool {
	return len(s) >= 2 && s[1] == ':' && isLetter(s[0])
}

func splitDrive(s string) (vol, rest string) {
	if hasDrive(s) {
		return s[:2], s[2:]
	}
	return "", s
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
