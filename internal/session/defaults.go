package session

import (
	"os"
	"path/filepath"

	"github.com/Joik2ww/FileOrganizer/internal/errors"
	"github.com/Joik2ww/FileOrganizer/internal/guard"
)

// FallbackDirName is created under the home directory when every other
// candidate is protected.
const FallbackDirName = "DuplicateScan"

// SafeDefaultDirectory returns the first unprotected directory among the
// executable's directory, the home directory and the working directory.
// If all are protected it creates ~/DuplicateScan and returns that.
func SafeDefaultDirectory(g *guard.Guard) (string, error) {
	var candidates []string
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Dir(exe))
	}
	home, homeErr := os.UserHomeDir()
	if homeErr == nil {
		candidates = append(candidates, home)
	}
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, cwd)
	}

	if dir := pickDirectory(g, candidates); dir != "" {
		return dir, nil
	}

	if homeErr != nil {
		return "", errors.Wrap(homeErr, errors.ErrNotFound, "no safe default directory")
	}
	return createFallback(home)
}

func pickDirectory(g *guard.Guard, candidates []string) string {
	for _, c := range candidates {
		if c == "" || g.IsProtected(c) {
			continue
		}
		if info, err := os.Stat(c); err == nil && info.IsDir() {
			return c
		}
	}
	return ""
}

func createFallback(home string) (string, error) {
	dir := filepath.Join(home, FallbackDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "create %s", dir)
	}
	return dir, nil
}
