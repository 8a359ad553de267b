// Package security confines file access for the form tools to
// configured directories.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathValidator checks that user-supplied paths stay inside a single
// configured directory before any PDF is opened or written.
type PathValidator struct {
	root string
}

// NewPathValidator returns a validator rooted at dir. The directory
// does not have to exist yet; validation is skipped until it does, so
// a server can start before its document root is provisioned.
func NewPathValidator(dir string) (*PathValidator, error) {
	if dir == "" {
		return nil, fmt.Errorf("configured directory cannot be empty")
	}
	return &PathValidator{root: dir}, nil
}

// GetConfiguredDirectory returns the directory this validator confines
// access to.
func (v *PathValidator) GetConfiguredDirectory() string {
	return v.root
}

// ValidatePath rejects paths that resolve outside the configured
// directory. Paths that do not exist yet are judged lexically, which
// keeps planned output files valid before they are written.
func (v *PathValidator) ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	within, err := v.IsPathWithinDirectory(path)
	if err != nil {
		return fmt.Errorf("path validation failed: %w", err)
	}
	if !within {
		return fmt.Errorf("path is outside configured directory: %s", path)
	}
	return nil
}

// ValidateDirectory applies ValidatePath and additionally requires the
// target to be a directory when it exists.
func (v *PathValidator) ValidateDirectory(dirPath string) error {
	if err := v.ValidatePath(dirPath); err != nil {
		return err
	}
	if v.rootMissing() {
		return nil
	}

	info, err := os.Stat(dirPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Not created yet, the caller may do so later.
			return nil
		}
		return fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", dirPath)
	}
	return nil
}

// IsPathWithinDirectory reports whether path stays inside the
// configured directory. Both the lexical path and its symlink target
// must land inside the root, so a link placed in the directory cannot
// reach files outside it. The root itself counts as inside.
func (v *PathValidator) IsPathWithinDirectory(path string) (bool, error) {
	if v.rootMissing() {
		return true, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}
	absRoot, err := filepath.Abs(v.root)
	if err != nil {
		return false, fmt.Errorf("failed to resolve configured directory: %w", err)
	}

	// The root may itself sit behind a symlink (a /tmp that points at
	// /private/tmp, say), so containment is accepted against either
	// form of it.
	realRoot := resolveSymlinks(absRoot)
	lexicalOK := contains(absRoot, absPath) || contains(realRoot, absPath)

	realPath := absPath
	if info, err := os.Lstat(absPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		realPath = resolveSymlinks(absPath)
	}
	resolvedOK := contains(absRoot, realPath) || contains(realRoot, realPath)

	return lexicalOK && resolvedOK, nil
}

func (v *PathValidator) rootMissing() bool {
	_, err := os.Stat(v.root)
	return os.IsNotExist(err)
}

// resolveSymlinks resolves path when it exists and falls back to the
// cleaned input when it does not.
func resolveSymlinks(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return filepath.Clean(path)
}

// contains reports whether path equals dir or sits beneath it. The
// comparison is lexical; callers resolve symlinks first.
func contains(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
