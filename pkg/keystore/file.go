// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-keyrecover.
//
// go-keyrecover is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package keystore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	// Default directory permissions (owner rwx only)
	defaultDirPerms = 0700

	// Record files are readable by the owner only
	recordFilePerms = 0600
)

// File stores each record as a file named after its logical name under a
// root directory. Safe for concurrent use.
type File struct {
	mu      sync.RWMutex
	rootDir string
}

// NewFile returns a file store rooted at rootDir, creating it with 0700
// permissions if needed.
func NewFile(rootDir string) (*File, error) {
	if rootDir == "" {
		return nil, fmt.Errorf("file keystore: root directory cannot be empty")
	}

	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("file keystore: failed to resolve root directory: %w", err)
	}

	if err := os.MkdirAll(abs, defaultDirPerms); err != nil {
		return nil, fmt.Errorf("file keystore: failed to create root directory: %w", err)
	}

	return &File{rootDir: abs}, nil
}

// Root returns the absolute root directory.
func (f *File) Root() string {
	return f.rootDir
}

// Get reads the record file for name.
func (f *File) Get(_ context.Context, name string) ([]byte, error) {
	path, err := f.nameToPath(name)
	if err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, translateFileError(name, err)
	}
	return data, nil
}

// Put writes the record file for name, replacing any previous record.
func (f *File) Put(_ context.Context, name string, value []byte) error {
	path, err := f.nameToPath(name)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), defaultDirPerms); err != nil {
		return fmt.Errorf("file keystore: failed to create directory for %q: %w", name, err)
	}
	if err := os.WriteFile(path, value, recordFilePerms); err != nil {
		return translateFileError(name, err)
	}
	return nil
}

// Delete removes the record file for name.
func (f *File) Delete(_ context.Context, name string) error {
	path, err := f.nameToPath(name)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(path); err != nil {
		return translateFileError(name, err)
	}
	return nil
}

// List returns the names of all stored records in sorted order.
func (f *File) List(_ context.Context) ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	names := make([]string, 0)
	err := filepath.WalkDir(f.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(f.rootDir, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("file keystore: failed to list records: %w", err)
	}
	return names, nil
}

func (f *File) nameToPath(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidName, err)
	}
	return filepath.Join(f.rootDir, filepath.FromSlash(name)), nil
}

// validateName allows nested names like "ks/Client" but blocks traversal
// out of the root directory.
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if strings.Contains(name, "\x00") {
		return fmt.Errorf("name contains null byte")
	}
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return fmt.Errorf("name cannot be an absolute path")
	}

	cleaned := filepath.ToSlash(filepath.Clean(filepath.FromSlash(name)))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return fmt.Errorf("name contains path traversal attempt")
	}
	return nil
}

func translateFileError(name string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", ErrKeyNotFound, name)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s", ErrAccessDenied, name)
	default:
		return fmt.Errorf("file keystore: %q: %w", name, err)
	}
}
