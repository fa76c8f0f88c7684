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

//go:build windows

package keystore

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

// DefaultRegistryPath is the HKEY_CURRENT_USER subkey holding the records.
const DefaultRegistryPath = `SOFTWARE\Dropbox\ks`

// Registry reads REG_BINARY values under a HKEY_CURRENT_USER subkey. The
// values carry a trailing NUL byte that is not part of the record.
type Registry struct {
	path string
}

// NewRegistry returns a registry store for the subkey path. An empty path
// uses DefaultRegistryPath.
func NewRegistry(path string) (*Registry, error) {
	if path == "" {
		path = DefaultRegistryPath
	}
	return &Registry{path: path}, nil
}

// Get returns the binary value name, terminator included.
func (r *Registry) Get(_ context.Context, name string) ([]byte, error) {
	if name == "" {
		return nil, ErrInvalidName
	}

	key, err := registry.OpenKey(registry.CURRENT_USER, r.path, registry.QUERY_VALUE)
	if err != nil {
		return nil, translateRegistryError(r.path, err)
	}
	defer key.Close()

	value, _, err := key.GetBinaryValue(name)
	if err != nil {
		return nil, translateRegistryError(name, err)
	}
	return value, nil
}

// AppendsTerminator reports true: registry reads include a NUL byte.
func (r *Registry) AppendsTerminator() bool {
	return true
}

func translateRegistryError(name string, err error) error {
	switch {
	case errors.Is(err, registry.ErrNotExist):
		return fmt.Errorf("%w: %s", ErrKeyNotFound, name)
	case errors.Is(err, windows.ERROR_ACCESS_DENIED):
		return fmt.Errorf("%w: %s", ErrAccessDenied, name)
	default:
		return fmt.Errorf("registry keystore: %s: %w", name, err)
	}
}
