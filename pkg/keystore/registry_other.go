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

//go:build !windows

package keystore

import "context"

// DefaultRegistryPath is the HKEY_CURRENT_USER subkey holding the records.
const DefaultRegistryPath = `SOFTWARE\Dropbox\ks`

// Registry is only available on Windows.
type Registry struct{}

// NewRegistry returns ErrUnsupportedPlatform outside Windows.
func NewRegistry(string) (*Registry, error) {
	return nil, ErrUnsupportedPlatform
}

// Get always fails outside Windows.
func (r *Registry) Get(context.Context, string) ([]byte, error) {
	return nil, ErrUnsupportedPlatform
}

// AppendsTerminator reports true, matching the Windows implementation.
func (r *Registry) AppendsTerminator() bool {
	return true
}
