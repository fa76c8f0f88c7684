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

package unwrap

import "context"

// DPAPI is only available on Windows.
type DPAPI struct{}

// NewDPAPI returns ErrUnsupportedPlatform outside Windows.
func NewDPAPI() (*DPAPI, error) {
	return nil, ErrUnsupportedPlatform
}

// Unwrap always fails outside Windows.
func (d *DPAPI) Unwrap(context.Context, []byte, []byte) ([]byte, error) {
	return nil, ErrUnsupportedPlatform
}

// Protect always fails outside Windows.
func (d *DPAPI) Protect(context.Context, []byte, []byte) ([]byte, error) {
	return nil, ErrUnsupportedPlatform
}

