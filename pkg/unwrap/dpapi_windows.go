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

package unwrap

import (
	"bytes"
	"context"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// DPAPI is the Windows Data Protection API primitive. Blobs unprotect only
// under the Windows user (or machine) that protected them.
type DPAPI struct {
	flags uint32
}

// NewDPAPI returns the DPAPI primitive. Prompting is always disabled.
func NewDPAPI() (*DPAPI, error) {
	return &DPAPI{flags: windows.CRYPTPROTECT_UI_FORBIDDEN}, nil
}

func newBlob(b []byte) *windows.DataBlob {
	if len(b) == 0 {
		return nil
	}
	return &windows.DataBlob{Size: uint32(len(b)), Data: &b[0]}
}

func takeBlob(out *windows.DataBlob) []byte {
	if out.Data == nil {
		return nil
	}
	defer windows.LocalFree(windows.Handle(unsafe.Pointer(out.Data))) //nolint:errcheck
	return bytes.Clone(unsafe.Slice(out.Data, out.Size))
}

// Unwrap calls CryptUnprotectData with entropy as optional entropy.
func (d *DPAPI) Unwrap(_ context.Context, ciphertext, entropy []byte) ([]byte, error) {
	if len(ciphertext) == 0 {
		return nil, fmt.Errorf("%w: empty blob", ErrUnwrapFailed)
	}

	var out windows.DataBlob
	err := windows.CryptUnprotectData(newBlob(ciphertext), nil, newBlob(entropy), 0, nil, d.flags, &out)
	if err != nil {
		return nil, fmt.Errorf("%w: CryptUnprotectData: %w", ErrUnwrapFailed, err)
	}
	return takeBlob(&out), nil
}

// Protect calls CryptProtectData with entropy as optional entropy.
func (d *DPAPI) Protect(_ context.Context, plaintext, entropy []byte) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, fmt.Errorf("%w: empty plaintext", ErrProtectFailed)
	}

	var out windows.DataBlob
	err := windows.CryptProtectData(newBlob(plaintext), nil, newBlob(entropy), 0, nil, d.flags, &out)
	if err != nil {
		return nil, fmt.Errorf("%w: CryptProtectData: %w", ErrProtectFailed, err)
	}
	return takeBlob(&out), nil
}
