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

// Package keystore provides the byte stores that hold raw key records,
// addressed by a logical name such as "Client".
//
// The recovery pipeline only needs Lookup. Stores that can also hold new
// records implement Writer.
package keystore

import (
	"context"
	"errors"
)

// DefaultName is the logical name of the user key record.
const DefaultName = "Client"

var (
	// ErrKeyNotFound is returned when no record exists under a name.
	ErrKeyNotFound = errors.New("keystore: key not found")

	// ErrAccessDenied is returned when the caller lacks rights to read or
	// write a record.
	ErrAccessDenied = errors.New("keystore: access denied")

	// ErrInvalidName is returned for names a store cannot address.
	ErrInvalidName = errors.New("keystore: invalid name")

	// ErrClosed is returned when using a closed store.
	ErrClosed = errors.New("keystore: closed")

	// ErrUnsupportedPlatform is returned by stores that only exist on
	// another operating system.
	ErrUnsupportedPlatform = errors.New("keystore: unsupported platform")
)

// Lookup returns the raw record stored under a logical name.
type Lookup interface {
	// Get returns ErrKeyNotFound if name is absent and ErrAccessDenied if
	// the caller may not read it.
	Get(ctx context.Context, name string) ([]byte, error)
}

// Writer stores raw records.
type Writer interface {
	Put(ctx context.Context, name string, value []byte) error
}

// TerminatorQuirk is implemented by stores whose read API appends a single
// NUL byte that is not part of the stored record. The recovery pipeline
// strips it before parsing.
type TerminatorQuirk interface {
	AppendsTerminator() bool
}
