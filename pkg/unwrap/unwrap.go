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

// Package unwrap defines the protection primitive that guards the user key
// inside a record, and the implementations the recovery pipeline can use.
//
// The primitive is environment bound: the same protected blob and entropy
// unwrap to the same plaintext only under the identity (user, machine,
// secret or cloud key) that protected it.
package unwrap

import (
	"bytes"
	"context"
	"errors"
)

var (
	// ErrUnwrapFailed is returned when the primitive refuses to reverse a
	// protected blob, for example under the wrong user or entropy.
	ErrUnwrapFailed = errors.New("unwrap: unwrap failed")

	// ErrProtectFailed is returned when a plaintext cannot be protected.
	ErrProtectFailed = errors.New("unwrap: protect failed")

	// ErrUnsupportedPlatform is returned by primitives that only exist on
	// another operating system.
	ErrUnsupportedPlatform = errors.New("unwrap: unsupported platform")
)

// Unwrapper reverses the protection applied to a record payload. entropy
// is the auxiliary secret bound into the protection; it may be nil.
type Unwrapper interface {
	Unwrap(ctx context.Context, ciphertext, entropy []byte) ([]byte, error)
}

// Protector applies the protection that a matching Unwrapper reverses.
type Protector interface {
	Protect(ctx context.Context, plaintext, entropy []byte) ([]byte, error)
}

// Primitive is a reversible protection transform.
type Primitive interface {
	Unwrapper
	Protector
}

// UnwrapperFunc adapts a function to the Unwrapper interface.
type UnwrapperFunc func(ctx context.Context, ciphertext, entropy []byte) ([]byte, error)

// Unwrap calls f.
func (f UnwrapperFunc) Unwrap(ctx context.Context, ciphertext, entropy []byte) ([]byte, error) {
	return f(ctx, ciphertext, entropy)
}

// Identity is the primitive for payloads stored without protection. The
// entropy is ignored.
type Identity struct{}

// Unwrap returns a copy of ciphertext.
func (Identity) Unwrap(_ context.Context, ciphertext, _ []byte) ([]byte, error) {
	return bytes.Clone(ciphertext), nil
}

// Protect returns a copy of plaintext.
func (Identity) Protect(_ context.Context, plaintext, _ []byte) ([]byte, error) {
	return bytes.Clone(plaintext), nil
}
