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

// Package kdf implements the per-version key derivation strategies that
// turn an unwrapped user key into a database key.
package kdf

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/jeremyhahn/go-keyrecover/pkg/types"
	"golang.org/x/crypto/pbkdf2"
)

var (
	// ErrInvalidParams is returned for unusable derivation parameters.
	ErrInvalidParams = errors.New("kdf: invalid parameters")
)

// Deriver derives a fixed-length key from an unwrapped secret.
// Implementations must be deterministic and safe for concurrent use.
type Deriver interface {
	// Derive returns KeyLength bytes derived from unwrapped.
	Derive(unwrapped []byte) ([]byte, error)

	// KeyLength returns the length of derived keys in bytes.
	KeyLength() int
}

// PBKDF2Params configures a PBKDF2 deriver.
type PBKDF2Params struct {
	Salt       []byte
	Iterations int
	KeyLength  int
	PRF        types.HashName
}

// Validate checks that the parameters can drive PBKDF2.
func (p PBKDF2Params) Validate() error {
	if p.Iterations < 1 {
		return fmt.Errorf("%w: iterations must be positive, got %d", ErrInvalidParams, p.Iterations)
	}
	if p.KeyLength < 1 {
		return fmt.Errorf("%w: key length must be positive, got %d", ErrInvalidParams, p.KeyLength)
	}
	if p.PRF.New() == nil {
		return fmt.Errorf("%w: unsupported PRF %q", ErrInvalidParams, p.PRF)
	}
	return nil
}

// PBKDF2 derives keys with PBKDF2 using an HMAC pseudorandom function.
type PBKDF2 struct {
	params PBKDF2Params
}

// NewPBKDF2 returns a PBKDF2 deriver. The salt is copied.
func NewPBKDF2(params PBKDF2Params) (*PBKDF2, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	params.Salt = bytes.Clone(params.Salt)
	return &PBKDF2{params: params}, nil
}

// Derive runs PBKDF2 with unwrapped as the passphrase. An empty
// passphrase is valid input.
func (k *PBKDF2) Derive(unwrapped []byte) ([]byte, error) {
	return pbkdf2.Key(unwrapped, k.params.Salt, k.params.Iterations, k.params.KeyLength, k.params.PRF.New()), nil
}

// KeyLength returns the configured output length.
func (k *PBKDF2) KeyLength() int {
	return k.params.KeyLength
}
