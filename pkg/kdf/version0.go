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

package kdf

import (
	"bytes"

	"github.com/jeremyhahn/go-keyrecover/pkg/types"
)

// Version0Params holds the fixed constants of the version 0 record format.
// Values are copied in and out so a params value cannot be altered after
// construction.
type Version0Params struct {
	authKey       []byte
	appKey        []byte
	appIV         []byte
	iterations    int
	userKeyLength int
	dbKeyLength   int
}

// DefaultVersion0Params returns the constants used by version 0 clients.
func DefaultVersion0Params() *Version0Params {
	return &Version0Params{
		authKey: []byte{
			0xd1, 0x14, 0xa5, 0x52, 0x12, 0x65, 0x5f, 0x74,
			0xbd, 0x77, 0x2e, 0x37, 0xe6, 0x4a, 0xee, 0x9b,
		},
		appKey: []byte{
			0x0d, 0x63, 0x8c, 0x09, 0x2e, 0x8b, 0x82, 0xfc,
			0x45, 0x28, 0x83, 0xf9, 0x5f, 0x35, 0x5b, 0x8e,
		},
		appIV: []byte{
			0xd8, 0x9b, 0x43, 0x1f, 0xb6, 0x1d, 0xde, 0x1a,
			0xfd, 0xa4, 0xb7, 0xf9, 0xf4, 0xb8, 0x0d, 0x05,
		},
		iterations:    1066,
		userKeyLength: 16,
		dbKeyLength:   16,
	}
}

// AuthKey returns the HMAC key that authenticates version 0 records. It is
// also the auxiliary entropy handed to the unwrap primitive.
func (p *Version0Params) AuthKey() []byte { return bytes.Clone(p.authKey) }

// AppKey returns the application key used as the PBKDF2 salt.
func (p *Version0Params) AppKey() []byte { return bytes.Clone(p.appKey) }

// AppIV returns the application IV. The derivation does not use it; it is
// reserved for the cipher step of the database format.
func (p *Version0Params) AppIV() []byte { return bytes.Clone(p.appIV) }

// Iterations returns the PBKDF2 iteration count.
func (p *Version0Params) Iterations() int { return p.iterations }

// UserKeyLength returns the expected length of an unwrapped user key.
func (p *Version0Params) UserKeyLength() int { return p.userKeyLength }

// DBKeyLength returns the length of the derived database key.
func (p *Version0Params) DBKeyLength() int { return p.dbKeyLength }

// PBKDF2Params returns the derivation parameters: PBKDF2-HMAC-SHA1 salted
// with the application key.
func (p *Version0Params) PBKDF2Params() PBKDF2Params {
	return PBKDF2Params{
		Salt:       p.AppKey(),
		Iterations: p.iterations,
		KeyLength:  p.dbKeyLength,
		PRF:        types.HashSHA1,
	}
}

// NewVersion0 returns the version 0 deriver for params. A nil params uses
// DefaultVersion0Params.
func NewVersion0(params *Version0Params) (Deriver, error) {
	if params == nil {
		params = DefaultVersion0Params()
	}
	return NewPBKDF2(params.PBKDF2Params())
}
