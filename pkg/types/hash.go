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

// Package types holds identifiers shared by the record, integrity and
// derivation packages.
package types

import (
	"crypto/md5"  // #nosec G501 - required to read records written with HMAC-MD5
	"crypto/sha1" // #nosec G505 - PBKDF2 PRF of the version 0 format
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"strings"
)

// HashName represents hash algorithm identifiers.
type HashName string

const (
	// HashMD5 is MD5 (legacy, insecure). Only used as an HMAC digest for
	// records produced by older clients.
	HashMD5 HashName = "MD5"

	// HashSHA1 is SHA-1.
	HashSHA1 HashName = "SHA-1"

	// HashSHA256 is SHA-256.
	HashSHA256 HashName = "SHA-256"

	// HashSHA384 is SHA-384.
	HashSHA384 HashName = "SHA-384"

	// HashSHA512 is SHA-512.
	HashSHA512 HashName = "SHA-512"
)

// String returns the string representation.
func (h HashName) String() string {
	return string(h)
}

// Lower returns the lowercase form of the hash name.
func (h HashName) Lower() string {
	return strings.ToLower(string(h))
}

// Equals performs case-insensitive comparison.
func (h HashName) Equals(s string) bool {
	return strings.EqualFold(string(h), s)
}

// New returns the constructor for the hash, or nil if the name is unknown.
func (h HashName) New() func() hash.Hash {
	switch h {
	case HashMD5:
		return md5.New
	case HashSHA1:
		return sha1.New
	case HashSHA256:
		return sha256.New
	case HashSHA384:
		return sha512.New384
	case HashSHA512:
		return sha512.New
	default:
		return nil
	}
}

// Size returns the digest size in bytes, or 0 if the name is unknown.
func (h HashName) Size() int {
	fn := h.New()
	if fn == nil {
		return 0
	}
	return fn().Size()
}

// ParseHashName converts a string to HashName. Both "sha256" and "SHA-256"
// spellings are accepted.
func ParseHashName(s string) (HashName, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", "-")

	switch s {
	case "MD5":
		return HashMD5, nil
	case "SHA-1", "SHA1":
		return HashSHA1, nil
	case "SHA-256", "SHA256":
		return HashSHA256, nil
	case "SHA-384", "SHA384":
		return HashSHA384, nil
	case "SHA-512", "SHA512":
		return HashSHA512, nil
	default:
		return "", fmt.Errorf("unsupported hash algorithm: %q", s)
	}
}
