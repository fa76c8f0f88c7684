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

// Package integrity authenticates key records with the keyed digest of
// their version before any of their content is trusted.
package integrity

import (
	"crypto/hmac"
	"errors"
	"fmt"

	"github.com/jeremyhahn/go-keyrecover/pkg/record"
	"github.com/jeremyhahn/go-keyrecover/pkg/versions"
)

var (
	// ErrDigestSizeMismatch is returned when the stored digest length
	// differs from the output size of the configured digest algorithm.
	ErrDigestSizeMismatch = errors.New("integrity: digest size mismatch")

	// ErrDigestMismatch is returned when the stored digest does not
	// authenticate the record.
	ErrDigestMismatch = errors.New("integrity: digest mismatch")

	// ErrNilRecord is returned when Verify is called without a record.
	ErrNilRecord = errors.New("integrity: nil record")
)

// Verifier checks record digests against a version table.
type Verifier struct {
	table *versions.Table
}

// NewVerifier returns a Verifier bound to table.
func NewVerifier(table *versions.Table) *Verifier {
	return &Verifier{table: table}
}

// Verify authenticates rec and returns it unchanged on success.
//
// The version is resolved before any digest is computed, so records of an
// unknown version fail with versions.ErrUnknownVersion. The comparison is
// constant time.
func (v *Verifier) Verify(rec *record.Record) (*record.Record, error) {
	if rec == nil {
		return nil, ErrNilRecord
	}

	entry, err := v.table.Lookup(rec.Version)
	if err != nil {
		return nil, err
	}

	mac := hmac.New(entry.Digest.New(), entry.AuthKey)
	if mac.Size() != len(rec.Digest) {
		return nil, fmt.Errorf("%w: %s produces %d bytes, record carries %d",
			ErrDigestSizeMismatch, entry.Digest, mac.Size(), len(rec.Digest))
	}

	mac.Write(rec.SignedBytes())
	if !hmac.Equal(mac.Sum(nil), rec.Digest) {
		return nil, fmt.Errorf("%w: version %d", ErrDigestMismatch, rec.Version)
	}
	return rec, nil
}

// Verify authenticates rec against table.
func Verify(rec *record.Record, table *versions.Table) (*record.Record, error) {
	return NewVerifier(table).Verify(rec)
}

// Sign builds a packed record for version carrying payload and a valid
// digest.
func Sign(table *versions.Table, version uint8, payload []byte) (*record.Record, error) {
	return SignWithLayout(table, version, payload, record.LayoutPacked)
}

// SignWithLayout builds a record using the given header layout.
func SignWithLayout(table *versions.Table, version uint8, payload []byte, layout record.Layout) (*record.Record, error) {
	entry, err := table.Lookup(version)
	if err != nil {
		return nil, err
	}

	rec, err := record.NewWithLayout(version, payload, nil, layout)
	if err != nil {
		return nil, err
	}

	mac := hmac.New(entry.Digest.New(), entry.AuthKey)
	mac.Write(rec.SignedBytes())
	rec.Digest = mac.Sum(nil)
	return rec, nil
}
