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

// Package versions maps record versions to their authentication key,
// digest algorithm and derivation strategy.
//
// A Table is built once at startup and never modified. Adding support for
// a new record version means adding an Entry, not changing the pipeline.
package versions

import (
	"bytes"
	"errors"
	"fmt"
	"slices"

	"github.com/jeremyhahn/go-keyrecover/pkg/kdf"
	"github.com/jeremyhahn/go-keyrecover/pkg/types"
)

var (
	// ErrUnknownVersion is returned when no authentication key is
	// registered for a record version.
	ErrUnknownVersion = errors.New("versions: unknown version")

	// ErrUnsupportedVersion is returned when no derivation strategy is
	// registered for a record version.
	ErrUnsupportedVersion = errors.New("versions: unsupported version")

	// ErrInvalidEntry is returned for an entry that cannot be registered.
	ErrInvalidEntry = errors.New("versions: invalid entry")
)

// Entry describes one record version.
type Entry struct {
	// Version is the record version byte.
	Version uint8

	// AuthKey is the HMAC key for the record digest. It is also passed
	// to the unwrap primitive as auxiliary entropy.
	AuthKey []byte

	// Digest is the hash underlying the record HMAC.
	Digest types.HashName

	// Deriver turns the unwrapped user key into the database key. A nil
	// Deriver allows records of this version to be verified and
	// unwrapped but not derived.
	Deriver kdf.Deriver
}

// Table is an immutable version lookup table. It is safe for concurrent
// use.
type Table struct {
	entries map[uint8]Entry
}

// NewTable builds a table from entries. Key material is copied.
func NewTable(entries ...Entry) (*Table, error) {
	t := &Table{entries: make(map[uint8]Entry, len(entries))}
	for _, e := range entries {
		if len(e.AuthKey) == 0 {
			return nil, fmt.Errorf("%w: version %d has no authentication key", ErrInvalidEntry, e.Version)
		}
		if e.Digest.New() == nil {
			return nil, fmt.Errorf("%w: version %d has unsupported digest %q", ErrInvalidEntry, e.Version, e.Digest)
		}
		if _, exists := t.entries[e.Version]; exists {
			return nil, fmt.Errorf("%w: version %d registered twice", ErrInvalidEntry, e.Version)
		}
		e.AuthKey = bytes.Clone(e.AuthKey)
		t.entries[e.Version] = e
	}
	return t, nil
}

// Lookup returns the entry for version. The returned AuthKey is a copy.
func (t *Table) Lookup(version uint8) (Entry, error) {
	e, ok := t.entries[version]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %d", ErrUnknownVersion, version)
	}
	e.AuthKey = bytes.Clone(e.AuthKey)
	return e, nil
}

// Deriver returns the derivation strategy for version. There is no
// fallback to another version.
func (t *Table) Deriver(version uint8) (kdf.Deriver, error) {
	e, ok := t.entries[version]
	if !ok || e.Deriver == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	return e.Deriver, nil
}

// Versions returns the registered versions in ascending order.
func (t *Table) Versions() []uint8 {
	out := make([]uint8, 0, len(t.entries))
	for v := range t.entries {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// MaxVersion returns the highest registered version. ok is false for an
// empty table.
func (t *Table) MaxVersion() (version uint8, ok bool) {
	vs := t.Versions()
	if len(vs) == 0 {
		return 0, false
	}
	return vs[len(vs)-1], true
}
