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

package keystore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
)

// Pebble stores records in an embedded Pebble database, keyed by logical
// name. Writes are synced before Put returns.
type Pebble struct {
	mu     sync.RWMutex
	db     *pebble.DB
	closed bool
}

// NewPebble opens or creates the database at dir.
func NewPebble(dir string) (*Pebble, error) {
	if dir == "" {
		return nil, fmt.Errorf("pebble keystore: directory cannot be empty")
	}
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble keystore: failed to open %s: %w", dir, err)
	}
	return &Pebble{db: db}, nil
}

// Get returns a copy of the record stored under name.
func (p *Pebble) Get(_ context.Context, name string) ([]byte, error) {
	if name == "" {
		return nil, ErrInvalidName
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, ErrClosed
	}

	value, closer, err := p.db.Get([]byte(name))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, name)
		}
		return nil, fmt.Errorf("pebble keystore: %q: %w", name, err)
	}
	defer closer.Close()

	// value is only valid until closer is closed
	return bytes.Clone(value), nil
}

// Put stores value under name.
func (p *Pebble) Put(_ context.Context, name string, value []byte) error {
	if name == "" {
		return ErrInvalidName
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	if err := p.db.Set([]byte(name), value, pebble.Sync); err != nil {
		return fmt.Errorf("pebble keystore: %q: %w", name, err)
	}
	return nil
}

// Delete removes the record stored under name.
func (p *Pebble) Delete(ctx context.Context, name string) error {
	if _, err := p.Get(ctx, name); err != nil {
		return err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	return p.db.Delete([]byte(name), pebble.Sync)
}

// Close closes the database. Further calls fail with ErrClosed.
func (p *Pebble) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.db.Close()
}
