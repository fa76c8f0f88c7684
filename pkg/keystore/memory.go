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
	"context"
	"sort"
	"sync"
)

// Memory is an in-memory store. It is useful for tests and for records
// that are injected at runtime. Safe for concurrent use.
type Memory struct {
	mu         sync.RWMutex
	data       map[string][]byte
	terminator bool
	closed     bool
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// NewMemoryWithTerminator returns an in-memory store whose Get appends a
// NUL byte, mimicking registry read APIs.
func NewMemoryWithTerminator() *Memory {
	m := NewMemory()
	m.terminator = true
	return m
}

// Get returns a copy of the record stored under name.
func (m *Memory) Get(_ context.Context, name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}

	value, exists := m.data[name]
	if !exists {
		return nil, ErrKeyNotFound
	}

	result := make([]byte, len(value), len(value)+1)
	copy(result, value)
	if m.terminator {
		result = append(result, 0x00)
	}
	return result, nil
}

// Put stores a copy of value under name.
func (m *Memory) Put(_ context.Context, name string, value []byte) error {
	if name == "" {
		return ErrInvalidName
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	data := make([]byte, len(value))
	copy(data, value)
	m.data[name] = data
	return nil
}

// Delete removes the record stored under name.
func (m *Memory) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if _, exists := m.data[name]; !exists {
		return ErrKeyNotFound
	}
	delete(m.data, name)
	return nil
}

// List returns the stored names in sorted order.
func (m *Memory) List(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}

	names := make([]string, 0, len(m.data))
	for name := range m.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// AppendsTerminator reports whether Get appends a NUL byte.
func (m *Memory) AppendsTerminator() bool {
	return m.terminator
}

// Close releases the stored records.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.data = nil
	return nil
}
