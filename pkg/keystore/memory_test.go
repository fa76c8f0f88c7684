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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_PutGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Get(ctx, DefaultName)
	assert.ErrorIs(t, err, ErrKeyNotFound)

	value := []byte{0x00, 0x01, 0x02}
	require.NoError(t, m.Put(ctx, DefaultName, value))

	got, err := m.Get(ctx, DefaultName)
	require.NoError(t, err)
	assert.Equal(t, value, got)

	// Neither the stored value nor the returned copy alias the caller's slices.
	value[0] = 0xff
	got[1] = 0xff
	again, err := m.Get(ctx, DefaultName)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x01, 0x02}, again)

	assert.False(t, m.AppendsTerminator())
}

func TestMemory_Terminator(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryWithTerminator()
	require.NoError(t, m.Put(ctx, "Client", []byte{0xaa}))

	got, err := m.Get(ctx, "Client")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xaa, 0x00}, got)
	assert.True(t, m.AppendsTerminator())
}

func TestMemory_DeleteList(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Put(ctx, "b", []byte("2")))
	require.NoError(t, m.Put(ctx, "a", []byte("1")))

	names, err := m.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	require.NoError(t, m.Delete(ctx, "a"))
	assert.ErrorIs(t, m.Delete(ctx, "a"), ErrKeyNotFound)

	names, err = m.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, names)
}

func TestMemory_InvalidName(t *testing.T) {
	assert.ErrorIs(t, NewMemory().Put(context.Background(), "", []byte("x")), ErrInvalidName)
}

func TestMemory_Closed(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Close())

	_, err := m.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, m.Put(ctx, "a", nil), ErrClosed)
	assert.ErrorIs(t, m.Delete(ctx, "a"), ErrClosed)
	_, err = m.List(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}
