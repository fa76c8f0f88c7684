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

package versions

import (
	"testing"

	"github.com/jeremyhahn/go-keyrecover/pkg/kdf"
	"github.com/jeremyhahn/go-keyrecover/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable(t *testing.T) {
	table, err := DefaultTable("")
	require.NoError(t, err)

	assert.Equal(t, []uint8{0}, table.Versions())
	highest, ok := table.MaxVersion()
	assert.True(t, ok)
	assert.Equal(t, uint8(0), highest)

	e, err := table.Lookup(0)
	require.NoError(t, err)
	assert.Equal(t, types.HashSHA256, e.Digest)
	assert.Equal(t, kdf.DefaultVersion0Params().AuthKey(), e.AuthKey)

	d, err := table.Deriver(0)
	require.NoError(t, err)
	assert.Equal(t, 16, d.KeyLength())
}

func TestDefaultTable_Digest(t *testing.T) {
	table, err := DefaultTable(types.HashMD5)
	require.NoError(t, err)

	e, err := table.Lookup(0)
	require.NoError(t, err)
	assert.Equal(t, types.HashMD5, e.Digest)
}

func TestTable_UnknownVersion(t *testing.T) {
	table, err := DefaultTable("")
	require.NoError(t, err)

	_, err = table.Lookup(0xff)
	assert.ErrorIs(t, err, ErrUnknownVersion)

	_, err = table.Deriver(0xff)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestTable_EntryWithoutDeriver(t *testing.T) {
	table, err := NewTable(Entry{Version: 3, AuthKey: []byte("k"), Digest: types.HashSHA256})
	require.NoError(t, err)

	_, err = table.Lookup(3)
	require.NoError(t, err)

	_, err = table.Deriver(3)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestTable_Immutable(t *testing.T) {
	key := []byte{1, 2, 3}
	table, err := NewTable(Entry{Version: 1, AuthKey: key, Digest: types.HashSHA256})
	require.NoError(t, err)

	key[0] = 9
	e, err := table.Lookup(1)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, e.AuthKey)

	e.AuthKey[0] = 9
	again, err := table.Lookup(1)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, again.AuthKey)
}

func TestNewTable_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
	}{
		{"missing key", []Entry{{Version: 0, Digest: types.HashSHA256}}},
		{"bad digest", []Entry{{Version: 0, AuthKey: []byte("k"), Digest: "crc32"}}},
		{"duplicate", []Entry{
			{Version: 0, AuthKey: []byte("a"), Digest: types.HashSHA256},
			{Version: 0, AuthKey: []byte("b"), Digest: types.HashSHA256},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.entries...)
			assert.ErrorIs(t, err, ErrInvalidEntry)
		})
	}
}

func TestTable_Versions(t *testing.T) {
	table, err := NewTable(
		Entry{Version: 7, AuthKey: []byte("a"), Digest: types.HashSHA256},
		Entry{Version: 2, AuthKey: []byte("b"), Digest: types.HashSHA256},
	)
	require.NoError(t, err)
	assert.Equal(t, []uint8{2, 7}, table.Versions())

	empty, err := NewTable()
	require.NoError(t, err)
	_, ok := empty.MaxVersion()
	assert.False(t, ok)
}
