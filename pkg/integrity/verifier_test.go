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

package integrity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/jeremyhahn/go-keyrecover/pkg/kdf"
	"github.com/jeremyhahn/go-keyrecover/pkg/record"
	"github.com/jeremyhahn/go-keyrecover/pkg/types"
	"github.com/jeremyhahn/go-keyrecover/pkg/versions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var deadbeef = []byte{0xde, 0xad, 0xbe, 0xef}

func defaultTable(t *testing.T) *versions.Table {
	t.Helper()
	table, err := versions.DefaultTable("")
	require.NoError(t, err)
	return table
}

func TestVerify_KnownDigest(t *testing.T) {
	// [0x00][0x04000000][0xDEADBEEF][HMAC-SHA256 under the version 0 key]
	raw, err := hex.DecodeString("0004000000deadbeef" +
		"8fd53df7de37e5bb8a19d9fe41dcb660676d4e4c1f1a32efb805027101b2866c")
	require.NoError(t, err)

	rec, err := record.Parse(raw)
	require.NoError(t, err)

	got, err := Verify(rec, defaultTable(t))
	require.NoError(t, err)
	assert.Same(t, rec, got)
}

func TestVerify_KnownDigestMD5(t *testing.T) {
	table, err := versions.DefaultTable(types.HashMD5)
	require.NoError(t, err)

	raw, err := hex.DecodeString("0004000000deadbeef" + "92db7e108d7342285a59a9312a8ba062")
	require.NoError(t, err)

	rec, err := record.Parse(raw)
	require.NoError(t, err)

	_, err = Verify(rec, table)
	assert.NoError(t, err)
}

func TestSign_MatchesHMAC(t *testing.T) {
	rec, err := Sign(defaultTable(t), 0, deadbeef)
	require.NoError(t, err)

	mac := hmac.New(sha256.New, kdf.DefaultVersion0Params().AuthKey())
	mac.Write([]byte{0x00, 0x04, 0x00, 0x00, 0x00, 0xde, 0xad, 0xbe, 0xef})
	assert.Equal(t, mac.Sum(nil), rec.Digest)
}

func TestVerify_BitFlips(t *testing.T) {
	table := defaultTable(t)
	signed, err := Sign(table, 0, deadbeef)
	require.NoError(t, err)
	raw := signed.Encode()

	// Every single-bit flip outside the header must be rejected. Flips in
	// the header either change the framing or the version.
	for i := record.LayoutPacked.HeaderSize(); i < len(raw); i++ {
		for bit := 0; bit < 8; bit++ {
			tampered := append([]byte(nil), raw...)
			tampered[i] ^= 1 << bit

			rec, err := record.Parse(tampered)
			require.NoError(t, err)

			_, err = Verify(rec, table)
			assert.ErrorIs(t, err, ErrDigestMismatch, "byte %d bit %d", i, bit)
		}
	}
}

func TestVerify_UnknownVersion(t *testing.T) {
	rec, err := record.New(0xff, deadbeef, make([]byte, 32))
	require.NoError(t, err)

	_, err = Verify(rec, defaultTable(t))
	assert.ErrorIs(t, err, versions.ErrUnknownVersion)
}

func TestVerify_DigestSizeMismatch(t *testing.T) {
	table := defaultTable(t)
	tests := []struct {
		name string
		size int
	}{
		{"empty", 0},
		{"md5 sized", 16},
		{"one short", 31},
		{"one long", 33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := record.New(0, deadbeef, make([]byte, tt.size))
			require.NoError(t, err)

			_, err = Verify(rec, table)
			assert.ErrorIs(t, err, ErrDigestSizeMismatch)
		})
	}
}

func TestVerify_WrongKey(t *testing.T) {
	other, err := versions.NewTable(versions.Entry{
		Version: 0,
		AuthKey: []byte("not the version 0 key"),
		Digest:  types.HashSHA256,
	})
	require.NoError(t, err)

	rec, err := Sign(other, 0, deadbeef)
	require.NoError(t, err)

	_, err = Verify(rec, defaultTable(t))
	assert.ErrorIs(t, err, ErrDigestMismatch)
}

func TestVerify_Aligned(t *testing.T) {
	table := defaultTable(t)
	rec, err := SignWithLayout(table, 0, deadbeef, record.LayoutAligned)
	require.NoError(t, err)

	parsed, err := record.ParseWithLayout(rec.Encode(), record.LayoutAligned)
	require.NoError(t, err)

	_, err = NewVerifier(table).Verify(parsed)
	assert.NoError(t, err)

	// The same bytes read as packed no longer frame correctly.
	_, err = record.Parse(rec.Encode())
	assert.ErrorIs(t, err, record.ErrMalformedRecord)
}

func TestVerify_NilRecord(t *testing.T) {
	_, err := Verify(nil, defaultTable(t))
	assert.ErrorIs(t, err, ErrNilRecord)
}

func TestSign_UnknownVersion(t *testing.T) {
	_, err := Sign(defaultTable(t), 9, deadbeef)
	assert.ErrorIs(t, err, versions.ErrUnknownVersion)
}
