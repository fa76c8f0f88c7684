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

package record

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildRaw(version uint8, payload, digest []byte) []byte {
	raw := []byte{version}
	raw = binary.LittleEndian.AppendUint32(raw, uint32(len(payload)))
	raw = append(raw, payload...)
	return append(raw, digest...)
}

func TestParse_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		version uint8
		payload []byte
		digest  []byte
	}{
		{"deadbeef payload", 0x00, []byte{0xde, 0xad, 0xbe, 0xef}, bytes.Repeat([]byte{0xaa}, 32)},
		{"empty payload", 0x01, []byte{}, bytes.Repeat([]byte{0x01}, 16)},
		{"empty digest", 0x02, []byte("payload"), []byte{}},
		{"empty payload and digest", 0x03, []byte{}, []byte{}},
		{"high version", 0xff, bytes.Repeat([]byte{0x42}, 300), bytes.Repeat([]byte{0x24}, 64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := buildRaw(tt.version, tt.payload, tt.digest)

			rec, err := Parse(raw)
			require.NoError(t, err)

			assert.Equal(t, tt.version, rec.Version)
			assert.Equal(t, uint32(len(tt.payload)), rec.PayloadLength)
			assert.True(t, bytes.Equal(tt.payload, rec.Payload))
			assert.True(t, bytes.Equal(tt.digest, rec.Digest))
			assert.Equal(t, LayoutPacked, rec.Layout)
			assert.Equal(t, len(raw), rec.Size())

			assert.Equal(t, raw, rec.Encode())
			assert.Equal(t, raw[:len(raw)-len(tt.digest)], rec.SignedBytes())
		})
	}
}

func TestParse_DoesNotAliasInput(t *testing.T) {
	raw := buildRaw(0, []byte{1, 2, 3}, []byte{4, 5})
	rec, err := Parse(raw)
	require.NoError(t, err)

	for i := range raw {
		raw[i] = 0xff
	}
	assert.Equal(t, []byte{1, 2, 3}, rec.Payload)
	assert.Equal(t, []byte{4, 5}, rec.Digest)
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{"nil", nil},
		{"empty", []byte{}},
		{"version only", []byte{0x00}},
		{"truncated length", []byte{0x00, 0x04, 0x00, 0x00}},
		{"payload shorter than declared", []byte{0x00, 0x04, 0x00, 0x00, 0x00, 0xde, 0xad, 0xbe}},
		{"huge declared length", []byte{0x00, 0xff, 0xff, 0xff, 0xff, 0x01, 0x02}},
		{"length one past end", buildRaw(0, []byte{1, 2}, nil)[:6]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec *Record
			var err error
			assert.NotPanics(t, func() {
				rec, err = Parse(tt.raw)
			})
			assert.Nil(t, rec)
			assert.ErrorIs(t, err, ErrMalformedRecord)
		})
	}
}

func TestParse_EveryTruncation(t *testing.T) {
	raw := buildRaw(0, []byte{0xde, 0xad, 0xbe, 0xef}, nil)
	for n := 0; n < len(raw); n++ {
		_, err := Parse(raw[:n])
		assert.ErrorIs(t, err, ErrMalformedRecord, "length %d", n)
	}
}

func TestParseWithLayout_Aligned(t *testing.T) {
	payload := []byte{0xde, 0xad, 0xbe, 0xef}
	digest := bytes.Repeat([]byte{0x11}, 16)

	raw := []byte{0x00, 0x00, 0x00, 0x00}
	raw = binary.LittleEndian.AppendUint32(raw, uint32(len(payload)))
	raw = append(raw, payload...)
	raw = append(raw, digest...)

	rec, err := ParseWithLayout(raw, LayoutAligned)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), rec.Version)
	assert.Equal(t, payload, rec.Payload)
	assert.Equal(t, digest, rec.Digest)
	assert.Equal(t, raw, rec.Encode())

	// Garbage in the padding is preserved so the digest still covers it.
	raw[1], raw[2], raw[3] = 0xcc, 0xcc, 0xcc
	rec, err = ParseWithLayout(raw, LayoutAligned)
	require.NoError(t, err)
	assert.Equal(t, raw, rec.Encode())

	_, err = ParseWithLayout(raw[:7], LayoutAligned)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestParseWithLayout_Invalid(t *testing.T) {
	_, err := ParseWithLayout(buildRaw(0, nil, nil), Layout(42))
	assert.ErrorIs(t, err, ErrInvalidLayout)
}

func TestNew(t *testing.T) {
	rec, err := New(0, []byte{0xde, 0xad, 0xbe, 0xef}, []byte{0x01})
	require.NoError(t, err)
	assert.Equal(t, uint32(4), rec.PayloadLength)
	assert.Equal(t, []byte{0x00, 0x04, 0x00, 0x00, 0x00, 0xde, 0xad, 0xbe, 0xef, 0x01}, rec.Encode())

	aligned, err := NewWithLayout(7, []byte{0x01}, nil, LayoutAligned)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x07, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01}, aligned.Encode())

	_, err = NewWithLayout(0, nil, nil, Layout(-1))
	assert.ErrorIs(t, err, ErrInvalidLayout)
}

func TestParseLayout(t *testing.T) {
	tests := []struct {
		input   string
		want    Layout
		wantErr bool
	}{
		{"", LayoutPacked, false},
		{"packed", LayoutPacked, false},
		{" Aligned ", LayoutAligned, false},
		{"native", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLayout(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidLayout)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParseLayout(t, got.String()))
		})
	}
}

func mustParseLayout(t *testing.T, s string) Layout {
	t.Helper()
	l, err := ParseLayout(s)
	require.NoError(t, err)
	return l
}

func TestLayout_HeaderSize(t *testing.T) {
	assert.Equal(t, 5, LayoutPacked.HeaderSize())
	assert.Equal(t, 8, LayoutAligned.HeaderSize())
	assert.Equal(t, 0, Layout(9).HeaderSize())
	assert.Equal(t, "layout(9)", Layout(9).String())
}
