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

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHashName(t *testing.T) {
	tests := []struct {
		input string
		want  HashName
		size  int
	}{
		{"md5", HashMD5, 16},
		{"SHA1", HashSHA1, 20},
		{"sha-1", HashSHA1, 20},
		{"sha256", HashSHA256, 32},
		{" SHA_256 ", HashSHA256, 32},
		{"sha384", HashSHA384, 48},
		{"SHA-512", HashSHA512, 64},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseHashName(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.size, got.Size())
			assert.NotNil(t, got.New())
		})
	}
}

func TestParseHashName_Unknown(t *testing.T) {
	_, err := ParseHashName("whirlpool")
	assert.Error(t, err)

	assert.Nil(t, HashName("whirlpool").New())
	assert.Equal(t, 0, HashName("whirlpool").Size())
}

func TestHashName_Helpers(t *testing.T) {
	assert.Equal(t, "SHA-256", HashSHA256.String())
	assert.Equal(t, "sha-256", HashSHA256.Lower())
	assert.True(t, HashSHA256.Equals("sha-256"))
	assert.False(t, HashSHA256.Equals("sha256"))
}
