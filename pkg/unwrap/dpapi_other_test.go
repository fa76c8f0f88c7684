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

//go:build !windows

package unwrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDPAPI_Unsupported(t *testing.T) {
	d, err := NewDPAPI()
	assert.ErrorIs(t, err, ErrUnsupportedPlatform)
	assert.Nil(t, d)

	_, err = (&DPAPI{}).Unwrap(context.Background(), []byte("x"), nil)
	assert.ErrorIs(t, err, ErrUnsupportedPlatform)

	_, err = (&DPAPI{}).Protect(context.Background(), []byte("x"), nil)
	assert.ErrorIs(t, err, ErrUnsupportedPlatform)
}
