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

package recovery

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithAttemptID(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		id   string
		want string
	}{
		{"background context", context.Background(), "attempt-1", "attempt-1"},
		{"nil context", nil, "attempt-2", "attempt-2"},
		{"empty id", context.Background(), "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := WithAttemptID(tt.ctx, tt.id)
			require.NotNil(t, ctx)
			assert.Equal(t, tt.want, AttemptIDFromContext(ctx))
		})
	}
}

func TestAttemptIDFromContext_Missing(t *testing.T) {
	assert.Empty(t, AttemptIDFromContext(context.Background()))
	//nolint:staticcheck // nil context is handled explicitly
	assert.Empty(t, AttemptIDFromContext(nil))
}

func TestAttemptID_Generates(t *testing.T) {
	id := attemptID(context.Background())
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.NotEqual(t, id, attemptID(context.Background()))

	assert.Equal(t, "given", attemptID(WithAttemptID(context.Background(), "given")))
}

func TestRecover_UsesContextAttemptID(t *testing.T) {
	p := newPipeline(t, staticKeystore(mustHex(t, deadbeefRecord)), &mockUnwrapper{})

	ctx := WithAttemptID(context.Background(), "job-42")
	result, err := p.Recover(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "job-42", result.AttemptID)
}
