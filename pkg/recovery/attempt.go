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

	"github.com/google/uuid"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

// attemptIDKey is the context key for caller supplied attempt IDs
const attemptIDKey contextKey = "attempt-id"

// WithAttemptID returns a context carrying id. A Pipeline uses it instead
// of generating a new attempt ID, so callers can correlate a recovery with
// their own logs.
func WithAttemptID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, attemptIDKey, id)
}

// AttemptIDFromContext returns the attempt ID carried by ctx, or an empty
// string.
func AttemptIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(attemptIDKey).(string); ok {
		return id
	}
	return ""
}

// attemptID returns the attempt ID from ctx or a new UUID v4.
func attemptID(ctx context.Context) string {
	if id := AttemptIDFromContext(ctx); id != "" {
		return id
	}
	return uuid.New().String()
}
