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
	"errors"
	"fmt"

	"github.com/jeremyhahn/go-keyrecover/pkg/integrity"
	"github.com/jeremyhahn/go-keyrecover/pkg/kdf"
	"github.com/jeremyhahn/go-keyrecover/pkg/keystore"
	"github.com/jeremyhahn/go-keyrecover/pkg/record"
	"github.com/jeremyhahn/go-keyrecover/pkg/unwrap"
	"github.com/jeremyhahn/go-keyrecover/pkg/versions"
)

// ErrInvalidConfig is returned by New for an incomplete Config.
var ErrInvalidConfig = errors.New("recovery: invalid config")

// Kind names a class of recovery failure. It is safe to show to users.
type Kind string

const (
	KindKeyNotFound        Kind = "KeyNotFound"
	KindAccessDenied       Kind = "AccessDenied"
	KindMalformedRecord    Kind = "MalformedRecord"
	KindUnknownVersion     Kind = "UnknownVersion"
	KindUnsupportedVersion Kind = "UnsupportedVersion"
	KindDigestSizeMismatch Kind = "DigestSizeMismatch"
	KindDigestMismatch     Kind = "DigestMismatch"
	KindUnwrapFailed       Kind = "UnwrapFailed"
	KindDerivationFailed   Kind = "DerivationFailed"
	KindCanceled           Kind = "Canceled"
	KindInvalidConfig      Kind = "InvalidConfig"
	KindUnknown            Kind = "Unknown"
)

// kinds maps sentinels to kinds. Order matters: the first match wins, so
// more specific sentinels come first.
var kinds = []struct {
	err  error
	kind Kind
}{
	{keystore.ErrKeyNotFound, KindKeyNotFound},
	{keystore.ErrAccessDenied, KindAccessDenied},
	{record.ErrMalformedRecord, KindMalformedRecord},
	{versions.ErrUnknownVersion, KindUnknownVersion},
	{versions.ErrUnsupportedVersion, KindUnsupportedVersion},
	{integrity.ErrDigestSizeMismatch, KindDigestSizeMismatch},
	{integrity.ErrDigestMismatch, KindDigestMismatch},
	{unwrap.ErrUnwrapFailed, KindUnwrapFailed},
	{unwrap.ErrUnsupportedPlatform, KindUnwrapFailed},
	{kdf.ErrInvalidParams, KindDerivationFailed},
	{context.Canceled, KindCanceled},
	{context.DeadlineExceeded, KindCanceled},
	{ErrInvalidConfig, KindInvalidConfig},
}

// Error is returned for every failed recovery. It records the pipeline
// stage that failed and unwraps to the underlying sentinel, so callers can
// use errors.Is(err, integrity.ErrDigestMismatch) and similar.
type Error struct {
	Stage string
	Kind  Kind
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("recovery: %s failed: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err. Errors that did not come from a Pipeline
// are classified by the sentinel they wrap. A nil error has no kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var recErr *Error
	if errors.As(err, &recErr) {
		return recErr.Kind
	}
	return classify(err)
}

func classify(err error) Kind {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindUnknown
}

func newError(stage string, err error) *Error {
	return &Error{Stage: stage, Kind: classify(err), Err: err}
}
