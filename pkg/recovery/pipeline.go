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

// Package recovery composes the keystore, record codec, integrity verifier,
// unwrap primitive and key deriver into the key recovery pipeline.
//
// A recovery runs in two stages. The raw record is read, parsed and
// authenticated; only then is its payload handed to the unwrap primitive
// and the result stretched into the database key. Every stage fails
// closed and nothing is retried.
package recovery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jeremyhahn/go-keyrecover/pkg/integrity"
	"github.com/jeremyhahn/go-keyrecover/pkg/keystore"
	"github.com/jeremyhahn/go-keyrecover/pkg/logging"
	"github.com/jeremyhahn/go-keyrecover/pkg/metrics"
	"github.com/jeremyhahn/go-keyrecover/pkg/record"
	"github.com/jeremyhahn/go-keyrecover/pkg/unwrap"
	"github.com/jeremyhahn/go-keyrecover/pkg/versions"
)

// DefaultKeystoreLabel is the metrics label used when Config.KeystoreLabel
// is empty.
const DefaultKeystoreLabel = "custom"

// Config holds the collaborators of a Pipeline.
type Config struct {
	// Keystore supplies raw records. Required.
	Keystore keystore.Lookup

	// Unwrapper reverses the platform protection of the record payload.
	// Required.
	Unwrapper unwrap.Unwrapper

	// Table resolves record versions. Defaults to
	// versions.DefaultTable(versions.DefaultDigest).
	Table *versions.Table

	// Layout is the record header layout. Defaults to record.LayoutPacked.
	Layout record.Layout

	// TrimTerminator strips one trailing NUL byte from every raw record,
	// for stores whose read API appends one but do not report it through
	// keystore.TerminatorQuirk.
	TrimTerminator bool

	// KeystoreLabel names the keystore in metrics.
	KeystoreLabel string

	// Logger defaults to a discarding logger.
	Logger *logging.Logger
}

// Result is the outcome of a successful recovery.
type Result struct {
	// AttemptID correlates the result with log lines of the attempt. It is
	// taken from the context when set with WithAttemptID.
	AttemptID string

	// Version is the version of the authenticated record.
	Version uint8

	// Key is the derived database key, or the user key for
	// RecoverUserKey.
	Key []byte
}

// Pipeline recovers keys from a keystore. It holds no mutable state after
// New and is safe for concurrent use when its collaborators are.
type Pipeline struct {
	keystore  keystore.Lookup
	unwrapper unwrap.Unwrapper
	verifier  *integrity.Verifier
	table     *versions.Table
	layout    record.Layout
	trim      bool
	label     string
	logger    *logging.Logger
}

// New validates config and returns a Pipeline.
func New(config *Config) (*Pipeline, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if config.Keystore == nil {
		return nil, fmt.Errorf("%w: keystore is required", ErrInvalidConfig)
	}
	if config.Unwrapper == nil {
		return nil, fmt.Errorf("%w: unwrapper is required", ErrInvalidConfig)
	}
	if config.Layout != record.LayoutPacked && config.Layout != record.LayoutAligned {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, record.ErrInvalidLayout)
	}

	table := config.Table
	if table == nil {
		var err error
		table, err = versions.DefaultTable(versions.DefaultDigest)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}

	logger := config.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	label := config.KeystoreLabel
	if label == "" {
		label = DefaultKeystoreLabel
	}

	trim := config.TrimTerminator
	if q, ok := config.Keystore.(keystore.TerminatorQuirk); ok && q.AppendsTerminator() {
		trim = true
	}

	return &Pipeline{
		keystore:  config.Keystore,
		unwrapper: config.Unwrapper,
		verifier:  integrity.NewVerifier(table),
		table:     table,
		layout:    config.Layout,
		trim:      trim,
		label:     label,
		logger:    logger,
	}, nil
}

// Recover reads the record stored under name, authenticates it, unwraps
// its payload and derives the database key. An empty name means
// keystore.DefaultName.
//
// Any failure is returned as *Error and no partial key is ever returned.
func (p *Pipeline) Recover(ctx context.Context, name string) (*Result, error) {
	return p.run(ctx, name, true)
}

// RecoverUserKey is Recover without the final derivation. The returned
// Result carries the unwrapped user key.
func (p *Pipeline) RecoverUserKey(ctx context.Context, name string) (*Result, error) {
	return p.run(ctx, name, false)
}

func (p *Pipeline) run(ctx context.Context, name string, derive bool) (result *Result, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if name == "" {
		name = keystore.DefaultName
	}

	id := attemptID(ctx)
	log := p.logger.With("attempt_id", id, "name", name)

	start := time.Now()
	defer func() {
		status := metrics.StatusSuccess
		if err != nil {
			status = metrics.StatusError
			var recErr *Error
			if errors.As(err, &recErr) {
				metrics.RecordError(recErr.Stage, string(recErr.Kind))
				log.Warn("key recovery failed", "stage", recErr.Stage, "kind", string(recErr.Kind))
			}
		}
		metrics.RecordRecovery(p.label, status, time.Since(start).Seconds())
	}()

	if err := ctx.Err(); err != nil {
		return nil, newError(metrics.StageLookup, err)
	}

	rec, err := p.authenticate(ctx, name, log)
	if err != nil {
		return nil, err
	}

	entry, err := p.table.Lookup(rec.Version)
	if err != nil {
		return nil, newError(metrics.StageVerify, err)
	}

	var secret []byte
	err = p.stage(metrics.StageUnwrap, log, func() error {
		var uerr error
		secret, uerr = p.unwrapper.Unwrap(ctx, rec.Payload, entry.AuthKey)
		if uerr != nil {
			if errors.Is(uerr, unwrap.ErrUnwrapFailed) {
				return uerr
			}
			return fmt.Errorf("%w: %w", unwrap.ErrUnwrapFailed, uerr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !derive {
		log.Debug("user key recovered", "version", rec.Version)
		return &Result{AttemptID: id, Version: rec.Version, Key: secret}, nil
	}
	defer clear(secret)

	var key []byte
	err = p.stage(metrics.StageDerive, log, func() error {
		deriver, derr := p.table.Deriver(rec.Version)
		if derr != nil {
			return derr
		}
		key, derr = deriver.Derive(secret)
		return derr
	})
	if err != nil {
		return nil, err
	}

	log.Debug("key recovered", "version", rec.Version)
	return &Result{AttemptID: id, Version: rec.Version, Key: key}, nil
}

// authenticate runs the first stage: lookup, parse and verify.
func (p *Pipeline) authenticate(ctx context.Context, name string, log *logging.Logger) (*record.Record, error) {
	var raw []byte
	err := p.stage(metrics.StageLookup, log, func() error {
		var gerr error
		raw, gerr = p.keystore.Get(ctx, name)
		return gerr
	})
	if err != nil {
		return nil, err
	}

	if p.trim {
		raw = TrimTerminator(raw)
	}

	var rec *record.Record
	err = p.stage(metrics.StageParse, log, func() error {
		var perr error
		rec, perr = record.ParseWithLayout(raw, p.layout)
		return perr
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(metrics.StageVerify, log, func() error {
		_, verr := p.verifier.Verify(rec)
		return verr
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordVerified(rec.Version)
	return rec, nil
}

// stage times fn and wraps its error in *Error.
func (p *Pipeline) stage(name string, log *logging.Logger, fn func() error) error {
	log.Debug("stage started", "stage", name)
	start := time.Now()
	err := fn()
	metrics.RecordStage(name, time.Since(start).Seconds())
	if err != nil {
		return newError(name, err)
	}
	return nil
}

// TrimTerminator removes exactly one trailing NUL byte from raw, if
// present. Some keystore read APIs append a terminator that is not part of
// the stored record; parsing it as digest would make every record fail
// verification.
func TrimTerminator(raw []byte) []byte {
	if n := len(raw); n > 0 && raw[n-1] == 0x00 {
		return raw[:n-1]
	}
	return raw
}
