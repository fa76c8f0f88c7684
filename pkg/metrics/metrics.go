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

// Package metrics provides Prometheus instrumentation for key recovery.
// It counts recovery attempts and failures per pipeline stage and times each
// stage. Command line runs export the registry with WriteTextfile for the
// node_exporter textfile collector.
package metrics

import (
	"strconv"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the Prometheus namespace for all keyrecover metrics
	Namespace = "keyrecover"

	// Label names
	LabelStage     = "stage"
	LabelKeystore  = "keystore"
	LabelStatus    = "status"
	LabelErrorKind = "error_kind"
	LabelVersion   = "version"

	// Status values
	StatusSuccess = "success"
	StatusError   = "error"

	// Pipeline stages
	StageLookup = "lookup"
	StageParse  = "parse"
	StageVerify = "verify"
	StageUnwrap = "unwrap"
	StageDerive = "derive"
)

var (
	// RecoveriesTotal counts recovery attempts by keystore and outcome.
	RecoveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "recoveries_total",
			Help:      "Total number of key recovery attempts by keystore and status",
		},
		[]string{LabelKeystore, LabelStatus},
	)

	// RecoveryDuration tracks end-to-end recovery latency in seconds.
	// PBKDF2 and the external unwrap call dominate.
	RecoveryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "recovery_duration_seconds",
			Help:      "Duration of key recovery attempts in seconds",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{LabelKeystore},
	)

	// StageDuration tracks the latency of each pipeline stage in seconds.
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of key recovery pipeline stages in seconds",
			Buckets:   []float64{.00001, .0001, .001, .005, .01, .05, .1, .5, 1},
		},
		[]string{LabelStage},
	)

	// ErrorsTotal counts failures by stage and error kind, e.g.
	// stage="verify", error_kind="digest_mismatch".
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "errors_total",
			Help:      "Total number of key recovery errors by stage and error kind",
		},
		[]string{LabelStage, LabelErrorKind},
	)

	// RecordsVerifiedTotal counts authenticated records by version.
	RecordsVerifiedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "records_verified_total",
			Help:      "Total number of records that passed integrity verification by version",
		},
		[]string{LabelVersion},
	)

	// enabled tracks whether metrics collection is enabled
	enabled atomic.Bool
)

func init() {
	// Metrics are enabled by default
	enabled.Store(true)
}

// RecordRecovery records a finished recovery attempt.
//
// Example:
//
//	start := time.Now()
//	key, err := pipeline.Recover(ctx, "Client")
//	status := StatusSuccess
//	if err != nil {
//	    status = StatusError
//	}
//	RecordRecovery("registry", status, time.Since(start).Seconds())
func RecordRecovery(keystore, status string, duration float64) {
	if !enabled.Load() {
		return
	}
	RecoveriesTotal.WithLabelValues(keystore, status).Inc()
	RecoveryDuration.WithLabelValues(keystore).Observe(duration)
}

// RecordStage records the duration of one pipeline stage.
func RecordStage(stage string, duration float64) {
	if !enabled.Load() {
		return
	}
	StageDuration.WithLabelValues(stage).Observe(duration)
}

// RecordError records a failure in a pipeline stage.
func RecordError(stage, errorKind string) {
	if !enabled.Load() {
		return
	}
	ErrorsTotal.WithLabelValues(stage, errorKind).Inc()
}

// RecordVerified records a record that passed integrity verification.
func RecordVerified(version uint8) {
	if !enabled.Load() {
		return
	}
	RecordsVerifiedTotal.WithLabelValues(strconv.Itoa(int(version))).Inc()
}

// WriteTextfile writes every registered metric to path in the text
// exposition format. The file is replaced atomically.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}

// Enable enables metrics collection.
func Enable() {
	enabled.Store(true)
}

// Disable disables metrics collection.
// Useful for testing or when metrics are not desired.
func Disable() {
	enabled.Store(false)
}

// IsEnabled returns whether metrics collection is currently enabled.
func IsEnabled() bool {
	return enabled.Load()
}
