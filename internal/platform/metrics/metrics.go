// Copyright (c) 2026 Gritsos. All rights reserved.

// Package metrics provides Prometheus metrics for authentication and token issuance.
//
// Labels are drawn from small fixed sets. Usernames and tokens never appear
// in label values.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for [AuthAttemptsTotal].
const (
	OutcomeSuccess    = "success"
	OutcomeBadRequest = "bad_request"
	OutcomeDenied     = "unauthorized"
	OutcomeForbidden  = "forbidden"
	OutcomeThrottled  = "throttled"
	OutcomeError      = "error"
)

// Reason labels for [TokenIssuedTotal].
const (
	ReasonCreate   = "create"
	ReasonRotate   = "rotate"
	ReasonBackfill = "backfill"
)

var (
	// AuthAttemptsTotal counts gate decisions by method and outcome.
	AuthAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gritsos_auth_attempts_total",
		Help: "Total number of authentication attempts, by method and outcome.",
	}, []string{"method", "outcome"})

	// TokenIssuedTotal counts bearer tokens written to storage.
	TokenIssuedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gritsos_token_issued_total",
		Help: "Total number of bearer tokens issued, by reason.",
	}, []string{"reason"})

	// PrincipalsCreatedTotal counts successfully created principals.
	PrincipalsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gritsos_principals_created_total",
		Help: "Total number of principals created.",
	})
)

// RecordAuthAttempt increments the attempt counter.
func RecordAuthAttempt(method, outcome string) {
	AuthAttemptsTotal.WithLabelValues(method, outcome).Inc()
}

// RecordTokenIssued increments the issuance counter.
func RecordTokenIssued(reason string) {
	TokenIssuedTotal.WithLabelValues(reason).Inc()
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
