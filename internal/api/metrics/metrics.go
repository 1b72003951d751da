// Package metrics defines and registers all custom Prometheus metrics for
// the B2B backend. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "b2b"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Labels:
//   - kind: "staff" or "customer"
//   - result: "success", "not_found", "invalid_credentials", "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by principal kind and result.",
	},
	[]string{"kind", "result"},
)

// LoginDuration observes the time spent authenticating a principal and
// issuing its session token, end to end.
// Label:
//   - kind: "staff" or "customer"
var LoginDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "login_duration_seconds",
		Help:      "Time spent verifying credentials and issuing a session token.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"kind"},
)

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "success", "rejected" (rule failure), "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// ── Catalog image metrics ─────────────────────────────────────────────────────

// ImageUploadsTotal counts product image uploads.
// Label:
//   - result: "success", "rejected", "error"
var ImageUploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "image_uploads_total",
		Help:      "Total number of product image uploads, by result.",
	},
	[]string{"result"},
)

// PrimaryImageSwitchesTotal counts successful primary-image changes.
var PrimaryImageSwitchesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "primary_image_switches_total",
		Help:      "Total number of successful primary image designations.",
	},
)
