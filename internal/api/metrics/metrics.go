// Package metrics defines and registers all custom Prometheus metrics for the
// dispatch service. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics self-register with the default Prometheus registry via promauto at
// package load.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dispatch"

// ── Round metrics ─────────────────────────────────────────────────────────────

// RoundsOpenedTotal counts dispatch rounds opened by notify operations.
var RoundsOpenedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rounds_opened_total",
		Help:      "Total number of dispatch rounds opened.",
	},
)

// RoundsExpiredTotal counts rounds that timed out without a winner.
var RoundsExpiredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rounds_expired_total",
		Help:      "Total number of dispatch rounds expired by the time budget.",
	},
)

// ClaimsTotal counts claim attempts by outcome.
// Label:
//   - result: "won", "already_claimed", or "round_not_open"
var ClaimsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "claims_total",
		Help:      "Total number of partner claim attempts, by outcome.",
	},
	[]string{"result"},
)

// ── Broadcast metrics ─────────────────────────────────────────────────────────

// BroadcastsTotal counts round broadcasts.
// Label:
//   - urgent: "true" or "false"
var BroadcastsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "broadcasts_total",
		Help:      "Total number of round broadcasts performed.",
	},
	[]string{"urgent"},
)

// ChannelSendsTotal counts individual channel sends.
// Labels:
//   - channel: "mobile_push", "web_push", or "in_app"
//   - result: "delivered" or "failed"
var ChannelSendsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "channel_sends_total",
		Help:      "Total number of per-token notification sends, by channel and result.",
	},
	[]string{"channel", "result"},
)

// BroadcastDuration measures one full fan-out from first send to last.
var BroadcastDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "broadcast_duration_seconds",
		Help:      "Duration of a full round broadcast across all partners and channels.",
		Buckets:   prometheus.DefBuckets, // .005 … 10
	},
)

// ── Worker metrics ────────────────────────────────────────────────────────────

// QueueDepth tracks the number of broadcast jobs waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var QueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Current number of broadcast jobs pending in each worker channel.",
	},
	[]string{"worker_id"},
)
