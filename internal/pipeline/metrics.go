// Package pipeline – Prometheus instrumentation.
//
// The counters below measure moderation outcomes rather than transport
// traffic: how many updates arrived per kind, how many messages were deleted
// and why, how many challenges went out, and how many members verified.
// Label sets are fixed and tiny, so cardinality stays bounded.
package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// updatesTotal counts inbound updates by event kind.
	updatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_total",
			Help: "Total number of inbound updates by kind.",
		},
		[]string{"kind"},
	)

	// deletionsTotal counts deleted messages by reason
	// (censored, flagged_sticker, banned, challenged_new, pending_challenge).
	deletionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_messages_deleted_total",
			Help: "Total number of messages deleted by the moderation pipeline, by reason.",
		},
		[]string{"reason"},
	)

	// challengesTotal counts verification challenges issued.
	challengesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_challenges_sent_total",
			Help: "Total number of verification challenges issued.",
		},
	)

	// verificationsTotal counts members that resolved their challenge.
	verificationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_members_verified_total",
			Help: "Total number of members that passed verification.",
		},
	)

	// eventsForwarded counts events that cleared every step and reached the
	// downstream handler.
	eventsForwarded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_events_forwarded_total",
			Help: "Total number of events admitted to the downstream handler.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		updatesTotal,
		deletionsTotal,
		challengesTotal,
		verificationsTotal,
		eventsForwarded,
	)
}
