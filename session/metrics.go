package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	packetsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "boardsync",
		Name:      "packets_sent_total",
		Help:      "Packets handed to connection writers.",
	}, []string{"tag"})
	packetsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "boardsync",
		Name:      "packets_received_total",
		Help:      "Packets read from connections.",
	}, []string{"tag"})
	packetsReordered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "boardsync",
		Name:      "packets_reordered_total",
		Help:      "Packets received ahead of their turn and buffered.",
	})
	packetsDuplicated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "boardsync",
		Name:      "packets_duplicated_total",
		Help:      "Packets dropped because their sequence id was already applied.",
	})
	sendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "boardsync",
		Name:      "send_failures_total",
		Help:      "Failed or overflowing sends, each marking a connection dead.",
	})
	actionsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "boardsync",
		Name:      "actions_dispatched_total",
		Help:      "Actions whose hook ran, by role.",
	}, []string{"role"})
	dispatchSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "boardsync",
		Name:      "dispatch_skipped_total",
		Help:      "Actions whose hook did not run, by reason.",
	}, []string{"reason"})
	rosterSize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "boardsync",
		Name:      "roster_size",
		Help:      "Connections accepted by the server role.",
	})
	journalSize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "boardsync",
		Name:      "journal_records",
		Help:      "Records replayed to joining connections.",
	})
)
