// Package service contains the ingestion pipeline and the background
// polling task that drive the history ledger and subscription store.
package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchTotal counts upstream fetch attempts per surface and result
	// (ok, rate_limited, error, empty).
	FetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytmon_fetch_total",
			Help: "Upstream page fetches by surface and result",
		},
		[]string{"surface", "result"},
	)

	// IngestTotal counts pipeline candidates per entry path and outcome.
	IngestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytmon_ingest_total",
			Help: "Ingestion pipeline candidates by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	// RosterSize tracks the size of the most recently fetched roster.
	RosterSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ytmon_subscription_roster_size",
			Help: "Channel count in the latest subscription roster",
		},
	)
)
