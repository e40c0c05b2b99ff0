package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	historyRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respect_history_records_total",
			Help: "History records appended, split by aborted marker.",
		},
		[]string{"aborted"},
	)

	historyQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respect_history_queries_total",
			Help: "Read-side history queries, by kind.",
		},
		[]string{"kind"},
	)
)

func init() {
	register(historyRecords, historyQueries)
}

func HistoryRecorded(aborted bool) {
	historyRecords.WithLabelValues(strconv.FormatBool(aborted)).Inc()
}

func HistoryQuery(kind string) { historyQueries.WithLabelValues(kind).Inc() }
