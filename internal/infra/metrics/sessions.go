package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	sessionsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respect_sessions_started_total",
			Help: "Sessions started, by guild and group size.",
		},
		[]string{"guild", "size"},
	)

	sessionsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respect_sessions_completed_total",
			Help: "Sessions that reached completion, by guild.",
		},
		[]string{"guild"},
	)

	sessionsAborted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respect_sessions_aborted_total",
			Help: "Sessions ended by the facilitator before completion, by guild.",
		},
		[]string{"guild"},
	)

	sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "respect_sessions_active",
			Help: "Live sessions currently in the store.",
		},
	)

	votesCast = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respect_votes_cast_total",
			Help: "Accepted vote submissions, by guild.",
		},
		[]string{"guild"},
	)

	roundsResolved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respect_rounds_resolved_total",
			Help: "Resolved levels, split by whether an override forced them.",
		},
		[]string{"guild", "forced"},
	)

	overridesApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respect_overrides_applied_total",
			Help: "Admin overrides applied, by operation.",
		},
		[]string{"op"},
	)
)

func init() {
	register(sessionsStarted, sessionsCompleted, sessionsAborted, sessionsActive,
		votesCast, roundsResolved, overridesApplied)
}

func SessionStarted(guild string, size int) {
	sessionsStarted.WithLabelValues(guild, strconv.Itoa(size)).Inc()
}

func SessionCompleted(guild string) { sessionsCompleted.WithLabelValues(guild).Inc() }
func SessionAborted(guild string)   { sessionsAborted.WithLabelValues(guild).Inc() }
func SetActiveSessions(n int)       { sessionsActive.Set(float64(n)) }
func VoteCast(guild string)         { votesCast.WithLabelValues(guild).Inc() }

func RoundResolved(guild string, forced bool) {
	roundsResolved.WithLabelValues(guild, strconv.FormatBool(forced)).Inc()
}

func OverrideApplied(op string) { overridesApplied.WithLabelValues(op).Inc() }
