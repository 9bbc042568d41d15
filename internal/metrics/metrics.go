// Package metrics exposes Prometheus instrumentation for mining runs.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run outcomes for MiningRunsTotal.
const (
	StatusOK        = "ok"
	StatusError     = "error"
	StatusCancelled = "cancelled"
)

var (
	// MiningRunsTotal counts mining runs by outcome.
	MiningRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "basketprune_mining_runs_total",
		Help: "Total number of mining runs by status",
	}, []string{"status"})

	// MiningDuration measures end-to-end mining time, rules included.
	MiningDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "basketprune_mining_duration_seconds",
		Help:    "Mining run duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
	})

	// ItemsetsFound is the number of frequent itemsets in the last successful run.
	ItemsetsFound = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "basketprune_itemsets_found",
		Help: "Frequent itemsets found by the last successful mining run",
	})

	// RulesFound is the number of rules in the last successful run.
	RulesFound = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "basketprune_rules_found",
		Help: "Association rules generated by the last successful mining run",
	})

	// CandidatesTotal counts join candidates by itemset size.
	CandidatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "basketprune_candidates_total",
		Help: "Total candidate itemsets generated, by level",
	}, []string{"level"})

	// DatasetsImportedTotal counts datasets written to the store.
	DatasetsImportedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "basketprune_datasets_imported_total",
		Help: "Total number of datasets imported",
	})
)

// RecordMiningRun records one finished run. The itemset and rule gauges are
// only updated on success.
func RecordMiningRun(status string, duration time.Duration, itemsets, rules int) {
	MiningRunsTotal.WithLabelValues(status).Inc()
	MiningDuration.Observe(duration.Seconds())
	if status == StatusOK {
		ItemsetsFound.Set(float64(itemsets))
		RulesFound.Set(float64(rules))
	}
}

// RecordLevel adds the candidates generated for one level.
func RecordLevel(level, candidates int) {
	CandidatesTotal.WithLabelValues(strconv.Itoa(level)).Add(float64(candidates))
}
