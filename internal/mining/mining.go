// Package mining runs the frequent-itemset search and rule generation as one
// instrumented unit shared by the CLI, the file watcher and the HTTP server.
package mining

import (
	"context"
	"errors"
	"time"

	"github.com/blackwell-systems/basketprune/internal/apriori"
	"github.com/blackwell-systems/basketprune/internal/logging"
	"github.com/blackwell-systems/basketprune/internal/metrics"
	"github.com/blackwell-systems/basketprune/internal/output"
)

// Params are the thresholds for one run.
type Params struct {
	MinSupport    float64
	MinConfidence float64 // ignored when SkipRules is set
	MaxLen        int
	Workers       int
	SkipRules     bool

	// OnLevel, when set, is called after every completed level.
	OnLevel func(apriori.LevelStats)
}

// Result is the outcome of a successful run.
type Result struct {
	RunID        string
	Transactions int
	Params       Params
	Itemsets     *apriori.FrequentItemsets
	Rules        []apriori.Rule
	Levels       []apriori.LevelStats
	Duration     time.Duration
}

// Run mines ds and, unless p.SkipRules, derives rules from the result. Every
// run is logged under a fresh run_id and recorded in the metrics.
func Run(ctx context.Context, ds *apriori.Dataset, p Params) (*Result, error) {
	res := &Result{
		RunID:  logging.NewRunID(),
		Params: p,
	}
	if ds != nil {
		res.Transactions = ds.Len()
	}
	ctx = logging.ContextWithRunID(ctx, res.RunID)
	log := logging.Ctx(ctx)

	log.Debug().
		Float64("min_support", p.MinSupport).
		Float64("min_confidence", p.MinConfidence).
		Int("max_len", p.MaxLen).
		Int("transactions", res.Transactions).
		Msg("mining started")

	start := time.Now()
	hook := func(s apriori.LevelStats) {
		res.Levels = append(res.Levels, s)
		metrics.RecordLevel(s.Level, s.Candidates)
		log.Debug().
			Int("level", s.Level).
			Int("candidates", s.Candidates).
			Int("pruned", s.Pruned).
			Int("frequent", s.Frequent).
			Msg("level complete")
		if p.OnLevel != nil {
			p.OnLevel(s)
		}
	}

	fi, err := apriori.Mine(ctx, ds, p.MinSupport,
		apriori.WithMaxLen(p.MaxLen),
		apriori.WithWorkers(p.Workers),
		apriori.WithLevelHook(hook))
	if err == nil && !p.SkipRules {
		res.Rules, err = apriori.GenerateRules(fi, p.MinConfidence)
	}
	res.Duration = time.Since(start)

	if err != nil {
		status := metrics.StatusError
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			status = metrics.StatusCancelled
		}
		metrics.RecordMiningRun(status, res.Duration, 0, 0)
		log.Warn().Err(err).Str("status", status).Msg("mining failed")
		return nil, err
	}

	res.Itemsets = fi
	metrics.RecordMiningRun(metrics.StatusOK, res.Duration, fi.Len(), len(res.Rules))
	log.Info().
		Int("itemsets", fi.Len()).
		Int("rules", len(res.Rules)).
		Dur("duration", res.Duration).
		Msg("mining finished")
	return res, nil
}

// Report converts the result to its JSON document.
func (r *Result) Report(dataset string) output.Report {
	rep := output.Report{
		RunID:        r.RunID,
		Dataset:      dataset,
		Transactions: r.Transactions,
		MinSupport:   r.Params.MinSupport,
		Levels:       r.Levels,
		Itemsets:     output.NewItemsetsJSON(r.Itemsets.All()),
	}
	if !r.Params.SkipRules {
		rep.MinConfidence = r.Params.MinConfidence
		rep.Rules = output.NewRulesJSON(r.Rules)
	}
	return rep
}
