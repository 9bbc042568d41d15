package apriori

import (
	"context"
	"runtime"
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/sync/errgroup"
)

// parallelThreshold is the candidate count below which a level is counted on
// the calling goroutine.
const parallelThreshold = 256

// LevelStats describes one completed level of the search.
type LevelStats struct {
	Level      int `json:"level"`      // itemset size
	Candidates int `json:"candidates"` // candidates produced by the join step
	Pruned     int `json:"pruned"`     // candidates discarded for having an infrequent subset
	Frequent   int `json:"frequent"`   // candidates meeting the support threshold
}

// Option configures Mine.
type Option func(*options)

type options struct {
	maxLen  int
	workers int
	hook    func(LevelStats)
}

// WithMaxLen stops the search after itemsets of n items. Zero means no limit.
func WithMaxLen(n int) Option {
	return func(o *options) {
		o.maxLen = n
	}
}

// WithWorkers bounds the goroutines counting candidate supports within a
// level. Zero means runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithLevelHook registers fn to be called after every level, in order.
func WithLevelHook(fn func(LevelStats)) Option {
	return func(o *options) {
		o.hook = fn
	}
}

// candidate is an itemset under evaluation: canonical item positions plus
// the transactions containing all of them.
type candidate struct {
	items []int
	tids  *bitset.BitSet
	count int
}

// Mine returns every itemset of ds whose support is at least minSupport.
//
// The search is level-wise. Level k candidates are built by joining two
// frequent (k-1)-itemsets sharing their first k-2 items, discarded if any
// (k-1)-subset is infrequent, then counted by intersecting transaction sets.
// The search ends at the first level with no frequent itemsets.
//
// Mine honours ctx between levels and candidate batches; a cancelled run
// returns ctx.Err() and no result.
func Mine(ctx context.Context, ds *Dataset, minSupport float64, opts ...Option) (*FrequentItemsets, error) {
	if ds == nil {
		return nil, invalidInput("dataset is nil")
	}
	if err := validateThreshold("min_support", minSupport); err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxLen < 0 {
		return nil, invalidParameter("max_len must be non-negative, got %d", o.maxLen)
	}
	if o.workers < 0 {
		return nil, invalidParameter("workers must be non-negative, got %d", o.workers)
	}
	if o.workers == 0 {
		o.workers = runtime.NumCPU()
	}

	n := float64(ds.n)
	frequent := func(count int) bool {
		return float64(count)/n >= minSupport
	}

	// Level 1: every item is a candidate.
	var level []*candidate
	for i, tids := range ds.tids {
		c := int(tids.Count())
		if frequent(c) {
			level = append(level, &candidate{items: []int{i}, tids: tids, count: c})
		}
	}
	report(o.hook, LevelStats{Level: 1, Candidates: len(ds.items), Frequent: len(level)})

	var found []Itemset
	for k := 1; len(level) > 0; k++ {
		found = appendItemsets(found, ds, level)

		if o.maxLen > 0 && k >= o.maxLen {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cands, joined := generateCandidates(level)
		if err := countCandidates(ctx, ds, cands, o.workers); err != nil {
			return nil, err
		}

		next := cands[:0]
		for _, c := range cands {
			if frequent(c.count) {
				next = append(next, c)
			}
		}
		report(o.hook, LevelStats{
			Level:      k + 1,
			Candidates: joined,
			Pruned:     joined - len(cands),
			Frequent:   len(next),
		})
		level = next
	}

	return newFrequentItemsets(ds.n, found), nil
}

func report(hook func(LevelStats), s LevelStats) {
	if hook != nil {
		hook(s)
	}
}

func appendItemsets(dst []Itemset, ds *Dataset, level []*candidate) []Itemset {
	for _, c := range level {
		items := make([]string, len(c.items))
		for k, i := range c.items {
			items[k] = ds.items[i]
		}
		dst = append(dst, Itemset{
			Items:   items,
			Count:   c.count,
			Support: float64(c.count) / float64(ds.n),
		})
	}
	return dst
}

// generateCandidates joins the frequent itemsets of one level into the next
// level's candidates and applies subset pruning. level must be in canonical
// order; the output is too. It also returns how many candidates the join
// produced before pruning.
func generateCandidates(level []*candidate) ([]*candidate, int) {
	if len(level) < 2 {
		return nil, 0
	}

	known := make(map[string]struct{}, len(level))
	for _, c := range level {
		known[positionsKey(c.items)] = struct{}{}
	}

	k := len(level[0].items)
	var out []*candidate
	joined := 0
	subset := make([]int, k)

	for i := 0; i < len(level); i++ {
		a := level[i]
		for j := i + 1; j < len(level); j++ {
			b := level[j]
			if !samePrefix(a.items, b.items, k-1) {
				// Canonical order keeps a shared prefix contiguous.
				break
			}
			joined++

			items := make([]int, k+1)
			copy(items, a.items)
			items[k] = b.items[k-1]

			// Dropping either of the last two items yields a or b, both
			// frequent, so only the first k-1 drops need checking.
			if !allSubsetsKnown(items, subset, k-1, known) {
				continue
			}
			out = append(out, &candidate{items: items, tids: a.tids})
		}
	}
	return out, joined
}

func samePrefix(a, b []int, n int) bool {
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// allSubsetsKnown checks the subsets of items formed by dropping each of the
// first drops positions. buf must have len(items)-1 capacity.
func allSubsetsKnown(items, buf []int, drops int, known map[string]struct{}) bool {
	for d := 0; d < drops; d++ {
		buf = buf[:0]
		buf = append(buf, items[:d]...)
		buf = append(buf, items[d+1:]...)
		if _, ok := known[positionsKey(buf)]; !ok {
			return false
		}
	}
	return true
}

func positionsKey(items []int) string {
	var sb strings.Builder
	for k, i := range items {
		if k > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(i))
	}
	return sb.String()
}

// countCandidates fills in tids and count for every candidate. Each
// candidate's tids starts as its parent's set and is intersected with the
// set of its last item. Candidates are independent, so large levels are
// split into batches counted concurrently.
func countCandidates(ctx context.Context, ds *Dataset, cands []*candidate, workers int) error {
	countRange := func(from, to int) {
		for _, c := range cands[from:to] {
			last := ds.tids[c.items[len(c.items)-1]]
			c.tids = c.tids.Intersection(last)
			c.count = int(c.tids.Count())
		}
	}

	if workers == 1 || len(cands) < parallelThreshold {
		countRange(0, len(cands))
		return nil
	}

	batch := (len(cands) + workers - 1) / workers
	if batch < parallelThreshold/4 {
		batch = parallelThreshold / 4
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for from := 0; from < len(cands); from += batch {
		to := min(from+batch, len(cands))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			countRange(from, to)
			return nil
		})
	}
	return g.Wait()
}
