package apriori

import (
	"math"
	"slices"
	"strings"
)

// keySep joins item names into map keys. It cannot appear in item labels
// produced by any of the ingest formats.
const keySep = "\x00"

// Itemset is a frequent itemset with its items in canonical order.
type Itemset struct {
	Items   []string
	Count   int     // transactions containing every item
	Support float64 // Count / total transactions
}

// Size returns the number of items.
func (s Itemset) Size() int {
	return len(s.Items)
}

// Key returns a canonical map key for the itemset.
func (s Itemset) Key() string {
	return itemsKey(s.Items)
}

// String renders the members joined by ", ".
func (s Itemset) String() string {
	return strings.Join(s.Items, ", ")
}

func itemsKey(items []string) string {
	return strings.Join(items, keySep)
}

// canonical returns a sorted copy of items.
func canonical(items []string) []string {
	out := slices.Clone(items)
	slices.Sort(out)
	return out
}

// compareItemsets orders by size, then lexicographically item by item.
func compareItemsets(a, b Itemset) int {
	if len(a.Items) != len(b.Items) {
		return len(a.Items) - len(b.Items)
	}
	return slices.Compare(a.Items, b.Items)
}

// FrequentItemsets is the complete result of one mining run.
type FrequentItemsets struct {
	transactions int
	sets         []Itemset
	index        map[string]int
	maxLen       int
}

// NewFrequentItemsets assembles a result from caller-supplied itemsets, for
// example itemsets decoded from JSON. Items are put in canonical order.
// When Count is zero it is derived from Support. Rule generation relies on
// every subset of every itemset being present; that is checked lazily by
// GenerateRules, not here.
func NewFrequentItemsets(transactions int, sets []Itemset) (*FrequentItemsets, error) {
	if transactions <= 0 {
		return nil, invalidInput("transaction count must be positive, got %d", transactions)
	}

	out := make([]Itemset, 0, len(sets))
	for i, s := range sets {
		if len(s.Items) == 0 {
			return nil, invalidInput("itemset %d is empty", i)
		}
		if math.IsNaN(s.Support) || s.Support <= 0 || s.Support > 1 {
			return nil, invalidInput("itemset %d support %v outside (0, 1]", i, s.Support)
		}
		items := canonical(s.Items)
		for k := 1; k < len(items); k++ {
			if items[k] == items[k-1] {
				return nil, invalidInput("itemset %d repeats item %q", i, items[k])
			}
		}
		count := s.Count
		if count == 0 {
			count = int(math.Round(s.Support * float64(transactions)))
		}
		out = append(out, Itemset{Items: items, Count: count, Support: s.Support})
	}
	slices.SortFunc(out, compareItemsets)
	for k := 1; k < len(out); k++ {
		if compareItemsets(out[k], out[k-1]) == 0 {
			return nil, invalidInput("itemset {%s} listed more than once", out[k])
		}
	}

	return newFrequentItemsets(transactions, out), nil
}

// newFrequentItemsets indexes sets, which must already be in canonical order.
func newFrequentItemsets(transactions int, sets []Itemset) *FrequentItemsets {
	fi := &FrequentItemsets{
		transactions: transactions,
		sets:         sets,
		index:        make(map[string]int, len(sets)),
	}
	for i, s := range sets {
		fi.index[s.Key()] = i
		if len(s.Items) > fi.maxLen {
			fi.maxLen = len(s.Items)
		}
	}
	return fi
}

// Transactions returns the transaction count the supports are relative to.
func (f *FrequentItemsets) Transactions() int {
	return f.transactions
}

// Len returns the number of frequent itemsets.
func (f *FrequentItemsets) Len() int {
	if f == nil {
		return 0
	}
	return len(f.sets)
}

// MaxLen returns the size of the largest frequent itemset.
func (f *FrequentItemsets) MaxLen() int {
	return f.maxLen
}

// All returns every itemset ordered by size, then canonical item order.
func (f *FrequentItemsets) All() []Itemset {
	if f == nil {
		return nil
	}
	return slices.Clone(f.sets)
}

// Level returns the itemsets of exactly k items.
func (f *FrequentItemsets) Level(k int) []Itemset {
	var out []Itemset
	for _, s := range f.sets {
		if len(s.Items) == k {
			out = append(out, s)
		}
	}
	return out
}

// Lookup finds the itemset with exactly the given items, in any order.
func (f *FrequentItemsets) Lookup(items ...string) (Itemset, bool) {
	i, ok := f.index[itemsKey(canonical(items))]
	if !ok {
		return Itemset{}, false
	}
	return f.sets[i], true
}

// Support returns the support of the itemset with exactly the given items.
func (f *FrequentItemsets) Support(items ...string) (float64, bool) {
	s, ok := f.Lookup(items...)
	return s.Support, ok
}

// supportOf looks up items that are already canonical.
func (f *FrequentItemsets) supportOf(items []string) (float64, bool) {
	i, ok := f.index[itemsKey(items)]
	if !ok {
		return 0, false
	}
	return f.sets[i].Support, true
}
