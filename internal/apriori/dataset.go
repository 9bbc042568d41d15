package apriori

import (
	"sort"

	"github.com/bits-and-blooms/bitset"
)

// Dataset is an immutable transaction-by-item membership matrix.
//
// Items are stored in lexicographic order and each item carries the set of
// transaction indices containing it. The support of an itemset is the
// cardinality of the intersection of its items' sets divided by Len().
type Dataset struct {
	items []string
	index map[string]int
	tids  []*bitset.BitSet
	n     int
}

// NewDataset builds a Dataset from a rectangular 0/1 indicator matrix.
// rows[t][c] is 1 when transaction t contains items[c].
func NewDataset(items []string, rows [][]int) (*Dataset, error) {
	if err := checkShape(items, len(rows)); err != nil {
		return nil, err
	}
	for r, row := range rows {
		if len(row) != len(items) {
			return nil, invalidInput("row %d has %d cells, want %d", r, len(row), len(items))
		}
		for c, v := range row {
			if v != 0 && v != 1 {
				return nil, invalidInput("row %d, item %q: value %d is not 0 or 1", r, items[c], v)
			}
		}
	}

	return build(items, len(rows), func(r, c int) bool {
		return rows[r][c] == 1
	})
}

// NewDatasetFromBools builds a Dataset from a rectangular boolean matrix.
func NewDatasetFromBools(items []string, rows [][]bool) (*Dataset, error) {
	if err := checkShape(items, len(rows)); err != nil {
		return nil, err
	}
	for r, row := range rows {
		if len(row) != len(items) {
			return nil, invalidInput("row %d has %d cells, want %d", r, len(row), len(items))
		}
	}

	return build(items, len(rows), func(r, c int) bool {
		return rows[r][c]
	})
}

// NewDatasetFromBaskets builds a Dataset from per-transaction item lists.
// The item universe is the union of all baskets. Empty baskets are allowed
// and count toward the transaction total; repeated items within one basket
// are rejected.
func NewDatasetFromBaskets(baskets [][]string) (*Dataset, error) {
	if len(baskets) == 0 {
		return nil, invalidInput("no transactions")
	}

	seen := make(map[string]struct{})
	for t, basket := range baskets {
		inBasket := make(map[string]struct{}, len(basket))
		for _, item := range basket {
			if item == "" {
				return nil, invalidInput("transaction %d contains an empty item name", t)
			}
			if _, dup := inBasket[item]; dup {
				return nil, invalidInput("transaction %d lists item %q more than once", t, item)
			}
			inBasket[item] = struct{}{}
			seen[item] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil, invalidInput("item universe is empty")
	}

	items := make([]string, 0, len(seen))
	for item := range seen {
		items = append(items, item)
	}
	sort.Strings(items)

	ds := &Dataset{
		items: items,
		index: make(map[string]int, len(items)),
		tids:  make([]*bitset.BitSet, len(items)),
		n:     len(baskets),
	}
	for i, item := range items {
		ds.index[item] = i
		ds.tids[i] = bitset.New(uint(ds.n))
	}
	for t, basket := range baskets {
		for _, item := range basket {
			ds.tids[ds.index[item]].Set(uint(t))
		}
	}

	return ds, nil
}

// checkShape validates the item labels and transaction count shared by the
// matrix constructors.
func checkShape(items []string, rows int) error {
	if len(items) == 0 {
		return invalidInput("item universe is empty")
	}
	if rows == 0 {
		return invalidInput("no transactions")
	}

	seen := make(map[string]struct{}, len(items))
	for c, item := range items {
		if item == "" {
			return invalidInput("item label in column %d is empty", c)
		}
		if _, dup := seen[item]; dup {
			return invalidInput("item label %q is not unique", item)
		}
		seen[item] = struct{}{}
	}
	return nil
}

// build lays out a Dataset in canonical item order from an already validated
// matrix accessor.
func build(labels []string, rows int, member func(r, c int) bool) (*Dataset, error) {
	order := make([]int, len(labels))
	for c := range order {
		order[c] = c
	}
	sort.Slice(order, func(i, j int) bool {
		return labels[order[i]] < labels[order[j]]
	})

	ds := &Dataset{
		items: make([]string, len(labels)),
		index: make(map[string]int, len(labels)),
		tids:  make([]*bitset.BitSet, len(labels)),
		n:     rows,
	}
	for pos, c := range order {
		ds.items[pos] = labels[c]
		ds.index[labels[c]] = pos

		set := bitset.New(uint(rows))
		for r := 0; r < rows; r++ {
			if member(r, c) {
				set.Set(uint(r))
			}
		}
		ds.tids[pos] = set
	}

	return ds, nil
}

// Len returns the number of transactions.
func (d *Dataset) Len() int {
	return d.n
}

// NumItems returns the size of the item universe.
func (d *Dataset) NumItems() int {
	return len(d.items)
}

// Items returns the item universe in canonical order.
func (d *Dataset) Items() []string {
	out := make([]string, len(d.items))
	copy(out, d.items)
	return out
}

// Index returns the canonical position of item.
func (d *Dataset) Index(item string) (int, bool) {
	i, ok := d.index[item]
	return i, ok
}

// Transactions returns the sorted indices of transactions containing item,
// or nil when the item is unknown.
func (d *Dataset) Transactions(item string) []int {
	i, ok := d.index[item]
	if !ok {
		return nil
	}

	set := d.tids[i]
	out := make([]int, 0, set.Count())
	for t, ok := set.NextSet(0); ok; t, ok = set.NextSet(t + 1) {
		out = append(out, int(t))
	}
	return out
}

// Contains reports whether transaction t holds every one of items.
func (d *Dataset) Contains(t int, items ...string) (bool, error) {
	if t < 0 || t >= d.n {
		return false, invalidInput("transaction %d out of range [0, %d)", t, d.n)
	}
	idx, err := d.resolve(items)
	if err != nil {
		return false, err
	}
	for _, i := range idx {
		if !d.tids[i].Test(uint(t)) {
			return false, nil
		}
	}
	return true, nil
}

// Count returns the number of transactions containing every one of items.
// The empty itemset is contained in every transaction.
func (d *Dataset) Count(items ...string) (int, error) {
	idx, err := d.resolve(items)
	if err != nil {
		return 0, err
	}
	return d.count(idx), nil
}

// Support returns Count(items...) / Len().
func (d *Dataset) Support(items ...string) (float64, error) {
	c, err := d.Count(items...)
	if err != nil {
		return 0, err
	}
	return float64(c) / float64(d.n), nil
}

func (d *Dataset) resolve(items []string) ([]int, error) {
	idx := make([]int, len(items))
	for k, item := range items {
		i, ok := d.index[item]
		if !ok {
			return nil, invalidInput("unknown item %q", item)
		}
		idx[k] = i
	}
	return idx, nil
}

// count intersects the per-item sets of idx. Only the final intersection is
// materialised; pairs use IntersectionCardinality directly.
func (d *Dataset) count(idx []int) int {
	switch len(idx) {
	case 0:
		return d.n
	case 1:
		return int(d.tids[idx[0]].Count())
	case 2:
		return int(d.tids[idx[0]].IntersectionCardinality(d.tids[idx[1]]))
	}

	acc := d.tids[idx[0]].Intersection(d.tids[idx[1]])
	for _, i := range idx[2:] {
		acc.InPlaceIntersection(d.tids[i])
	}
	return int(acc.Count())
}
