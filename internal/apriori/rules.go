package apriori

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Rule is a directional association A -> B derived from one frequent
// itemset I, where A and B are disjoint, non-empty and A ∪ B = I.
type Rule struct {
	Antecedent        []string
	Consequent        []string
	AntecedentSupport float64
	ConsequentSupport float64
	Support           float64 // support of A ∪ B
	Confidence        float64 // Support / AntecedentSupport
	Lift              float64 // Confidence / ConsequentSupport
	Leverage          float64 // Support - AntecedentSupport*ConsequentSupport
	Conviction        float64 // +Inf when Confidence is 1
}

// String renders the rule as "A1, A2 -> B1 (conf: 0.75, supp: 0.38, lift: 1.20)".
func (r Rule) String() string {
	return fmt.Sprintf("%s -> %s (conf: %.2f, supp: %.2f, lift: %.2f)",
		strings.Join(r.Antecedent, ", "),
		strings.Join(r.Consequent, ", "),
		r.Confidence,
		r.Support,
		r.Lift)
}

// Metric names a rule measure for sorting and filtering.
type Metric string

const (
	MetricSupport    Metric = "support"
	MetricConfidence Metric = "confidence"
	MetricLift       Metric = "lift"
	MetricLeverage   Metric = "leverage"
	MetricConviction Metric = "conviction"
)

// Metrics lists every supported metric.
var Metrics = []Metric{MetricSupport, MetricConfidence, MetricLift, MetricLeverage, MetricConviction}

// ParseMetric resolves a metric name, case-insensitively.
func ParseMetric(s string) (Metric, error) {
	m := Metric(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Metrics, m) {
		return m, nil
	}
	return "", invalidParameter("unknown metric %q (must be one of support, confidence, lift, leverage, conviction)", s)
}

// Value returns the rule's value for m.
func (r Rule) Value(m Metric) float64 {
	switch m {
	case MetricSupport:
		return r.Support
	case MetricConfidence:
		return r.Confidence
	case MetricLift:
		return r.Lift
	case MetricLeverage:
		return r.Leverage
	case MetricConviction:
		return r.Conviction
	}
	return math.NaN()
}

// GenerateRules derives every rule with confidence at least minConfidence
// from the itemsets in fi of two or more items.
//
// Consequents are grown level-wise per itemset. Moving an item from the
// antecedent into the consequent cannot raise confidence, so a consequent
// that fails the threshold is never extended. The result equals testing
// every split.
//
// Every antecedent and consequent must itself be in fi; a missing one, or a
// subset whose support is below its superset's, yields
// ErrInternalConsistency. The support is never recomputed.
func GenerateRules(fi *FrequentItemsets, minConfidence float64) ([]Rule, error) {
	if err := validateThreshold("min_confidence", minConfidence); err != nil {
		return nil, err
	}

	rules := []Rule{}
	if fi == nil {
		return rules, nil
	}

	for _, set := range fi.sets {
		if len(set.Items) < 2 {
			continue
		}
		var err error
		rules, err = appendRules(rules, fi, set, minConfidence)
		if err != nil {
			return nil, err
		}
	}
	return rules, nil
}

// appendRules runs the consequent-growing search over one itemset.
func appendRules(dst []Rule, fi *FrequentItemsets, set Itemset, minConfidence float64) ([]Rule, error) {
	// Level 1 consequents: every single item.
	consequents := make([][]string, len(set.Items))
	for i, item := range set.Items {
		consequents[i] = []string{item}
	}

	for m := 1; m < len(set.Items) && len(consequents) > 0; m++ {
		var passed [][]string
		for _, cons := range consequents {
			rule, err := evaluate(fi, set, cons)
			if err != nil {
				return nil, err
			}
			if rule.Confidence >= minConfidence {
				dst = append(dst, rule)
				passed = append(passed, cons)
			}
		}
		consequents = growConsequents(passed)
	}
	return dst, nil
}

// evaluate computes the metrics of rule (set \ cons) -> cons.
func evaluate(fi *FrequentItemsets, set Itemset, cons []string) (Rule, error) {
	ante := difference(set.Items, cons)

	suppA, ok := fi.supportOf(ante)
	if !ok {
		return Rule{}, inconsistent("antecedent {%s} of frequent itemset {%s} has no recorded support",
			strings.Join(ante, ", "), set)
	}
	suppB, ok := fi.supportOf(cons)
	if !ok {
		return Rule{}, inconsistent("consequent {%s} of frequent itemset {%s} has no recorded support",
			strings.Join(cons, ", "), set)
	}
	if suppA < set.Support || suppB < set.Support {
		return Rule{}, inconsistent("subset of frequent itemset {%s} has lower support than the itemset", set)
	}

	return newRule(ante, slices.Clone(cons), suppA, suppB, set.Support), nil
}

func newRule(ante, cons []string, suppA, suppB, supp float64) Rule {
	conf := supp / suppA
	conviction := math.Inf(1)
	if conf < 1 {
		conviction = (1 - suppB) / (1 - conf)
	}

	return Rule{
		Antecedent:        ante,
		Consequent:        cons,
		AntecedentSupport: suppA,
		ConsequentSupport: suppB,
		Support:           supp,
		Confidence:        conf,
		Lift:              conf / suppB,
		Leverage:          supp - suppA*suppB,
		Conviction:        conviction,
	}
}

// EvaluateRule measures antecedent -> consequent directly against ds,
// whatever its support or confidence. Both sides must be non-empty,
// disjoint and made of known items, and the antecedent must occur at
// least once.
func EvaluateRule(ds *Dataset, antecedent, consequent []string) (Rule, error) {
	if ds == nil {
		return Rule{}, invalidInput("dataset is nil")
	}
	if len(antecedent) == 0 || len(consequent) == 0 {
		return Rule{}, invalidParameter("antecedent and consequent must both be non-empty")
	}

	ante := slices.Compact(canonical(antecedent))
	cons := slices.Compact(canonical(consequent))
	for _, item := range ante {
		if _, ok := slices.BinarySearch(cons, item); ok {
			return Rule{}, invalidParameter("item %q is on both sides of the rule", item)
		}
	}

	suppA, err := ds.Support(ante...)
	if err != nil {
		return Rule{}, err
	}
	suppB, err := ds.Support(cons...)
	if err != nil {
		return Rule{}, err
	}
	supp, err := ds.Support(slices.Concat(ante, cons)...)
	if err != nil {
		return Rule{}, err
	}
	if suppA == 0 {
		return Rule{}, invalidInput("antecedent {%s} occurs in no transaction", strings.Join(ante, ", "))
	}
	if suppB == 0 {
		return Rule{}, invalidInput("consequent {%s} occurs in no transaction", strings.Join(cons, ", "))
	}
	return newRule(ante, cons, suppA, suppB, supp), nil
}

// difference returns the items of set not in sub. Both are canonical.
func difference(set, sub []string) []string {
	out := make([]string, 0, len(set)-len(sub))
	j := 0
	for _, item := range set {
		if j < len(sub) && sub[j] == item {
			j++
			continue
		}
		out = append(out, item)
	}
	return out
}

// growConsequents joins passing consequents of size m that share their first
// m-1 items into size m+1 consequents, keeping only those whose every
// m-subset also passed.
func growConsequents(passed [][]string) [][]string {
	if len(passed) < 2 {
		return nil
	}

	known := make(map[string]struct{}, len(passed))
	for _, c := range passed {
		known[itemsKey(c)] = struct{}{}
	}

	m := len(passed[0])
	var out [][]string
	for i := 0; i < len(passed); i++ {
		for j := i + 1; j < len(passed); j++ {
			if !slices.Equal(passed[i][:m-1], passed[j][:m-1]) {
				break
			}
			next := make([]string, m+1)
			copy(next, passed[i])
			next[m] = passed[j][m-1]

			ok := true
			for d := 0; d < m-1 && ok; d++ {
				sub := slices.Concat(next[:d], next[d+1:])
				_, ok = known[itemsKey(sub)]
			}
			if ok {
				out = append(out, next)
			}
		}
	}
	return out
}

// SortRules orders rules by m, highest first. Ties keep their order.
func SortRules(rules []Rule, m Metric) {
	slices.SortStableFunc(rules, func(a, b Rule) int {
		va, vb := a.Value(m), b.Value(m)
		switch {
		case va > vb:
			return -1
		case va < vb:
			return 1
		}
		return 0
	})
}

// FilterRules returns the rules whose m value is at least threshold.
func FilterRules(rules []Rule, m Metric, threshold float64) []Rule {
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r.Value(m) >= threshold {
			out = append(out, r)
		}
	}
	return out
}
