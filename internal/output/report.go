package output

import (
	"math"

	"github.com/blackwell-systems/basketprune/internal/apriori"
)

// ItemsetJSON is the JSON form of a frequent itemset.
type ItemsetJSON struct {
	Items   []string `json:"items"`
	Count   int      `json:"count"`
	Support float64  `json:"support"`
}

// RuleJSON is the JSON form of a rule. Conviction is null when infinite.
type RuleJSON struct {
	Antecedent        []string `json:"antecedent"`
	Consequent        []string `json:"consequent"`
	Support           float64  `json:"support"`
	Confidence        float64  `json:"confidence"`
	Lift              float64  `json:"lift"`
	Leverage          float64  `json:"leverage"`
	Conviction        *float64 `json:"conviction"`
	AntecedentSupport float64  `json:"antecedent_support"`
	ConsequentSupport float64  `json:"consequent_support"`
}

// Report is the JSON document produced by mine, rules and the HTTP API.
type Report struct {
	RunID         string               `json:"run_id,omitempty"`
	Dataset       string               `json:"dataset,omitempty"`
	Transactions  int                  `json:"transactions"`
	MinSupport    float64              `json:"min_support"`
	MinConfidence float64              `json:"min_confidence,omitempty"`
	Levels        []apriori.LevelStats `json:"levels,omitempty"`
	Itemsets      []ItemsetJSON        `json:"itemsets"`
	Rules         []RuleJSON           `json:"rules"`
}

// NewItemsetsJSON converts itemsets for encoding.
func NewItemsetsJSON(sets []apriori.Itemset) []ItemsetJSON {
	out := make([]ItemsetJSON, len(sets))
	for i, s := range sets {
		out[i] = ItemsetJSON{Items: s.Items, Count: s.Count, Support: s.Support}
	}
	return out
}

// NewRulesJSON converts rules for encoding.
func NewRulesJSON(rules []apriori.Rule) []RuleJSON {
	out := make([]RuleJSON, len(rules))
	for i, r := range rules {
		var conviction *float64
		if !math.IsInf(r.Conviction, 0) && !math.IsNaN(r.Conviction) {
			c := r.Conviction
			conviction = &c
		}
		out[i] = RuleJSON{
			Antecedent:        r.Antecedent,
			Consequent:        r.Consequent,
			Support:           r.Support,
			Confidence:        r.Confidence,
			Lift:              r.Lift,
			Leverage:          r.Leverage,
			Conviction:        conviction,
			AntecedentSupport: r.AntecedentSupport,
			ConsequentSupport: r.ConsequentSupport,
		}
	}
	return out
}
