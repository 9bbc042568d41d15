package apriori

import (
	"fmt"
	"strings"
)

// NoRulesMessage is rendered by FormatRules for an empty rule list.
const NoRulesMessage = "No association rules found with the given confidence threshold."

// NoItemsetsMessage is rendered by FormatItemsets for an empty result.
const NoItemsetsMessage = "No frequent itemsets found with the given support threshold."

// FormatRules renders one rule per line in Rule.String form.
func FormatRules(rules []Rule) string {
	if len(rules) == 0 {
		return NoRulesMessage
	}
	lines := make([]string, len(rules))
	for i, r := range rules {
		lines[i] = r.String()
	}
	return strings.Join(lines, "\n")
}

// FormatItemsets renders one row per itemset: its support, then its members.
func FormatItemsets(fi *FrequentItemsets) string {
	if fi.Len() == 0 {
		return NoItemsetsMessage
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%8s  %s\n", "support", "itemsets"))
	for _, s := range fi.sets {
		sb.WriteString(fmt.Sprintf("%8.4f  %s\n", s.Support, s))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
