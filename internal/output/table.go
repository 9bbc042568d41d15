// Package output provides terminal output for basketprune.
//
// This package includes:
//   - Table rendering for frequent itemsets, rules, datasets and item counts
//   - A per-rule metric breakdown for the explain command
//   - Progress bars and spinners for long-running operations
//   - JSON rendering for --format json
//
// Tables are plain fixed-width text; ANSI colors are added only when stdout
// is a terminal and NO_COLOR is unset.
package output

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/basketprune/internal/apriori"
	"github.com/blackwell-systems/basketprune/internal/store"
)

// ANSI color codes for lift display
const (
	colorReset = "\033[0m"
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
	colorGray  = "\033[90m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// RenderItemsetTable renders frequent itemsets in the order given.
func RenderItemsetTable(sets []apriori.Itemset) string {
	if len(sets) == 0 {
		return apriori.NoItemsetsMessage + "\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-8s %-7s %-5s %s\n",
		"Support", "Count", "Size", "Itemset"))
	sb.WriteString(strings.Repeat("─", 64))
	sb.WriteString("\n")

	for _, s := range sets {
		sb.WriteString(fmt.Sprintf("%-8.4f %-7d %-5d %s\n",
			s.Support,
			s.Count,
			s.Size(),
			truncate(s.String(), 44)))
	}

	return sb.String()
}

// RenderRuleTable renders rules in the order given. Lift above 1 is green,
// below 1 red.
func RenderRuleTable(rules []apriori.Rule) string {
	if len(rules) == 0 {
		return apriori.NoRulesMessage + "\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-40s %-8s %-8s %-7s %-9s %s\n",
		"Rule", "Support", "Conf", "Lift", "Leverage", "Conviction"))
	sb.WriteString(strings.Repeat("─", 88))
	sb.WriteString("\n")

	for _, r := range rules {
		// Pad before coloring so escape codes do not break alignment.
		lift := fmt.Sprintf("%-7.3f", r.Lift)
		sb.WriteString(fmt.Sprintf("%-40s %-8.4f %-8.4f %s %-9.4f %s\n",
			truncate(formatRuleSides(r), 40),
			r.Support,
			r.Confidence,
			colorize(liftColor(r.Lift), lift),
			r.Leverage,
			formatMetric(r.Conviction)))
	}

	return sb.String()
}

// RenderRuleDetail renders the metric breakdown of one rule mined from
// transactions transactions.
func RenderRuleDetail(r apriori.Rule, transactions int) string {
	var sb strings.Builder

	ante := strings.Join(r.Antecedent, ", ")
	cons := strings.Join(r.Consequent, ", ")
	count := func(support float64) int {
		return int(math.Round(support * float64(transactions)))
	}

	sb.WriteString(fmt.Sprintf("Rule: {%s} -> {%s}\n", ante, cons))
	sb.WriteString("\nSupport:\n")
	sb.WriteString(fmt.Sprintf("  Antecedent:  %.4f (%d of %d transactions)\n",
		r.AntecedentSupport, count(r.AntecedentSupport), transactions))
	sb.WriteString(fmt.Sprintf("  Consequent:  %.4f (%d of %d transactions)\n",
		r.ConsequentSupport, count(r.ConsequentSupport), transactions))
	sb.WriteString(fmt.Sprintf("  Both:        %.4f (%d of %d transactions)\n",
		r.Support, count(r.Support), transactions))

	sb.WriteString("\nMetrics:\n")
	sb.WriteString(fmt.Sprintf("  Confidence:  %.4f - %.0f%% of baskets with {%s} also contain {%s}\n",
		r.Confidence, r.Confidence*100, ante, cons))
	sb.WriteString(fmt.Sprintf("  Lift:        %s - %s\n",
		colorize(liftColor(r.Lift), fmt.Sprintf("%.4f", r.Lift)), describeLift(r.Lift)))
	sb.WriteString(fmt.Sprintf("  Leverage:    %.4f\n", r.Leverage))
	sb.WriteString(fmt.Sprintf("  Conviction:  %s\n", formatMetric(r.Conviction)))
	sb.WriteString(strings.Repeat("─", 72))
	sb.WriteString("\n")

	return sb.String()
}

// RenderLevelSummary renders the per-level search statistics.
func RenderLevelSummary(levels []apriori.LevelStats) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-6s %-11s %-7s %s\n",
		"Level", "Candidates", "Pruned", "Frequent"))
	for _, l := range levels {
		sb.WriteString(fmt.Sprintf("%-6d %-11d %-7d %d\n",
			l.Level, l.Candidates, l.Pruned, l.Frequent))
	}

	return sb.String()
}

// RenderDatasetTable renders stored datasets.
func RenderDatasetTable(datasets []*store.Dataset) string {
	if len(datasets) == 0 {
		return "No datasets found. Import one with 'basketprune import <file>'.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-20s %-8s %-13s %-7s %-15s %s\n",
		"Dataset", "Format", "Transactions", "Items", "Imported", "Source"))
	sb.WriteString(strings.Repeat("─", 88))
	sb.WriteString("\n")

	for _, ds := range datasets {
		sb.WriteString(fmt.Sprintf("%-20s %-8s %-13d %-7d %-15s %s\n",
			truncate(ds.Name, 20),
			ds.Format,
			ds.Transactions,
			ds.Items,
			formatRelativeTime(ds.ImportedAt),
			truncate(ds.Source, 30)))
	}

	return sb.String()
}

// RenderItemCounts renders per-item transaction counts with their support.
func RenderItemCounts(counts []store.ItemCount, transactions int) string {
	if len(counts) == 0 {
		return "No items found.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-30s %-7s %s\n", "Item", "Count", "Support"))
	sb.WriteString(strings.Repeat("─", 48))
	sb.WriteString("\n")

	for _, c := range counts {
		support := 0.0
		if transactions > 0 {
			support = float64(c.Count) / float64(transactions)
		}
		sb.WriteString(fmt.Sprintf("%-30s %-7d %.4f\n",
			truncate(c.Item, 30), c.Count, support))
	}

	return sb.String()
}

// RenderJSON writes v as indented JSON followed by a newline.
func RenderJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func formatRuleSides(r apriori.Rule) string {
	return strings.Join(r.Antecedent, ", ") + " -> " + strings.Join(r.Consequent, ", ")
}

// formatMetric prints a metric with four decimals; infinite conviction is "inf".
func formatMetric(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.4f", v)
}

// liftColor returns the ANSI color code for a lift value.
func liftColor(lift float64) string {
	switch {
	case lift > 1:
		return colorGreen
	case lift < 1:
		return colorRed
	default:
		return colorGray
	}
}

func describeLift(lift float64) string {
	switch {
	case lift > 1:
		return fmt.Sprintf("%.2fx more likely together than if independent", lift)
	case lift < 1:
		return "less likely together than if independent"
	default:
		return "independent"
	}
}

// formatRelativeTime converts a timestamp to relative time (e.g., "2 days ago").
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return plural(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return plural(int(diff.Hours()), "hour")
	case diff < 7*24*time.Hour:
		return plural(int(diff.Hours()/24), "day")
	case diff < 30*24*time.Hour:
		return plural(int(diff.Hours()/24/7), "week")
	case diff < 365*24*time.Hour:
		return plural(int(diff.Hours()/24/30), "month")
	default:
		return plural(int(diff.Hours()/24/365), "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// truncate truncates a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
