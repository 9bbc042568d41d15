package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/basketprune/internal/apriori"
	"github.com/blackwell-systems/basketprune/internal/mining"
	"github.com/blackwell-systems/basketprune/internal/output"
)

var (
	mineSource     sourceFlags
	mineThresholds thresholdFlags
	mineFormat     string
	mineNoRules    bool
	mineLevels     bool

	mineCmd = &cobra.Command{
		Use:   "mine",
		Short: "Find frequent itemsets and association rules",
		Long: `Find every itemset whose support (the share of transactions containing all
of its items) is at least --min-support, then derive every rule A -> B with
confidence at least --min-confidence from them.

Itemsets are listed by size, then alphabetically. Rules are listed in the
order they are derived. Use 'basketprune rules' to sort and filter rules.

Thresholds not given on the command line come from the configuration
(mining.min_support, mining.min_confidence).`,
		Example: `  # Mine the built-in grocery sample
  basketprune mine --sample

  # Itemsets only, at most pairs
  basketprune mine --dataset store --min-support 0.05 --max-len 2 --no-rules

  # Machine-readable output with level statistics
  basketprune mine --file baskets.txt --format json`,
		Args: cobra.NoArgs,
		RunE: runMine,
	}
)

func init() {
	mineSource.register(mineCmd)
	mineThresholds.register(mineCmd)
	mineCmd.Flags().StringVar(&mineFormat, "format", "table", "output format: table or json")
	mineCmd.Flags().BoolVar(&mineNoRules, "no-rules", false, "skip rule generation")
	mineCmd.Flags().BoolVar(&mineLevels, "levels", false, "show per-level candidate statistics")

	RootCmd.AddCommand(mineCmd)
}

func runMine(cmd *cobra.Command, args []string) error {
	if err := checkOutputFormat(mineFormat); err != nil {
		return err
	}

	name, ds, err := mineSource.load("")
	if err != nil {
		return err
	}

	p := mineThresholds.params(cmd)
	p.SkipRules = mineNoRules
	res, err := runMining(cmd.Context(), ds, p, mineFormat == "table")
	if err != nil {
		return err
	}

	if mineFormat == "json" {
		return output.RenderJSON(os.Stdout, res.Report(name))
	}

	fmt.Printf("Dataset: %s (%d transactions, %d items)\n\n", name, ds.Len(), ds.NumItems())
	if mineLevels {
		fmt.Print(output.RenderLevelSummary(res.Levels))
		fmt.Println()
	}

	fmt.Printf("Frequent Itemsets (Support ≥ %g)\n", p.MinSupport)
	fmt.Print(output.RenderItemsetTable(res.Itemsets.All()))

	if !p.SkipRules {
		fmt.Printf("\nAssociation Rules (Confidence ≥ %g)\n", p.MinConfidence)
		if len(res.Rules) == 0 {
			fmt.Println(apriori.NoRulesMessage)
		} else {
			fmt.Print(output.RenderRuleTable(res.Rules))
		}
	}
	return nil
}

// runMining wraps mining.Run in a spinner that follows the level progress.
func runMining(ctx context.Context, ds *apriori.Dataset, p mining.Params, showProgress bool) (*mining.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !showProgress {
		return mining.Run(ctx, ds, p)
	}

	spinner := output.NewSpinner("Mining frequent itemsets")
	p.OnLevel = func(s apriori.LevelStats) {
		spinner.UpdateMessage(fmt.Sprintf("Mining frequent itemsets (level %d: %d frequent)", s.Level, s.Frequent))
	}
	spinner.Start()
	res, err := mining.Run(ctx, ds, p)
	if err != nil {
		spinner.Stop()
		return nil, err
	}
	found := fmt.Sprintf("%d itemsets", res.Itemsets.Len())
	if !p.SkipRules {
		found += fmt.Sprintf(" and %d rules", len(res.Rules))
	}
	spinner.StopWithMessage(fmt.Sprintf("✓ Found %s in %s", found, res.Duration.Round(time.Millisecond)))
	return res, nil
}
