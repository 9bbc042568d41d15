package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/basketprune/internal/apriori"
	"github.com/blackwell-systems/basketprune/internal/output"
)

var (
	rulesSource     sourceFlags
	rulesThresholds thresholdFlags
	rulesMinLift    float64
	rulesSort       string
	rulesLimit      int
	rulesFormat     string

	rulesCmd = &cobra.Command{
		Use:   "rules",
		Short: "List association rules, sorted and filtered",
		Long: `Mine the selected transactions and list the association rules that meet
--min-confidence, optionally keeping only rules with lift of at least
--min-lift.

Rules are sorted by --sort, highest first: support, confidence, lift,
leverage or conviction. Lift above 1 means the antecedent makes the
consequent more likely than it is on its own.`,
		Example: `  # Ten strongest rules by lift
  basketprune rules --dataset store --sort lift --limit 10

  # Only positively correlated rules
  basketprune rules --sample --min-confidence 0.5 --min-lift 1.2

  # As JSON
  basketprune rules --file baskets.txt --format json`,
		Args: cobra.NoArgs,
		RunE: runRules,
	}
)

func init() {
	rulesSource.register(rulesCmd)
	rulesThresholds.register(rulesCmd)
	rulesCmd.Flags().Float64Var(&rulesMinLift, "min-lift", 0, "minimum lift (0 for no filter)")
	rulesCmd.Flags().StringVar(&rulesSort, "sort", string(apriori.MetricConfidence), "sort metric: support, confidence, lift, leverage, conviction")
	rulesCmd.Flags().IntVar(&rulesLimit, "limit", 0, "show at most N rules (0 for all)")
	rulesCmd.Flags().StringVar(&rulesFormat, "format", "table", "output format: table or json")

	RootCmd.AddCommand(rulesCmd)
}

func runRules(cmd *cobra.Command, args []string) error {
	if err := checkOutputFormat(rulesFormat); err != nil {
		return err
	}
	metric, err := apriori.ParseMetric(rulesSort)
	if err != nil {
		return err
	}
	if rulesLimit < 0 {
		return fmt.Errorf("invalid limit: %d (must be non-negative)", rulesLimit)
	}
	if rulesMinLift < 0 {
		return fmt.Errorf("invalid min-lift: %g (must be non-negative)", rulesMinLift)
	}

	name, ds, err := rulesSource.load("")
	if err != nil {
		return err
	}

	res, err := runMining(cmd.Context(), ds, rulesThresholds.params(cmd), rulesFormat == "table")
	if err != nil {
		return err
	}

	rules := res.Rules
	if rulesMinLift > 0 {
		rules = apriori.FilterRules(rules, apriori.MetricLift, rulesMinLift)
	}
	apriori.SortRules(rules, metric)
	if rulesLimit > 0 && len(rules) > rulesLimit {
		rules = rules[:rulesLimit]
	}

	if rulesFormat == "json" {
		rep := res.Report(name)
		rep.Rules = output.NewRulesJSON(rules)
		return output.RenderJSON(os.Stdout, rep)
	}

	if len(rules) == 0 {
		fmt.Println(apriori.NoRulesMessage)
		return nil
	}
	fmt.Printf("Association Rules for %s (Confidence ≥ %g, sorted by %s)\n",
		name, res.Params.MinConfidence, metric)
	fmt.Print(output.RenderRuleTable(rules))
	fmt.Printf("\n%d of %d rules shown\n", len(rules), len(res.Rules))
	return nil
}
