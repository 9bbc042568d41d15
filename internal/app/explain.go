package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/basketprune/internal/apriori"
	"github.com/blackwell-systems/basketprune/internal/output"
)

var (
	explainSource     sourceFlags
	explainThresholds thresholdFlags

	explainCmd = &cobra.Command{
		Use:   "explain <antecedent> <consequent>",
		Short: "Show the metric breakdown of one rule",
		Long: `Measure a single rule directly against the transactions, whether or not it
meets the mining thresholds, and show how each metric is derived.

Both sides are comma-separated item lists.`,
		Example: `  # Why Beer and Bread predict Cheese
  basketprune explain Beer,Bread Cheese --sample

  # A rule below the default confidence threshold
  basketprune explain Milk Eggs --sample`,
		Args: cobra.ExactArgs(2),
		RunE: runExplain,
	}
)

func init() {
	explainSource.register(explainCmd)
	explainThresholds.register(explainCmd)

	RootCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
	antecedent, consequent := parseItems(args[0]), parseItems(args[1])
	if len(antecedent) == 0 || len(consequent) == 0 {
		return fmt.Errorf("missing items: antecedent and consequent must each name at least one item")
	}

	_, ds, err := explainSource.load("")
	if err != nil {
		return err
	}

	r, err := apriori.EvaluateRule(ds, antecedent, consequent)
	if err != nil {
		return err
	}

	p := explainThresholds.params(cmd)
	fmt.Print(output.RenderRuleDetail(r, ds.Len()))
	fmt.Printf("%-34s %s\n", fmt.Sprintf("Frequent at min_support %g:", p.MinSupport),
		yesNo(r.Support >= p.MinSupport))
	fmt.Printf("%-34s %s\n", fmt.Sprintf("Reported at min_confidence %g:", p.MinConfidence),
		yesNo(r.Support >= p.MinSupport && r.Confidence >= p.MinConfidence))
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
