package app

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/basketprune/internal/output"
	"github.com/blackwell-systems/basketprune/internal/store"
)

var (
	datasetsShowTop int

	datasetsCmd = &cobra.Command{
		Use:     "datasets",
		Aliases: []string{"ls"},
		Short:   "List imported datasets",
		Long: `List the datasets in the local library with their size, input layout and
import time. Use 'datasets show' for per-item counts and 'datasets rm' to
delete one.`,
		Example: `  basketprune datasets
  basketprune datasets show store-march --top 20
  basketprune datasets rm store-march`,
		Args: cobra.NoArgs,
		RunE: runDatasets,
	}

	datasetsShowCmd = &cobra.Command{
		Use:   "show <name>",
		Short: "Show item frequencies of a dataset",
		Args:  cobra.ExactArgs(1),
		RunE:  runDatasetsShow,
	}

	datasetsRmCmd = &cobra.Command{
		Use:     "rm <name>",
		Aliases: []string{"remove"},
		Short:   "Delete an imported dataset",
		Args:    cobra.ExactArgs(1),
		RunE:    runDatasetsRm,
	}
)

func init() {
	datasetsShowCmd.Flags().IntVar(&datasetsShowTop, "top", 0, "show only the N most frequent items (0 for all)")

	datasetsCmd.AddCommand(datasetsShowCmd)
	datasetsCmd.AddCommand(datasetsRmCmd)
	RootCmd.AddCommand(datasetsCmd)
}

func runDatasets(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	datasets, err := st.ListDatasets()
	if err != nil {
		return err
	}
	fmt.Print(output.RenderDatasetTable(datasets))
	return nil
}

func runDatasetsShow(cmd *cobra.Command, args []string) error {
	if datasetsShowTop < 0 {
		return fmt.Errorf("invalid top: %d (must be non-negative)", datasetsShowTop)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ds, err := st.GetDataset(args[0])
	if err != nil {
		return notFoundHint(args[0], err)
	}
	counts, err := st.ItemCounts(ds.Name)
	if err != nil {
		return err
	}
	if datasetsShowTop > 0 && len(counts) > datasetsShowTop {
		counts = counts[:datasetsShowTop]
	}

	fmt.Printf("Dataset: %s\n", ds.Name)
	fmt.Printf("Source:  %s (%s)\n", ds.Source, ds.Format)
	fmt.Printf("Size:    %d transactions, %d items\n\n", ds.Transactions, ds.Items)
	fmt.Print(output.RenderItemCounts(counts, ds.Transactions))
	return nil
}

func runDatasetsRm(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.DeleteDataset(args[0]); err != nil {
		return notFoundHint(args[0], err)
	}
	fmt.Printf("✓ Removed %s\n", args[0])
	return nil
}

func notFoundHint(name string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("dataset %q not found\nRun 'basketprune datasets' to list imported datasets", name)
	}
	return err
}
