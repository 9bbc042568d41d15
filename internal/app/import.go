package app

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/basketprune/internal/ingest"
	"github.com/blackwell-systems/basketprune/internal/logging"
	"github.com/blackwell-systems/basketprune/internal/metrics"
	"github.com/blackwell-systems/basketprune/internal/output"
	"github.com/blackwell-systems/basketprune/internal/store"
)

var (
	importName   string
	importFormat string

	importCmd = &cobra.Command{
		Use:   "import <file>...",
		Short: "Import transaction files into the dataset library",
		Long: `Read one or more transaction files and store each as a named dataset.

Supported layouts:
  • matrix (.csv): a header of item names, then one 0/1 row per transaction.
    A leading tid, id, transaction or transaction_id column is ignored.
  • basket (.txt, .basket, .baskets): one comma-separated list of items per line
  • json (.json): {"items": [...], "rows": [[...]]} or {"transactions": [[...]]}

Item labels are mapped through ~/.config/basketprune/aliases before storing.
Importing under an existing name replaces that dataset.`,
		Example: `  # Import a basket file as dataset "baskets"
  basketprune import baskets.txt

  # Import under a chosen name
  basketprune import march.csv --name store-march

  # Force the layout
  basketprune import export.dat --format basket`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}
)

func init() {
	importCmd.Flags().StringVar(&importName, "name", "", "dataset name (default: file name without extension; single file only)")
	importCmd.Flags().StringVar(&importFormat, "format", "auto", "input layout: auto, matrix, basket or json")

	RootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if importName != "" && len(args) > 1 {
		return fmt.Errorf("--name can only be used with a single file")
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.CreateSchema(); err != nil {
		return fmt.Errorf("failed to create database schema: %w", err)
	}

	progress := output.NewProgress(len(args), "Importing")
	var imported []*store.Dataset
	for _, path := range args {
		progress.SetDescription("Importing " + filepath.Base(path))
		ds, err := importFile(st, path, datasetName(path))
		if err != nil {
			progress.Finish()
			return err
		}
		imported = append(imported, ds)
		progress.Increment()
	}
	progress.Finish()

	for _, ds := range imported {
		fmt.Printf("✓ Imported %s (%d transactions, %d items)\n", ds.Name, ds.Transactions, ds.Items)
	}
	return nil
}

func importFile(st *store.Store, path, name string) (*store.Dataset, error) {
	data, err := readTransactions(path, importFormat)
	if err != nil {
		return nil, err
	}
	// Reject anything the miner would reject.
	if _, err := data.Dataset(); err != nil {
		return nil, fmt.Errorf("failed to import %s: %w", path, err)
	}
	return saveDataset(st, path, name, data)
}

// saveDataset stores already validated transactions read from path.
func saveDataset(st *store.Store, path, name string, data *ingest.Data) (*store.Dataset, error) {
	source, err := filepath.Abs(path)
	if err != nil {
		source = path
	}
	ds := &store.Dataset{
		Name:   name,
		Source: source,
		Format: string(data.Format),
	}
	if err := st.InsertDataset(ds, data.AsBaskets()); err != nil {
		return nil, err
	}

	metrics.DatasetsImportedTotal.Inc()
	logging.Info().
		Str("dataset", ds.Name).
		Str("source", ds.Source).
		Int("transactions", ds.Transactions).
		Int("items", ds.Items).
		Msg("dataset imported")
	return ds, nil
}

// datasetName is --name, or the file name without its extension.
func datasetName(path string) string {
	if importName != "" {
		return importName
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
