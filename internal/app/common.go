package app

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/basketprune/internal/apriori"
	"github.com/blackwell-systems/basketprune/internal/config"
	"github.com/blackwell-systems/basketprune/internal/ingest"
	"github.com/blackwell-systems/basketprune/internal/logging"
	"github.com/blackwell-systems/basketprune/internal/mining"
	"github.com/blackwell-systems/basketprune/internal/sample"
	"github.com/blackwell-systems/basketprune/internal/store"
)

// sampleName labels the built-in grocery data.
const sampleName = "sample"

// sourceFlags selects the transactions a command mines.
type sourceFlags struct {
	dataset string
	file    string
	format  string
	sample  bool
}

func (s *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.dataset, "dataset", "", "imported dataset to mine")
	cmd.Flags().StringVar(&s.file, "file", "", "transaction file to mine (CSV or JSON)")
	cmd.Flags().StringVar(&s.format, "input-format", "auto", "input layout for --file: auto, matrix, basket or json")
	cmd.Flags().BoolVar(&s.sample, "sample", false, "mine the built-in grocery sample")
}

func (s *sourceFlags) count() int {
	n := 0
	for _, set := range []bool{s.dataset != "", s.file != "", s.sample} {
		if set {
			n++
		}
	}
	return n
}

// selected reports whether any source flag was given.
func (s *sourceFlags) selected() bool {
	return s.count() > 0
}

// load returns the selected dataset and its display name. With nothing
// selected it falls back to fallback, an imported dataset name, if set.
func (s *sourceFlags) load(fallback string) (string, *apriori.Dataset, error) {
	if s.count() > 1 {
		return "", nil, fmt.Errorf("--dataset, --file and --sample are mutually exclusive")
	}

	switch {
	case s.sample:
		ds, err := loadSample()
		return sampleName, ds, err
	case s.file != "":
		ds, err := loadFile(s.file, s.format)
		return filepath.Base(s.file), ds, err
	case s.dataset != "":
		ds, err := loadStored(s.dataset)
		return s.dataset, ds, err
	case fallback != "":
		ds, err := loadStored(fallback)
		return fallback, ds, err
	}
	return "", nil, fmt.Errorf("no transactions selected: use --dataset, --file or --sample")
}

func loadSample() (*apriori.Dataset, error) {
	items, rows := sample.Groceries()
	return apriori.NewDataset(items, rows)
}

// loadFile reads a transaction file and applies the item aliases.
func loadFile(path, format string) (*apriori.Dataset, error) {
	data, err := readTransactions(path, format)
	if err != nil {
		return nil, err
	}
	return data.Dataset()
}

func readTransactions(path, format string) (*ingest.Data, error) {
	f, err := ingest.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	data, err := ingest.ReadFile(path, f)
	if err != nil {
		return nil, err
	}

	aliases, err := loadAliases()
	if err != nil {
		return nil, err
	}
	if aliases.Len() > 0 {
		data = data.Rename(aliases.Resolve)
	}
	return data, nil
}

// loadAliases reads the alias file from the config directory. A missing
// directory yields no aliases.
func loadAliases() (*config.ItemAliases, error) {
	dir, err := config.Dir()
	if err != nil {
		logging.Debug().Err(err).Msg("no config directory, skipping item aliases")
		return &config.ItemAliases{}, nil
	}
	return config.LoadAliases(dir)
}

func loadStored(name string) (*apriori.Dataset, error) {
	st, err := openStore()
	if err != nil {
		return nil, err
	}
	defer st.Close()

	baskets, err := st.LoadBaskets(name)
	if err != nil {
		return nil, notFoundHint(name, err)
	}
	return apriori.NewDatasetFromBaskets(baskets)
}

// openStore opens the database without creating the schema.
func openStore() (*store.Store, error) {
	path, err := getDBPath()
	if err != nil {
		return nil, err
	}
	return store.New(path)
}

// thresholdFlags are the mining parameters shared by mine, rules and watch.
// Unset flags take the configured values.
type thresholdFlags struct {
	minSupport    float64
	minConfidence float64
	maxLen        int
	workers       int
}

func (t *thresholdFlags) register(cmd *cobra.Command) {
	d := config.Default().Mining
	cmd.Flags().Float64Var(&t.minSupport, "min-support", d.MinSupport, "minimum support (0-1]")
	cmd.Flags().Float64Var(&t.minConfidence, "min-confidence", d.MinConfidence, "minimum rule confidence (0-1]")
	cmd.Flags().IntVar(&t.maxLen, "max-len", d.MaxLen, "largest itemset size (0 for no limit)")
	cmd.Flags().IntVar(&t.workers, "workers", d.Workers, "counting goroutines per level (0 for one per CPU)")
}

func (t *thresholdFlags) params(cmd *cobra.Command) mining.Params {
	m := currentConfig().Mining
	p := mining.Params{
		MinSupport:    m.MinSupport,
		MinConfidence: m.MinConfidence,
		MaxLen:        m.MaxLen,
		Workers:       m.Workers,
	}
	flags := cmd.Flags()
	if flags.Changed("min-support") {
		p.MinSupport = t.minSupport
	}
	if flags.Changed("min-confidence") {
		p.MinConfidence = t.minConfidence
	}
	if flags.Changed("max-len") {
		p.MaxLen = t.maxLen
	}
	if flags.Changed("workers") {
		p.Workers = t.workers
	}
	return p
}

// parseItems splits a comma-separated item list.
func parseItems(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// checkOutputFormat validates a --format value.
func checkOutputFormat(format string) error {
	switch format {
	case "table", "json":
		return nil
	}
	return fmt.Errorf("invalid format: %s (must be table or json)", format)
}
