package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/basketprune/internal/apriori"
	"github.com/blackwell-systems/basketprune/internal/ingest"
	"github.com/blackwell-systems/basketprune/internal/logging"
	"github.com/blackwell-systems/basketprune/internal/output"
	"github.com/blackwell-systems/basketprune/internal/watcher"
)

var (
	watchThresholds  thresholdFlags
	watchInputFormat string
	watchImportAs    string
	watchDebounce    time.Duration
	watchDaemon      bool
	watchDaemonChild bool
	watchPIDFile     string
	watchLogFile     string
	watchStop        bool

	watchCmd = &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-mine a transaction file whenever it changes",
		Long: `Mine a transaction file, then keep watching it and mine it again each time
it is written or replaced. Bursts of writes are coalesced.

With --import, every successful read is also stored in the dataset library
under the given name, so 'serve' and 'rules --dataset' see fresh data.

Watch modes:
  • Foreground (default): Run in current terminal with Ctrl+C to stop
  • Daemon: Run as background process, results go to the log file
  • Stop: Stop a running daemon`,
		Example: `  # Run in foreground (Ctrl+C to stop)
  basketprune watch baskets.txt

  # Keep the library copy current in the background
  basketprune watch baskets.txt --import store --daemon

  # Stop running daemon
  basketprune watch --stop`,
		Args: cobra.MaximumNArgs(1),
		RunE: runWatch,
	}
)

func init() {
	watchThresholds.register(watchCmd)
	watchCmd.Flags().StringVar(&watchInputFormat, "input-format", "auto", "input layout: auto, matrix, basket or json")
	watchCmd.Flags().StringVar(&watchImportAs, "import", "", "also import each version as this dataset")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce, "quiet period before re-mining")
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "run as background daemon")
	watchCmd.Flags().BoolVar(&watchDaemonChild, "daemon-child", false, "internal flag for daemon child process")
	watchCmd.Flags().StringVar(&watchPIDFile, "pid-file", "", "PID file path (default: ~/.basketprune/watch.pid)")
	watchCmd.Flags().StringVar(&watchLogFile, "log-file", "", "log file path (default: ~/.basketprune/watch.log)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "stop running daemon")

	// Hide the internal daemon-child flag from help
	watchCmd.Flags().MarkHidden("daemon-child")

	RootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	// Get default paths if not specified
	if watchPIDFile == "" {
		defaultPID, err := getDefaultPIDFile()
		if err != nil {
			return fmt.Errorf("failed to get default PID file path: %w", err)
		}
		watchPIDFile = defaultPID
	}

	if watchLogFile == "" {
		defaultLog, err := getDefaultLogFile()
		if err != nil {
			return fmt.Errorf("failed to get default log file path: %w", err)
		}
		watchLogFile = defaultLog
	}

	if watchDaemon && watchStop {
		return fmt.Errorf("--daemon and --stop are mutually exclusive")
	}

	// Handle stop command
	if watchStop {
		return stopWatchDaemon()
	}

	if len(args) == 0 {
		return fmt.Errorf("missing file: basketprune watch <file>")
	}
	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", args[0], err)
	}

	if watchDaemon {
		return startWatchDaemon(cmd, path)
	}

	w, err := watcher.New(path, remineHandler(cmd, path), watcher.WithDebounce(watchDebounce))
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Handle daemon child process
	if watchDaemonChild {
		return watcher.RunDaemon(ctx, w, watchPIDFile)
	}

	return runWatchForeground(ctx, w)
}

// remineHandler reads the file, optionally imports it, mines it and prints
// the rules.
func remineHandler(cmd *cobra.Command, path string) watcher.Handler {
	p := watchThresholds.params(cmd)

	return func(ctx context.Context) error {
		data, err := readTransactions(path, watchInputFormat)
		if err != nil {
			return err
		}
		ds, err := data.Dataset()
		if err != nil {
			return err
		}

		if watchImportAs != "" {
			if err := reimport(path, data); err != nil {
				return err
			}
		}

		res, err := runMining(ctx, ds, p, false)
		if err != nil {
			return err
		}

		fmt.Printf("\n[%s] %s: %d transactions, %d itemsets, %d rules\n",
			time.Now().Format("15:04:05"), filepath.Base(path), ds.Len(), res.Itemsets.Len(), len(res.Rules))
		if len(res.Rules) == 0 {
			fmt.Println(apriori.NoRulesMessage)
			return nil
		}
		fmt.Print(output.RenderRuleTable(res.Rules))
		return nil
	}
}

func reimport(path string, data *ingest.Data) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.CreateSchema(); err != nil {
		return fmt.Errorf("failed to create database schema: %w", err)
	}

	_, err = saveDataset(st, path, watchImportAs, data)
	return err
}

func stopWatchDaemon() error {
	// Check if daemon is running
	running, err := watcher.IsDaemonRunning(watchPIDFile)
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}

	if !running {
		fmt.Println("Daemon is not running")
		return nil
	}

	spinner := output.NewSpinner("Stopping daemon")
	spinner.Start()
	if err := watcher.StopDaemon(watchPIDFile); err != nil {
		spinner.Stop()
		return fmt.Errorf("failed to stop daemon: %w", err)
	}
	spinner.StopWithMessage("✓ Daemon stopped")

	return nil
}

func startWatchDaemon(cmd *cobra.Command, path string) error {
	running, err := watcher.IsDaemonRunning(watchPIDFile)
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	if running {
		fmt.Printf("Daemon already running (PID file: %s). Nothing to do.\n", watchPIDFile)
		return nil
	}

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("cannot watch %s: %w", path, err)
	}

	childArgs := daemonChildArgs(cmd, path)

	spinner := output.NewSpinner("Starting daemon")
	spinner.Start()
	if err := watcher.StartDaemon(watchPIDFile, watchLogFile, childArgs); err != nil {
		spinner.Stop()
		return fmt.Errorf("failed to start daemon: %w", err)
	}
	spinner.StopWithMessage("✓ Daemon started")

	fmt.Printf("\nWatching %s\n", path)
	fmt.Printf("  PID file: %s\n", watchPIDFile)
	fmt.Printf("  Log file: %s\n", watchLogFile)
	fmt.Printf("\nTo stop: basketprune watch --stop\n")

	return nil
}

// daemonChildArgs rebuilds the command line for the background process.
func daemonChildArgs(cmd *cobra.Command, path string) []string {
	args := []string{"watch", path, "--daemon-child",
		"--pid-file", watchPIDFile,
		"--input-format", watchInputFormat,
		"--debounce", watchDebounce.String(),
	}
	if watchImportAs != "" {
		args = append(args, "--import", watchImportAs)
	}
	if dbPath != "" {
		args = append(args, "--db", dbPath)
	}
	if configPath != "" {
		args = append(args, "--config", configPath)
	}
	for _, name := range []string{"min-support", "min-confidence", "max-len", "workers"} {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			args = append(args, "--"+name, f.Value.String())
		}
	}
	return args
}

func runWatchForeground(ctx context.Context, w *watcher.Watcher) error {
	fmt.Printf("Watching %s (press Ctrl+C to stop)...\n", w.Path())

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	<-ctx.Done()
	fmt.Println("\nShutting down...")

	if err := w.Stop(); err != nil {
		return fmt.Errorf("failed to stop watcher: %w", err)
	}
	logging.Info().Int("runs", w.Runs()).Msg("watcher stopped")
	fmt.Println("Watch stopped")

	return nil
}
