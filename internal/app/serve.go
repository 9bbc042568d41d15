package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/basketprune/internal/server"
)

var (
	serveSource     sourceFlags
	serveThresholds thresholdFlags
	serveAddr       string
	serveRateLimit  int

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the mining page and JSON API",
		Long: `Start a web server over one set of transactions.

Routes:
  GET  /          form for the minimum support
  POST /          frequent itemsets and rules for the submitted support
  POST /api/mine  JSON mining report
  GET  /healthz   dataset summary
  GET  /metrics   Prometheus metrics

The page uses the configured minimum confidence. With no source flag the
server uses server.dataset from the configuration, or the built-in sample.`,
		Example: `  # Sample data on the default address
  basketprune serve

  # An imported dataset on all interfaces
  basketprune serve --dataset store --addr 0.0.0.0:8080

  # Query the API
  curl -X POST localhost:5000/api/mine -d '{"min_support":0.3}'`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
)

func init() {
	serveSource.register(serveCmd)
	serveThresholds.register(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: server.addr, 127.0.0.1:5000)")
	serveCmd.Flags().IntVar(&serveRateLimit, "rate-limit", -1, "requests per minute per client IP, 0 disables (default: server.rate_limit)")

	RootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	sc := currentConfig().Server

	if !serveSource.selected() && sc.Dataset == "" {
		serveSource.sample = true
	}
	name, ds, err := serveSource.load(sc.Dataset)
	if err != nil {
		return err
	}
	if name == sampleName {
		// The page shows its default title for the sample.
		name = ""
	}

	p := serveThresholds.params(cmd)
	scfg := server.Config{
		Addr:          sc.Addr,
		RateLimit:     sc.RateLimit,
		MinSupport:    p.MinSupport,
		MinConfidence: p.MinConfidence,
		MaxLen:        p.MaxLen,
		Workers:       p.Workers,
	}
	if serveAddr != "" {
		scfg.Addr = serveAddr
	}
	if serveRateLimit >= 0 {
		scfg.RateLimit = serveRateLimit
	}

	srv, err := server.New(scfg, name, ds)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	fmt.Printf("Serving on http://%s (press Ctrl+C to stop)\n", scfg.Addr)
	return srv.ListenAndServe(ctx)
}
