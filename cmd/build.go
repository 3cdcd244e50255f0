package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quakecore/imdb-cli/internal/ingest"
	"github.com/quakecore/imdb-cli/internal/observability"
	"github.com/quakecore/imdb-cli/internal/query"
	"github.com/quakecore/imdb-cli/internal/store"
)

var buildCmd = &cobra.Command{
	Use:   "build RUNS_DIR STATION_FILE DB_FILE",
	Short: "Build the IM database from per-simulation CSV files",
	Long: `Discovers IM CSV files under RUNS_DIR (one per simulation, laid out as
<fault>/IM_calc/<realisation>/<realisation>.csv), keeps the stations listed
in STATION_FILE, and writes everything into a fresh SQLite store at DB_FILE.
An existing store at DB_FILE is replaced, not updated.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		nproc, _ := cmd.Flags().GetInt("nproc")
		if nproc == 0 {
			nproc = cfg.Build.NProc
		}
		fillCache, _ := cmd.Flags().GetBool("cache")
		metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
		if metricsAddr == "" {
			metricsAddr = cfg.Build.MetricsAddr
		}

		metrics := observability.NewMetrics()
		if metricsAddr != "" {
			observability.Serve(ctx, metricsAddr)
		}

		res, err := ingest.Build(ctx, ingest.Options{
			RunsDir:     args[0],
			StationFile: args[1],
			DBFile:      args[2],
			NProc:       nproc,
			Metrics:     metrics,
		})
		if err != nil {
			return err
		}

		zap.L().Info("build complete",
			zap.String("build_id", res.BuildID),
			zap.Int("files", res.Files),
			zap.Int("committed", res.Committed),
			zap.Int("stations", res.Stations),
			zap.Int("rows", res.Rows))

		if !fillCache {
			return nil
		}

		st, err := store.Open(args[2])
		if err != nil {
			return err
		}
		defer st.Close()
		return query.New(st, metrics).FillCache(ctx, cfg.Query.NProc)
	},
}

func init() {
	buildCmd.Flags().Int("nproc", 0, "parse worker count (default from config, minimum 1)")
	buildCmd.Flags().Bool("cache", false, "pre-warm every station's cache entry after the build")
	buildCmd.Flags().String("metrics-addr", "", "expose Prometheus metrics on this address during the build")
	rootCmd.AddCommand(buildCmd)
}
