package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quakecore/imdb-cli/internal/query"
	"github.com/quakecore/imdb-cli/internal/store"
)

var cacheCmd = &cobra.Command{
	Use:   "cache DB_FILE",
	Short: "Pre-warm the cache entry of every station",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := store.Open(args[0])
		if err != nil {
			return err
		}
		defer st.Close()

		nproc, _ := cmd.Flags().GetInt("nproc")
		if nproc == 0 {
			nproc = cfg.Query.NProc
		}
		return query.New(st, nil).FillCache(ctx, nproc)
	},
}

func init() {
	cacheCmd.Flags().Int("nproc", 0, "parallel reads per station (default one per measure)")
	rootCmd.AddCommand(cacheCmd)
}
