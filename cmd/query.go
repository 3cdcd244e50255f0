package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/quakecore/imdb-cli/internal/query"
	"github.com/quakecore/imdb-cli/internal/store"
)

var queryCmd = &cobra.Command{
	Use:   "query DB_FILE STATION",
	Short: "Print the measure-by-simulation table for one station",
	Long: `Prints every IM value recorded at STATION across all simulations as CSV,
one row per simulation. The first query for a station is memoized next to
the database; later queries are served from the cache entry.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(args[0])
		if err != nil {
			return err
		}
		defer st.Close()

		im, _ := cmd.Flags().GetString("im")
		nproc, _ := cmd.Flags().GetInt("nproc")
		if nproc == 0 {
			nproc = cfg.Query.NProc
		}

		table, err := query.New(st, nil).StationIMs(cmd.Context(), args[1], im, nproc)
		if err != nil {
			return err
		}
		return table.WriteCSV(os.Stdout)
	},
}

func init() {
	queryCmd.Flags().String("im", "", "restrict the output to one measure")
	queryCmd.Flags().Int("nproc", 0, "parallel reads (default one per measure)")
	rootCmd.AddCommand(queryCmd)
}
