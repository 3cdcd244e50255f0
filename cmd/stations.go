package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/quakecore/imdb-cli/internal/nearest"
	"github.com/quakecore/imdb-cli/internal/store"
)

var stationsCmd = &cobra.Command{
	Use:   "stations DB_FILE",
	Short: "Show station details by name, by id, or all",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(args[0])
		if err != nil {
			return err
		}
		defer st.Close()

		name, _ := cmd.Flags().GetString("name")
		id, _ := cmd.Flags().GetInt64("id")

		stations, err := nearest.New(st).Details(cmd.Context(), name, id)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stations)
	},
}

func init() {
	stationsCmd.Flags().String("name", "", "select one station by name")
	stationsCmd.Flags().Int64("id", 0, "select one station by identity")
	rootCmd.AddCommand(stationsCmd)
}
