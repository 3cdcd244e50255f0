package main

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/quakecore/imdb-cli/internal/nearest"
	"github.com/quakecore/imdb-cli/internal/store"
)

var nearestCmd = &cobra.Command{
	Use:   "nearest DB_FILE LON LAT",
	Short: "Find the registered station closest to a point",
	Long: `Computes the haversine distance from (LON, LAT) to every registered
station and prints the closest one. Negative coordinates must follow a
"--" separator so they are not parsed as flags.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		lon, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return eris.Wrap(err, "parse longitude")
		}
		lat, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return eris.Wrap(err, "parse latitude")
		}

		st, err := store.Open(args[0])
		if err != nil {
			return err
		}
		defer st.Close()

		match, err := nearest.New(st).Nearest(cmd.Context(), lon, lat)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(match)
	},
}

func init() { rootCmd.AddCommand(nearestCmd) }
