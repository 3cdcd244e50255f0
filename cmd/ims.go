package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/quakecore/imdb-cli/internal/model"
	"github.com/quakecore/imdb-cli/internal/store"
)

var imsCmd = &cobra.Command{
	Use:   "ims DB_FILE",
	Short: "List the measures available in a database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(args[0])
		if err != nil {
			return err
		}
		defer st.Close()

		format, _ := cmd.Flags().GetString("format")
		if format != "imdb" && format != "file" {
			return eris.Errorf("unknown format %q, want imdb or file", format)
		}

		ims, err := st.Measures(cmd.Context())
		if err != nil {
			return err
		}
		for _, im := range ims {
			if format == "file" {
				im = model.MeasureFileName(im)
			}
			fmt.Println(im)
		}
		return nil
	},
}

func init() {
	imsCmd.Flags().String("format", "imdb", "output format: imdb (as stored) or file (filename-safe)")
	rootCmd.AddCommand(imsCmd)
}
