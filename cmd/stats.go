package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	statsStart string
	statsEnd   string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the sentiment distribution, optionally windowed by creation date",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		dist, err := env.Stats.Aggregate(cmd.Context(), statsStart, statsEnd)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(dist, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsStart, "start", "", "window start date (YYYY-MM-DD)")
	statsCmd.Flags().StringVar(&statsEnd, "end", "", "window end date (YYYY-MM-DD)")
	rootCmd.AddCommand(statsCmd)
}
