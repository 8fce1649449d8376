package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file.csv|file.xlsx>",
	Short: "Import a lead table from a CSV or XLSX file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		outcome, err := env.Pipeline.ImportFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("imported %d rows (%d stored, %d skipped) import_id=%s\n",
			outcome.ImportedCount, outcome.StoredCount, outcome.SkippedCount, outcome.ImportID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
