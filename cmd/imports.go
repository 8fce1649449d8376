package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var importsLimit int

var importsCmd = &cobra.Command{
	Use:   "imports",
	Short: "List recent batch imports",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		recs, err := env.Store.ListImports(cmd.Context(), importsLimit)
		if err != nil {
			return err
		}

		if len(recs) == 0 {
			fmt.Println("no imports recorded")
			return nil
		}
		for _, rec := range recs {
			fmt.Printf("%s  %-30s rows=%d stored=%d skipped=%d  %s\n",
				rec.ImportedAt.Format("2006-01-02 15:04:05"), rec.Filename,
				rec.RowCount, rec.StoredCount, rec.SkippedCount, rec.ID)
		}
		return nil
	},
}

func init() {
	importsCmd.Flags().IntVar(&importsLimit, "limit", 20, "maximum imports to list")
	rootCmd.AddCommand(importsCmd)
}
