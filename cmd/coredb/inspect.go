package main

import (
	"os"

	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Dump the index's page structure, breadth-first, for debugging",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := openIndex(indexFlag)
		if err != nil {
			return err
		}
		return tree.InspectTo(os.Stdout)
	},
}

func init() {
	inspectCmd.Flags().StringVar(&indexFlag, "index", "default", "index name")
}
