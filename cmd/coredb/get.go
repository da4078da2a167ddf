package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Look up <key> in the index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := openIndex(indexFlag)
		if err != nil {
			return err
		}
		val, found, err := eng.Get(indexFlag, []byte(args[0]), tree)
		if err != nil {
			return err
		}
		if !found {
			fmt.Printf("key %q not found\n", args[0])
			return nil
		}
		fmt.Println(string(val))
		return nil
	},
}

func init() {
	getCmd.Flags().StringVar(&indexFlag, "index", "default", "index name")
}
