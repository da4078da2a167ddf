package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var putCmd = &cobra.Command{
	Use:   "put <key> <value>",
	Short: "Insert <key> <value> into the index, failing on a duplicate key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := openIndex(indexFlag)
		if err != nil {
			return err
		}
		ok, err := eng.Put(indexFlag, []byte(args[0]), []byte(args[1]), tree)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Printf("key %q already exists\n", args[0])
			return nil
		}
		fmt.Printf("inserted %q\n", args[0])
		return nil
	},
}

func init() {
	putCmd.Flags().StringVar(&indexFlag, "index", "default", "index name")
}
