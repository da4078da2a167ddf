package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"CoreStore/storageengine/page"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print buffer pool and data directory statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := eng.Stats()
		poolBytes := uint64(s.PoolSize) * uint64(page.Size)

		fmt.Printf("data dir:    %s\n", s.DataDir)
		fmt.Printf("pool frames: %s (%s)\n", humanize.Comma(int64(s.PoolSize)), humanize.Bytes(poolBytes))
		fmt.Printf("open trees:  %s\n", humanize.Comma(int64(s.NumTrees)))
		return nil
	},
}
