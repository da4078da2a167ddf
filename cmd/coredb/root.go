// Package main implements the coredb CLI: a thin cobra front end over
// the storage engine, mainly useful for driving and inspecting a
// single data file by hand.
package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"CoreStore/internal/config"
	"CoreStore/storageengine"
	"CoreStore/storageengine/bptree"
)

var (
	dbName     string
	homeFlag   string
	configFlag string
	indexFlag  string
	eng        *storageengine.Engine
)

var rootCmd = &cobra.Command{
	Use:   "coredb <db-name>",
	Short: "coredb - buffer pool and B+-tree index playground",
	Args:  cobra.ExactArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dbName = args[0]
		cfg, err := config.Load(homeFlag, configFlag)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		eng, err = storageengine.Open(dbName, cfg, os.Stderr)
		if err != nil {
			return fmt.Errorf("open engine: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if eng != nil {
			return eng.Close()
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&homeFlag, "home", "", "engine home directory (default $CORESTORE_HOME or ~/.local/share/corestore)")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "path to config.yaml (default <home>/config.yaml)")
	rootCmd.AddCommand(putCmd, getCmd, statsCmd, inspectCmd)
}

// openIndex opens the default index used by the put/get/inspect
// commands: unique byte-string keys ordered by bytes.Compare.
func openIndex(name string) (*bptree.Tree, error) {
	return eng.Index(name, 64, 64, bytes.Compare)
}
