package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noderank/noderank"
)

var initCmd = &cobra.Command{
	Use:   "init [pool]",
	Short: "Write a starter pool config file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	pool := "default"
	if len(args) > 0 {
		pool = args[0]
	}

	cfg := noderank.NewDefaultFileConfig(pool, []noderank.Node{
		{ID: "node-1", Address: "https://example.com"},
	})
	if err := noderank.WriteConfigToFile(cfg, getConfigPath()); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", getConfigPath())
	return nil
}
