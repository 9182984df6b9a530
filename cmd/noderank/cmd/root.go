// Package cmd provides the CLI commands for noderank.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	natsURL string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "noderank",
	Short: "Probe and rank a pool of candidate endpoints",
	Long: `noderank probes a list of network endpoints, keeps the ones that
answer quickly and consistently, and prints them ranked by score.

A node survives only if it passes a full stability window (every attempt
healthy) plus one further confirmation probe.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "pool config file (default ./noderank.json)")
	rootCmd.PersistentFlags().StringVarP(&natsURL, "nats", "n", "", "NATS server URL for result publishing")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	// Bind flags to viper
	viper.BindPFlag("nats_url", rootCmd.PersistentFlags().Lookup("nats"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Environment variable bindings
	viper.BindEnv("nats_url", "NATS_URL")
}

// initConfig reads ENV variables if set.
func initConfig() {
	viper.AutomaticEnv()
}

// getConfigPath returns the pool config path from flag or default.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return "noderank.json"
}

// getNATSURL returns the NATS URL from flag or environment.
func getNATSURL() string {
	if natsURL != "" {
		return natsURL
	}
	return viper.GetString("nats_url")
}

func verbosef(format string, args ...any) {
	if verbose || viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
