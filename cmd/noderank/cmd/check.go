package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/noderank/noderank"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Probe every node in the pool and print the ranked survivors",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	fileCfg, err := noderank.LoadConfigFromFile(getConfigPath())
	if err != nil {
		return err
	}
	if err := fileCfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	verbosef("Loaded %d nodes from %s", len(fileCfg.Nodes), getConfigPath())

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	registry := noderank.NewRegistry()
	opts := []noderank.Option{}

	if url := getNATSURL(); url != "" {
		nc, err := nats.Connect(url)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer nc.Close()
		opts = append(opts, noderank.WithPublisher(noderank.NewPublisher(nc, fileCfg.Pool, logger)))
	}

	checker, err := noderank.NewChecker(fileCfg.ToCheckerConfig(logger), registry, opts...)
	if err != nil {
		return err
	}

	report, err := checker.CheckAll(context.Background(), fileCfg.Nodes)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tNODE\tADDRESS\tLATENCY\tAVG\tSCORE")
	for i, sn := range report.Healthy {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.1fms\t%.1fms\t%.0f\n",
			i+1, sn.ID, sn.Address, sn.LatencyMs, sn.AverageLatencyMs, sn.Score)
	}
	w.Flush()

	fmt.Println()
	fmt.Printf("Checked: %d  Healthy: %d  Failed: %d  Health rate: %s\n",
		report.Stats.TotalChecked, report.Stats.Succeeded, report.Stats.Failed,
		report.Stats.HealthRate())

	if best, ok := registry.BestKnownNode(); ok {
		fmt.Printf("Best node: %s (%s)\n", best.ID, best.Address)
	}
	return nil
}
