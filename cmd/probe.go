package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// probeCmd checks connectivity to the target store and lists what it serves.
var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check target store connectivity",
	Long: `Probe the configured target store: verify credentials, list the available
network views and the extensible attribute definitions.`,
	RunE: runProbe,
}

func init() {
	RootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, l, err := setup()
	if err != nil {
		return err
	}

	client, err := targetClient(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.TestConnection(ctx); err != nil {
		return fmt.Errorf("target store probe failed: %w", err)
	}
	l.Info("target store reachable", zap.String("host", cfg.Target.Host))

	views, err := client.GetNetworkViews(ctx)
	if err != nil {
		return fmt.Errorf("failed to list network views: %w", err)
	}
	fmt.Printf("Network views (%d):\n", len(views))
	for _, view := range views {
		fmt.Printf("  %s\n", view.Name)
	}

	defs, err := client.GetExtensibleAttributes(ctx)
	if err != nil {
		return fmt.Errorf("failed to list attribute definitions: %w", err)
	}
	fmt.Printf("Extensible attributes (%d):\n", len(defs))
	for _, def := range defs {
		fmt.Printf("  %s (%s)\n", def.Name, def.Type)
	}

	return nil
}
