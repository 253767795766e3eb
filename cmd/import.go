package cmd

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"ddi-sync/core/ddi"
	"ddi-sync/feature/inventory"
	"ddi-sync/feature/mapping"
	"ddi-sync/feature/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	importFromStorage bool
	importView        string
)

// importCmd parses an export and reports what a sync would do. It never
// writes to the target store.
var importCmd = &cobra.Command{
	Use:   "import <export>",
	Short: "Parse an inventory export and preview the sync",
	Long: `Parse a cloud network inventory export (CSV or XLSX), suggest attribute
mappings against the target store's attribute definitions and report how the
records reconcile: new, existing, conflicting.

The export argument is a local file path, or an object name in the configured
bucket with --from-storage.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importFromStorage, "from-storage", false, "Load the export from object storage")
	importCmd.Flags().StringVar(&importView, "view", "", "Target network view (defaults to the configured view)")
	RootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, l, err := setup()
	if err != nil {
		return err
	}

	reader, format, err := openExport(ctx, cfg, args[0], importFromStorage)
	if err != nil {
		return err
	}
	defer reader.Close()

	result, err := inventory.NewParser().Parse(reader, format)
	if err != nil {
		var validation *inventory.ValidationError
		if errors.As(err, &validation) {
			fmt.Println("Export failed validation:")
			for _, problem := range validation.Problems {
				fmt.Printf("  - %s\n", problem)
			}
			return errors.New("invalid export")
		}
		return err
	}

	fmt.Printf("Parsed %d records (%d rows skipped)\n", len(result.Records), len(result.Skipped))
	for _, skipped := range result.Skipped {
		l.Warn("skipped row", zap.String("reason", skipped))
	}

	// Mapping suggestions and reconciliation need the target store; without
	// one the parse report above is all we can offer.
	client, err := targetClient(cfg)
	if errors.Is(err, ddi.ErrNotConfigured) {
		l.Warn("target store not configured, skipping mapping and reconciliation")
		return nil
	}
	if err != nil {
		return err
	}
	defer client.Close()

	view := importView
	if view == "" {
		view = cfg.Target.NetworkView
	}

	defs, err := client.GetExtensibleAttributes(ctx)
	if err != nil {
		return fmt.Errorf("failed to list attribute definitions: %w", err)
	}

	targetKeys := make([]string, 0, len(defs))
	for _, def := range defs {
		targetKeys = append(targetKeys, def.Name)
	}

	chosen := printSuggestions(result.Records, targetKeys)
	mapped := mapping.Apply(result.Records, chosen)

	networks, err := client.ListNetworksBatched(ctx, view)
	if err != nil {
		return fmt.Errorf("failed to list networks in view %s: %w", view, err)
	}

	report := reconcile.Reconcile(mapped, networks)
	fmt.Printf("\nReconciliation against view %q:\n", view)
	fmt.Printf("  new:         %d\n", len(report.New))
	fmt.Printf("  existing:    %d\n", len(report.Existing))
	fmt.Printf("  conflicting: %d\n", len(report.Conflicting))

	for _, item := range report.Conflicting {
		for _, conflict := range item.Conflicts {
			fmt.Printf("  conflict %s %s: source=%q target=%q\n",
				item.Record.Subnet, conflict.Attribute,
				conflict.SourceValue, conflict.TargetValue)
		}
	}

	return nil
}

// printSuggestions reports the top mapping candidates per source tag key and
// returns the auto-accepted choices (best candidate at or above threshold).
func printSuggestions(records []inventory.NetworkRecord, targetKeys []string) map[string]string {
	keySet := make(map[string]struct{})
	for _, record := range records {
		for key := range record.Tags {
			keySet[key] = struct{}{}
		}
	}
	sourceKeys := make([]string, 0, len(keySet))
	for key := range keySet {
		sourceKeys = append(sourceKeys, key)
	}
	sort.Strings(sourceKeys)

	suggestions := mapping.NewMapper().Suggestions(sourceKeys, targetKeys)

	chosen := make(map[string]string)
	fmt.Println("\nAttribute mapping suggestions:")
	for _, key := range sourceKeys {
		matches := suggestions[key]
		if len(matches) == 0 {
			fmt.Printf("  %s: no candidate\n", key)
			continue
		}
		chosen[key] = matches[0].TargetKey
		for _, match := range matches {
			fmt.Printf("  %s -> %s (%.2f)\n", key, match.TargetKey, match.Confidence)
		}
	}
	return chosen
}
