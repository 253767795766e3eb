package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ddi-sync/core/database"
	"ddi-sync/core/ddi"
	"ddi-sync/core/jobs"
	"ddi-sync/feature/inventory"
	"ddi-sync/feature/mapping"
	syncfeature "ddi-sync/feature/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	syncFromStorage bool
	syncView        string
	syncBulk        bool
)

// syncCmd submits an apply job for an export and streams its progress.
var syncCmd = &cobra.Command{
	Use:   "sync <export>",
	Short: "Apply an inventory export to the target store",
	Long: `Parse a cloud network inventory export, map its tags onto the target
store's extensible attributes and apply every record: existing networks are
updated, missing ones are created with a generated comment.

With --bulk all records go through the batch-create endpoint instead of the
per-item loop. Use it for large exports of networks known to be new.`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncFromStorage, "from-storage", false, "Load the export from object storage")
	syncCmd.Flags().StringVar(&syncView, "view", "", "Target network view (defaults to the configured view)")
	syncCmd.Flags().BoolVar(&syncBulk, "bulk", false, "Create all records through the batch endpoint")
	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, l, err := setup()
	if err != nil {
		return err
	}

	reader, format, err := openExport(ctx, cfg, args[0], syncFromStorage)
	if err != nil {
		return err
	}
	defer reader.Close()

	result, err := inventory.NewParser().Parse(reader, format)
	if err != nil {
		return err
	}
	for _, skipped := range result.Skipped {
		l.Warn("skipped row", zap.String("reason", skipped))
	}

	// An unconfigured target still submits the job; it fails as a whole
	// without touching any item, matching the status a caller would see
	// from any other submission path.
	var client ddi.Client
	client, err = ddi.NewClient(cfg.Target)
	if err != nil && !errors.Is(err, ddi.ErrNotConfigured) {
		return fmt.Errorf("failed to build target store client: %w", err)
	}
	if client != nil {
		defer client.Close()
	}

	records := result.Records
	if client != nil {
		if records, err = mapRecords(ctx, client, records); err != nil {
			return err
		}
	}

	view := syncView
	if view == "" {
		view = cfg.Target.NetworkView
	}

	var store jobs.Store
	if cfg.Database.Enabled {
		db, err := database.Connect(cfg.Database)
		if err != nil {
			l.Warn("job persistence unavailable", zap.Error(err))
		} else if err := jobs.Migrate(db); err != nil {
			l.Warn("job persistence unavailable", zap.Error(err))
		} else {
			store = jobs.NewStore(db)
		}
	}

	manager := jobs.NewManager(cfg.Jobs, store, l)
	defer manager.Close()

	orchestrator := syncfeature.NewOrchestrator(client, cfg.Sync, l)
	id, err := manager.Submit(syncfeature.NewJob(orchestrator, view, records, syncBulk))
	if err != nil {
		return fmt.Errorf("failed to submit sync job: %w", err)
	}

	job, err := watch(ctx, manager, id)
	if err != nil {
		return err
	}

	fmt.Printf("Job %s %s: created=%d updated=%d failed=%d\n",
		job.ID, job.State, job.Outcome.Created, job.Outcome.Updated, job.Outcome.Failed)
	for _, message := range job.Outcome.Errors {
		fmt.Printf("  %s\n", message)
	}

	if job.State == jobs.StateFailed {
		return fmt.Errorf("sync job failed: %s", job.Error)
	}
	return nil
}

// mapRecords applies the best attribute-mapping suggestion per tag key
// against the store's attribute definitions.
func mapRecords(ctx context.Context, client ddi.Client, records []inventory.NetworkRecord) ([]inventory.NetworkRecord, error) {
	defs, err := client.GetExtensibleAttributes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list attribute definitions: %w", err)
	}

	targetKeys := make([]string, 0, len(defs))
	for _, def := range defs {
		targetKeys = append(targetKeys, def.Name)
	}

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

	chosen := make(map[string]string)
	for key, matches := range mapping.NewMapper().Suggestions(sourceKeys, targetKeys) {
		if len(matches) > 0 {
			chosen[key] = matches[0].TargetKey
		}
	}

	return mapping.Apply(records, chosen), nil
}

// watch polls the job until it reaches a terminal state, printing progress
// transitions as they happen.
func watch(ctx context.Context, manager *jobs.Manager, id string) (*jobs.SyncJob, error) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	var last jobs.Progress
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		job, err := manager.Status(ctx, id)
		if err != nil {
			return nil, err
		}
		if job.Progress != last && job.Progress.Message != "" {
			fmt.Printf("  [%d/%d] %s\n", job.Progress.Current, job.Progress.Total, job.Progress.Message)
			last = job.Progress
		}
		if job.State.Terminal() {
			return job, nil
		}
	}
}
