package cmd

import (
	"context"
	"fmt"

	"ddi-sync/core/database"
	"ddi-sync/core/jobs"

	"github.com/spf13/cobra"
)

// jobsCmd looks up persisted sync jobs.
var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect persisted sync jobs",
}

var jobsStatusCmd = &cobra.Command{
	Use:   "status <job-id>",
	Short: "Show the stored outcome of a sync job",
	Long: `Show the terminal state of a previously run sync job. Requires job
persistence (database.enabled) to be configured.`,
	Args: cobra.ExactArgs(1),
	RunE: runJobsStatus,
}

func init() {
	jobsCmd.AddCommand(jobsStatusCmd)
	RootCmd.AddCommand(jobsCmd)
}

func runJobsStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, _, err := setup()
	if err != nil {
		return err
	}

	if !cfg.Database.Enabled {
		return fmt.Errorf("job persistence is not enabled")
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to job database: %w", err)
	}

	job, err := jobs.NewStore(db).Get(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Job %s (%s, view %s)\n", job.ID, job.Name, job.View)
	fmt.Printf("  state:    %s\n", job.State)
	fmt.Printf("  progress: %d/%d\n", job.Progress.Current, job.Progress.Total)
	fmt.Printf("  outcome:  created=%d updated=%d failed=%d\n",
		job.Outcome.Created, job.Outcome.Updated, job.Outcome.Failed)
	if job.Error != "" {
		fmt.Printf("  error:    %s\n", job.Error)
	}
	for _, message := range job.Outcome.Errors {
		fmt.Printf("  - %s\n", message)
	}
	return nil
}
