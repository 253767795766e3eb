package sync

import (
	"context"

	"ddi-sync/core/jobs"
	"ddi-sync/feature/inventory"
)

// Job adapts an orchestrator run to the job manager's Runner interface.
type Job struct {
	orchestrator *Orchestrator
	view         string
	records      []inventory.NetworkRecord
	bulk         bool
}

// NewJob builds a runnable apply job for one network view. With bulk set the
// records go through the batch-create endpoint instead of the per-item loop.
func NewJob(orchestrator *Orchestrator, view string, records []inventory.NetworkRecord, bulk bool) *Job {
	return &Job{
		orchestrator: orchestrator,
		view:         view,
		records:      records,
		bulk:         bulk,
	}
}

func (j *Job) Name() string {
	if j.bulk {
		return "bulk-create"
	}
	return "apply"
}

func (j *Job) View() string {
	return j.view
}

func (j *Job) Run(ctx context.Context, report func(jobs.Progress)) (jobs.Outcome, error) {
	if j.bulk {
		return j.orchestrator.ApplyBulk(ctx, j.view, j.records, report)
	}
	return j.orchestrator.Apply(ctx, j.view, j.records, report)
}
