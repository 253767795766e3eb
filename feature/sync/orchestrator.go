package sync

import (
	"context"
	"fmt"
	"time"

	"ddi-sync/core/ddi"
	"ddi-sync/core/jobs"
	"ddi-sync/feature/inventory"

	"go.uber.org/zap"
)

// Orchestrator applies reconciled inventory records to the target store.
// Items are applied sequentially in input order with one outstanding call;
// a per-item failure is recorded and the loop moves on.
type Orchestrator struct {
	client ddi.Client
	log    *zap.Logger
	pause  time.Duration
}

// NewOrchestrator builds an orchestrator. The client may be nil when the
// target store is not configured; Apply then fails the whole job without
// touching any item.
func NewOrchestrator(client ddi.Client, cfg Config, log *zap.Logger) *Orchestrator {
	pause := cfg.ItemPauseMillis
	if pause <= 0 {
		pause = 100
	}
	return &Orchestrator{
		client: client,
		log:    log,
		pause:  time.Duration(pause) * time.Millisecond,
	}
}

// Apply pushes each record to the target store: look the subnet up in the
// given view, update the existing network's attributes, or create it with a
// generated comment. Cancellation is observed between items; work done so
// far stays applied.
func (o *Orchestrator) Apply(ctx context.Context, view string, records []inventory.NetworkRecord, report func(jobs.Progress)) (jobs.Outcome, error) {
	if o.client == nil {
		return jobs.Outcome{}, ddi.ErrNotConfigured
	}

	outcome := jobs.Outcome{}
	total := len(records)

	for i, record := range records {
		if err := ctx.Err(); err != nil {
			return outcome, err
		}

		report(jobs.Progress{
			Current: i + 1,
			Total:   total,
			Message: fmt.Sprintf("processing %s", record.Subnet),
		})

		o.applyOne(ctx, view, record, &outcome)

		if i < total-1 {
			if err := sleepCtx(ctx, o.pause); err != nil {
				return outcome, err
			}
		}
	}

	return outcome, nil
}

func (o *Orchestrator) applyOne(ctx context.Context, view string, record inventory.NetworkRecord, outcome *jobs.Outcome) {
	network, err := o.client.GetNetworkBySubnet(ctx, record.Subnet, view)
	if err != nil {
		o.fail(outcome, fmt.Sprintf("failed to look up network %s: %v", record.Subnet, err))
		return
	}

	if network != nil {
		if err := o.client.UpdateNetwork(ctx, network.Ref, "", record.MappedAttrs); err != nil {
			o.fail(outcome, fmt.Sprintf("failed to update network %s: %v", record.Subnet, err))
			return
		}
		outcome.Updated++
		o.log.Debug("network updated", zap.String("subnet", record.Subnet))
		return
	}

	_, err = o.client.CreateNetwork(ctx, record.Subnet, view, record.Comment(), record.MappedAttrs)
	if err != nil {
		o.fail(outcome, fmt.Sprintf("failed to create network %s: %v", record.Subnet, err))
		return
	}
	outcome.Created++
	o.log.Debug("network created", zap.String("subnet", record.Subnet))
}

// ApplyBulk creates all records through the client's batch endpoint instead
// of the per-item loop. Intended for large sets of new networks; records
// already present in the store will fail individually and be counted.
func (o *Orchestrator) ApplyBulk(ctx context.Context, view string, records []inventory.NetworkRecord, report func(jobs.Progress)) (jobs.Outcome, error) {
	if o.client == nil {
		return jobs.Outcome{}, ddi.ErrNotConfigured
	}

	candidates := make([]ddi.NetworkCandidate, 0, len(records))
	for _, record := range records {
		candidates = append(candidates, ddi.NetworkCandidate{
			Subnet:   record.Subnet,
			Comment:  record.Comment(),
			ExtAttrs: record.MappedAttrs,
		})
	}

	report(jobs.Progress{
		Current: 0,
		Total:   len(records),
		Message: fmt.Sprintf("batch creating %d networks", len(records)),
	})

	result, err := o.client.CreateNetworksBatch(ctx, candidates, view)
	if err != nil {
		return jobs.Outcome{}, err
	}

	report(jobs.Progress{
		Current: len(records),
		Total:   len(records),
		Message: "batch create complete",
	})

	return jobs.Outcome{
		Created: result.Created,
		Failed:  result.Failed,
		Errors:  result.Errors,
	}, nil
}

func (o *Orchestrator) fail(outcome *jobs.Outcome, message string) {
	outcome.Failed++
	outcome.Errors = append(outcome.Errors, message)
	o.log.Warn(message)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
