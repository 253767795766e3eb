// Package jobs runs sync work on a bounded worker pool behind a
// submit/status/cancel interface.
//
// Submission fails fast when the queue is full, and at most one job per
// target network view is admitted at a time. Cancellation propagates through
// the job's context; runners observe it between items. Terminal outcomes are
// optionally persisted through a gorm-backed store so status queries survive
// restarts.
package jobs
