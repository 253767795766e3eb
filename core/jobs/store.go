package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store persists terminal job outcomes so Status survives restarts and
// memory eviction.
type Store interface {
	Save(ctx context.Context, job *SyncJob) error
	Get(ctx context.Context, id string) (*SyncJob, error)
}

// jobRecord is the sync_jobs table row. Outcome errors are stored as a JSON
// array in a text column.
type jobRecord struct {
	ID              string `gorm:"primaryKey;size:36"`
	Name            string `gorm:"size:128"`
	View            string `gorm:"size:128"`
	State           string `gorm:"size:16"`
	ProgressCurrent int
	ProgressTotal   int
	Created         int
	Updated         int
	Failed          int
	Errors          string `gorm:"type:text"`
	Error           string `gorm:"type:text"`
	SubmittedAt     time.Time
	FinishedAt      time.Time
}

func (jobRecord) TableName() string {
	return "sync_jobs"
}

type gormStore struct {
	db *gorm.DB
}

// NewStore wraps a gorm connection as a job store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// Migrate creates the sync_jobs table if it does not exist.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&jobRecord{}); err != nil {
		return fmt.Errorf("failed to migrate sync_jobs: %w", err)
	}
	return nil
}

func (s *gormStore) Save(ctx context.Context, job *SyncJob) error {
	record, err := toRecord(job)
	if err != nil {
		return err
	}
	// Upsert: a job resubmitted with the same id overwrites its row
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(record).Error; err != nil {
		return fmt.Errorf("failed to save job %s: %w", job.ID, err)
	}
	return nil
}

func (s *gormStore) Get(ctx context.Context, id string) (*SyncJob, error) {
	var record jobRecord
	err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load job %s: %w", id, err)
	}
	return fromRecord(&record)
}

func toRecord(job *SyncJob) (*jobRecord, error) {
	errs, err := json.Marshal(job.Outcome.Errors)
	if err != nil {
		return nil, fmt.Errorf("failed to encode job errors: %w", err)
	}
	return &jobRecord{
		ID:              job.ID,
		Name:            job.Name,
		View:            job.View,
		State:           string(job.State),
		ProgressCurrent: job.Progress.Current,
		ProgressTotal:   job.Progress.Total,
		Created:         job.Outcome.Created,
		Updated:         job.Outcome.Updated,
		Failed:          job.Outcome.Failed,
		Errors:          string(errs),
		Error:           job.Error,
		SubmittedAt:     job.SubmittedAt,
		FinishedAt:      job.FinishedAt,
	}, nil
}

func fromRecord(record *jobRecord) (*SyncJob, error) {
	var errs []string
	if record.Errors != "" {
		if err := json.Unmarshal([]byte(record.Errors), &errs); err != nil {
			return nil, fmt.Errorf("failed to decode job errors: %w", err)
		}
	}
	return &SyncJob{
		ID:    record.ID,
		Name:  record.Name,
		View:  record.View,
		State: State(record.State),
		Progress: Progress{
			Current: record.ProgressCurrent,
			Total:   record.ProgressTotal,
		},
		Outcome: Outcome{
			Created: record.Created,
			Updated: record.Updated,
			Failed:  record.Failed,
			Errors:  errs,
		},
		Error:       record.Error,
		SubmittedAt: record.SubmittedAt,
		FinishedAt:  record.FinishedAt,
	}, nil
}
