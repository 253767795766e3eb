// Package mocks provides testify mocks for the jobs package.
package mocks

import (
	"context"

	"ddi-sync/core/jobs"

	"github.com/stretchr/testify/mock"
)

// Store is a mock implementation of jobs.Store.
type Store struct {
	mock.Mock
}

func (m *Store) Save(ctx context.Context, job *jobs.SyncJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *Store) Get(ctx context.Context, id string) (*jobs.SyncJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jobs.SyncJob), args.Error(1)
}
