// Package store persists pipeline run history.
package store

import (
	"context"

	"github.com/sells-group/blogpipe/internal/model"
)

// Store defines the persistence interface for run history.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, run model.Run) error
	CompleteRun(ctx context.Context, runID string, status model.RunStatus) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)

	// Stages
	RecordStage(ctx context.Context, rec model.StageRecord) error
	ListStages(ctx context.Context, runID string) ([]model.StageRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
