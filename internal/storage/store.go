package storage

import (
	"context"

	"regionnet/internal/model"
)

// Store records run summaries and per-step output snapshots. Graph topology
// is never stored.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	AppendSnapshots(ctx context.Context, snapshots []model.OutputSnapshot) error
	GetSnapshots(ctx context.Context, runID string) ([]model.OutputSnapshot, error)
}
