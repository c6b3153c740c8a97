package usecase

import (
	"context"
	"fmt"

	"FinBoard/pkg/queue"
)

// RefreshJobType is the queue message type for daily bar refreshes.
const RefreshJobType = "bars.refresh"

// RefreshJob is the queue job that runs an incremental bar refresh for one
// symbol. Payload: RefreshTarget.
type RefreshJob struct {
	refresh *BarRefreshUseCase
}

func NewRefreshJob(refresh *BarRefreshUseCase) *RefreshJob {
	return &RefreshJob{refresh: refresh}
}

func (j *RefreshJob) Name() string { return "bar-refresh" }
func (j *RefreshJob) Type() string { return RefreshJobType }

func (j *RefreshJob) Handle(ctx context.Context, payload interface{}) error {
	target, err := queue.ParsePayload[RefreshTarget](payload)
	if err != nil {
		return fmt.Errorf("refresh payload: %w", err)
	}
	if _, err := j.refresh.RefreshSymbol(ctx, *target); err != nil {
		return err
	}
	return nil
}

var _ queue.Job = (*RefreshJob)(nil)
