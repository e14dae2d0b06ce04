package usecase

import (
	"context"
	"fmt"

	"cv-checker/domain"
)

// ProjectedResult is the client-facing slice of a Result.
type ProjectedResult struct {
	CVMatchRate     float64 `json:"cv_match_rate"`
	CVFeedback      string  `json:"cv_feedback"`
	ProjectScore    float64 `json:"project_score"`
	ProjectFeedback string  `json:"project_feedback"`
	OverallSummary  string  `json:"overall_summary"`
}

// Projection is what the polling client sees. Result is present only
// once the evaluation has succeeded.
type Projection struct {
	ID     uint             `json:"id"`
	Status string           `json:"status"`
	Result *ProjectedResult `json:"result,omitempty"`
}

// Projector maps internal process state to the external status shape.
type Projector struct {
	processes ProcessStore
}

func NewProjector(processes ProcessStore) *Projector {
	return &Projector{processes: processes}
}

// Project collapses queued and processing into a single external
// "queued" status; the distinction is internal bookkeeping the client
// has no use for. Success carries the five result fields, every other
// state is reported as-is without a payload.
func (p *Projector) Project(ctx context.Context, processID uint) (Projection, error) {
	proc, err := p.processes.GetWithResult(ctx, processID)
	if err != nil {
		return Projection{}, fmt.Errorf("process %d: %w", processID, err)
	}

	switch {
	case proc.StatusProcess == domain.ProcessQueued || proc.StatusProcess == domain.ProcessProcessing:
		return Projection{ID: proc.ID, Status: domain.ProcessQueued}, nil
	case proc.StatusProcess == domain.ProcessSuccess && proc.Result != nil:
		return Projection{
			ID:     proc.ID,
			Status: domain.ProcessSuccess,
			Result: &ProjectedResult{
				CVMatchRate:     proc.Result.CVMatchRate,
				CVFeedback:      proc.Result.CVFeedback,
				ProjectScore:    proc.Result.ProjectScore,
				ProjectFeedback: proc.Result.ProjectFeedback,
				OverallSummary:  proc.Result.OverallSummary,
			},
		}, nil
	default:
		return Projection{ID: proc.ID, Status: proc.StatusProcess}, nil
	}
}
