package jobs

import (
	"context"
	"fmt"

	"github.com/towerops/towerctl/pkg/api"
)

// CancelResult is the outcome of a cancel request.
type CancelResult struct {
	// Status is always "canceled"; it reports the requested state, not
	// an observation.
	Status string

	// Changed is false when the job was not in a cancelable state.
	Changed bool
}

// Cancel asks the server to cancel a job.
//
// The API answers 405 when the job is not in a cancelable state (already
// finished, never started). That is a logical outcome, not a transport
// failure: by default it is reported as Changed false, and only when
// failIfNotRunning is set does it become an error. Every other error
// class propagates as fatal.
func (o *Orchestrator) Cancel(ctx context.Context, jobID int, failIfNotRunning bool) (*CancelResult, error) {
	_, err := o.client.Post(ctx, fmt.Sprintf("/jobs/%d/cancel/", jobID), nil)
	if err != nil {
		if api.IsMethodNotAllowed(err) {
			if failIfNotRunning {
				return nil, fmt.Errorf("job %d is not running: %w", jobID, err)
			}
			return &CancelResult{Status: "canceled", Changed: false}, nil
		}
		return nil, err
	}
	return &CancelResult{Status: "canceled", Changed: true}, nil
}
