package jobs

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/towerops/towerctl/pkg/api"
)

// UpdateResult is the outcome of triggering an update.
type UpdateResult struct {
	// Changed is true when an update was started.
	Changed bool

	// UpdateID is the created update record's id (e.g. project_update).
	UpdateID int

	// Status carries the monitor outcome when monitoring was requested.
	Status *StatusResult
}

// Update triggers an update of an update-capable resource (e.g. a
// project's SCM synchronization).
//
// The update relation is first asked whether an update can start at all;
// when the server says it cannot, the operation fails with CannotStartJob
// and no POST is issued.
func (o *Orchestrator) Update(ctx context.Context, t Target, monitor bool, timeout time.Duration) (*UpdateResult, error) {
	updatePath := t.path + "update/"

	o.log.Debug("Asking whether the update can run", zap.String("path", updatePath))
	resp, err := o.client.Get(ctx, updatePath, nil)
	if err != nil {
		return nil, err
	}
	check, err := resp.JSON()
	if err != nil {
		return nil, err
	}
	if !check.GetBool("can_update") {
		return nil, fmt.Errorf("%w: cannot update %s %d", api.ErrCannotStartJob, t.resource, t.id)
	}

	o.log.Debug("Starting the update", zap.String("path", updatePath))
	resp, err = o.client.Post(ctx, updatePath, nil)
	if err != nil {
		return nil, err
	}
	created, err := resp.JSON()
	if err != nil {
		return nil, err
	}

	result := &UpdateResult{
		Changed:  true,
		UpdateID: created.GetInt(t.resource + "_update"),
	}
	if monitor {
		status, err := o.Monitor(ctx, t, timeout)
		if err != nil {
			return nil, err
		}
		result.Status = status
	}
	return result, nil
}
