package jobs

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/towerops/towerctl/pkg/api"
)

// Target identifies the record a status or monitor operation polls.
type Target struct {
	resource string
	path     string
	id       int

	// resolveUpdate marks update-capable resources whose status lives on
	// the most relevant update record rather than the resource itself.
	resolveUpdate bool
}

// JobTarget targets a job by id.
func JobTarget(id int) Target {
	return Target{resource: "job", path: fmt.Sprintf("/jobs/%d/", id), id: id}
}

// ProjectTarget targets a project by id. Project status is projected from
// the project's current (else last) update record.
func ProjectTarget(id int) Target {
	return Target{
		resource:      "project",
		path:          fmt.Sprintf("/projects/%d/", id),
		id:            id,
		resolveUpdate: true,
	}
}

// ID returns the target's primary key.
func (t Target) ID() int {
	return t.id
}

// StatusResult is the status projection of a job or update record.
type StatusResult struct {
	Elapsed float64
	Failed  bool
	Status  Status

	// Record is the full record, populated only when detail is requested.
	Record *api.OrderedMap
}

// Status fetches and projects the target's current status.
//
// For update-capable targets the relevant record is resolved through the
// current_update relation, falling back to last_update; when neither
// relation exists there is nothing to report and NotFound is returned.
// Unless detail is requested, the projection is exactly elapsed, failed,
// and status.
func (o *Orchestrator) Status(ctx context.Context, t Target, detail bool) (*StatusResult, error) {
	resp, err := o.client.Get(ctx, t.path, nil)
	if err != nil {
		return nil, err
	}
	om, err := resp.JSON()
	if err != nil {
		return nil, err
	}
	rec := NewRecord(om)

	if t.resolveUpdate {
		rec, err = o.resolveUpdateRecord(ctx, rec)
		if err != nil {
			return nil, err
		}
	}

	result := &StatusResult{
		Elapsed: rec.Elapsed(),
		Failed:  rec.Failed(),
		Status:  rec.Status(),
	}
	if detail {
		result.Record = rec.Raw()
	}
	return result, nil
}

// resolveUpdateRecord follows the most relevant update relation:
// a running update wins over the most recent finished one.
func (o *Orchestrator) resolveUpdateRecord(ctx context.Context, rec *Record) (*Record, error) {
	path, ok := rec.Related("current_update")
	if ok {
		o.log.Debug("A current update exists; retrieving it")
	} else {
		path, ok = rec.Related("last_update")
		if !ok {
			return nil, fmt.Errorf("%w: no updates exist (id %d)", api.ErrNotFound, rec.ID())
		}
		o.log.Debug("No current update exists; retrieving the most recent update")
	}

	resp, err := o.client.Get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	om, err := resp.JSON()
	if err != nil {
		return nil, err
	}
	return NewRecord(om), nil
}

// Monitor polls the target until its status is terminal or the timeout
// elapses, whichever comes first.
//
// The deadline is wall-clock time measured from loop entry, not from job
// creation. Zero timeout means no deadline: the loop polls until the job
// finishes or ctx is canceled. On timeout the error is a TimeoutError
// carrying the last observed status; a success shape is never returned.
func (o *Orchestrator) Monitor(ctx context.Context, t Target, timeout time.Duration) (*StatusResult, error) {
	loopCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		loopCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	// burst 1: the first poll fires immediately, later polls are paced.
	limiter := rate.NewLimiter(rate.Every(o.pollInterval), 1)

	var last Status
	for {
		if err := limiter.Wait(loopCtx); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, &api.TimeoutError{LastStatus: string(last)}
		}

		res, err := o.Status(loopCtx, t, true)
		if err != nil {
			if ctx.Err() == nil && loopCtx.Err() != nil {
				return nil, &api.TimeoutError{LastStatus: string(last)}
			}
			return nil, err
		}
		last = res.Status

		o.log.Debug("Monitor poll",
			zap.String("resource", t.resource),
			zap.Int("id", t.id),
			zap.String("status", string(last)),
		)

		if last.IsTerminal() {
			return res, nil
		}
	}
}
