package jobs

import (
	"strings"

	"github.com/towerops/towerctl/pkg/api"
)

// Record wraps a raw Tower record with typed accessors for the fields
// the orchestrator cares about. The underlying map keeps the server's
// key order for display.
type Record struct {
	om *api.OrderedMap
}

// NewRecord wraps an ordered map as a job-ish record.
func NewRecord(om *api.OrderedMap) *Record {
	return &Record{om: om}
}

// Raw returns the underlying ordered map.
func (r *Record) Raw() *api.OrderedMap {
	return r.om
}

// ID returns the record's primary key.
func (r *Record) ID() int {
	return r.om.GetInt("id")
}

// Name returns the record's name.
func (r *Record) Name() string {
	return r.om.GetString("name")
}

// Status returns the record's lifecycle status.
func (r *Record) Status() Status {
	return ToStatus(r.om.GetString("status"))
}

// Elapsed returns the seconds the job has been running.
func (r *Record) Elapsed() float64 {
	return r.om.GetFloat("elapsed")
}

// Failed reports the record's failed flag.
func (r *Record) Failed() bool {
	return r.om.GetBool("failed")
}

// ExtraVars returns the record's extra_vars text.
func (r *Record) ExtraVars() string {
	return r.om.GetString("extra_vars")
}

// AskVariablesOnLaunch reports whether launching should prompt for
// extra variables.
func (r *Record) AskVariablesOnLaunch() bool {
	return r.om.GetBool("ask_variables_on_launch")
}

// Related returns the sub-resource path for a relation name and whether
// the relation exists. Relation URLs come back prefixed with the API
// version; the prefix is stripped so the path can be fed straight back
// to the client adapter.
//
// The set of relations varies by server version, so callers must not
// assume a given relation exists.
func (r *Record) Related(name string) (string, bool) {
	related := r.om.GetMap("related")
	if related == nil {
		return "", false
	}
	v, ok := related.Get(name)
	if !ok {
		return "", false
	}
	path, ok := v.(string)
	if !ok || path == "" {
		return "", false
	}
	return strings.TrimPrefix(path, "/api/v1"), true
}

// HasRelated reports whether a relation name is present.
func (r *Record) HasRelated(name string) bool {
	_, ok := r.Related(name)
	return ok
}
