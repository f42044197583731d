package resource

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/towerops/towerctl/pkg/api"
)

// Engine implements generic CRUD for one resource type by translating
// declared Fields into query and body parameters for the HTTP adapter.
type Engine struct {
	client *api.Client
	desc   *Descriptor
	log    *zap.Logger
}

// NewEngine builds a CRUD engine for a descriptor.
func NewEngine(client *api.Client, desc *Descriptor, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{client: client, desc: desc, log: log}
}

// Descriptor returns the descriptor this engine serves.
func (e *Engine) Descriptor() *Descriptor {
	return e.desc
}

// Page is one page of list results.
type Page struct {
	Count    int
	Next     string
	Previous string
	Results  []*api.OrderedMap
}

// CreateResult reports the record a create resolved to and whether a new
// instance was actually created.
type CreateResult struct {
	Record  *api.OrderedMap
	Changed bool
}

// Get fetches one instance by primary key.
func (e *Engine) Get(ctx context.Context, id int) (*api.OrderedMap, error) {
	resp, err := e.client.Get(ctx, e.desc.ItemPath(id), nil)
	if err != nil {
		return nil, err
	}
	return resp.JSON()
}

// List fetches a page of instances matching the given field filters.
func (e *Engine) List(ctx context.Context, filters map[string]string) (*Page, error) {
	params := url.Values{}
	for name, value := range filters {
		if _, ok := e.desc.Field(name); !ok {
			return nil, fmt.Errorf("%w: %s has no field %q", api.ErrValidation, e.desc.Name, name)
		}
		params.Set(name, value)
	}
	resp, err := e.client.Get(ctx, e.desc.Endpoint, params)
	if err != nil {
		return nil, err
	}
	body, err := resp.JSON()
	if err != nil {
		return nil, err
	}

	page := &Page{
		Count:    body.GetInt("count"),
		Next:     body.GetString("next"),
		Previous: body.GetString("previous"),
	}
	for _, item := range body.GetSlice("results") {
		rec, ok := item.(*api.OrderedMap)
		if !ok {
			return nil, fmt.Errorf("list result is not an object")
		}
		page.Results = append(page.Results, rec)
	}
	return page, nil
}

// Lookup resolves exactly one instance from identity field values.
// Zero matches is NotFound; more than one is a validation failure, since
// identity tuples are supposed to be unique.
func (e *Engine) Lookup(ctx context.Context, identity map[string]string) (*api.OrderedMap, error) {
	page, err := e.List(ctx, identity)
	if err != nil {
		return nil, err
	}
	switch len(page.Results) {
	case 0:
		return nil, fmt.Errorf("%w: no %s matches %v", api.ErrNotFound, e.desc.Name, identity)
	case 1:
		return page.Results[0], nil
	default:
		return nil, fmt.Errorf("%w: %v matches %d %ss; identity must be unique",
			api.ErrValidation, identity, len(page.Results), e.desc.Name)
	}
}

// Create makes a new instance from raw field values.
//
// Identity fields supplied in the input are first used to look for an
// existing instance; when one exists it is returned unmodified with
// Changed false, keeping create idempotent across reruns.
func (e *Engine) Create(ctx context.Context, raw map[string]string) (*CreateResult, error) {
	payload, err := e.desc.BuildPayload(raw, true)
	if err != nil {
		return nil, err
	}

	identity := map[string]string{}
	for _, name := range e.desc.IdentityFields() {
		if v, ok := raw[name]; ok {
			identity[name] = v
		}
	}
	if len(identity) > 0 {
		page, err := e.List(ctx, identity)
		if err != nil {
			return nil, err
		}
		if len(page.Results) > 0 {
			e.log.Debug("Create matched an existing instance",
				zap.String("resource", e.desc.Name))
			return &CreateResult{Record: page.Results[0], Changed: false}, nil
		}
	}

	endpoint := e.desc.Endpoint
	if e.desc.CreateEndpoint != nil {
		endpoint = e.desc.CreateEndpoint(payload)
	}
	resp, err := e.client.Post(ctx, endpoint, payload)
	if err != nil {
		return nil, err
	}
	rec, err := resp.JSON()
	if err != nil {
		return nil, err
	}
	return &CreateResult{Record: rec, Changed: true}, nil
}

// Modify patches the given fields on one instance.
func (e *Engine) Modify(ctx context.Context, id int, raw map[string]string) (*api.OrderedMap, error) {
	payload, err := e.desc.BuildPayload(raw, false)
	if err != nil {
		return nil, err
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: nothing to modify", api.ErrValidation)
	}
	resp, err := e.client.Patch(ctx, e.desc.ItemPath(id), payload)
	if err != nil {
		return nil, err
	}
	return resp.JSON()
}

// Delete removes one instance. A missing instance is reported as
// changed false rather than an error.
func (e *Engine) Delete(ctx context.Context, id int) (bool, error) {
	_, err := e.client.Delete(ctx, e.desc.ItemPath(id))
	if err != nil {
		if api.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
