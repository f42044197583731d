package resource_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/towerops/towerctl/pkg/api"
	"github.com/towerops/towerctl/pkg/resource"
	"github.com/towerops/towerctl/test/towertest"
)

func emptyPage() map[string]any {
	return map[string]any{"count": 0, "next": nil, "previous": nil, "results": []any{}}
}

func pageOf(results ...map[string]any) map[string]any {
	items := make([]any, len(results))
	for i, r := range results {
		items[i] = r
	}
	return map[string]any{"count": len(results), "next": nil, "previous": nil, "results": items}
}

func TestEngine_Get(t *testing.T) {
	srv := towertest.NewServer(t)
	srv.HandleJSON(http.MethodGet, "/api/v1/projects/3/", 200,
		map[string]any{"id": 3, "name": "ansible"})
	engine := resource.NewEngine(srv.Client(t), resource.Project(), nil)

	rec, err := engine.Get(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, rec.GetInt("id"))
	assert.Equal(t, "ansible", rec.GetString("name"))
}

func TestEngine_List(t *testing.T) {
	srv := towertest.NewServer(t)
	srv.HandleJSON(http.MethodGet, "/api/v1/projects/", 200,
		pageOf(map[string]any{"id": 1, "name": "a"}, map[string]any{"id": 2, "name": "b"}))
	engine := resource.NewEngine(srv.Client(t), resource.Project(), nil)

	page, err := engine.List(context.Background(), map[string]string{"name": "a"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Count)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "a", page.Results[0].GetString("name"))

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "name=a", reqs[0].Query)
}

func TestEngine_List_UnknownFilterField(t *testing.T) {
	srv := towertest.NewServer(t)
	engine := resource.NewEngine(srv.Client(t), resource.Project(), nil)

	_, err := engine.List(context.Background(), map[string]string{"flavor": "grape"})
	require.Error(t, err)
	assert.True(t, api.IsValidation(err))
	assert.Empty(t, srv.Calls(), "invalid filters must not reach the server")
}

func TestEngine_Lookup(t *testing.T) {
	t.Run("zero matches is not found", func(t *testing.T) {
		srv := towertest.NewServer(t)
		srv.HandleJSON(http.MethodGet, "/api/v1/projects/", 200, emptyPage())
		engine := resource.NewEngine(srv.Client(t), resource.Project(), nil)

		_, err := engine.Lookup(context.Background(), map[string]string{"name": "missing"})
		require.Error(t, err)
		assert.True(t, api.IsNotFound(err))
	})

	t.Run("one match resolves", func(t *testing.T) {
		srv := towertest.NewServer(t)
		srv.HandleJSON(http.MethodGet, "/api/v1/projects/", 200,
			pageOf(map[string]any{"id": 9, "name": "ansible"}))
		engine := resource.NewEngine(srv.Client(t), resource.Project(), nil)

		rec, err := engine.Lookup(context.Background(), map[string]string{"name": "ansible"})
		require.NoError(t, err)
		assert.Equal(t, 9, rec.GetInt("id"))
	})

	t.Run("multiple matches fail", func(t *testing.T) {
		srv := towertest.NewServer(t)
		srv.HandleJSON(http.MethodGet, "/api/v1/projects/", 200,
			pageOf(map[string]any{"id": 1}, map[string]any{"id": 2}))
		engine := resource.NewEngine(srv.Client(t), resource.Project(), nil)

		_, err := engine.Lookup(context.Background(), map[string]string{"name": "dup"})
		require.Error(t, err)
		assert.True(t, api.IsValidation(err))
	})
}

func TestEngine_Create_NewInstance(t *testing.T) {
	srv := towertest.NewServer(t)
	srv.HandleJSON(http.MethodGet, "/api/v1/projects/", 200, emptyPage())
	srv.HandleJSON(http.MethodPost, "/api/v1/projects/", 201,
		map[string]any{"id": 7, "name": "ansible"})
	engine := resource.NewEngine(srv.Client(t), resource.Project(), nil)

	res, err := engine.Create(context.Background(),
		map[string]string{"name": "ansible", "scm_type": "git", "scm_url": "https://example.com/r.git"})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, 7, res.Record.GetInt("id"))

	// Idempotency probe first, then the actual create.
	assert.Equal(t, []string{
		"GET /api/v1/projects/",
		"POST /api/v1/projects/",
	}, srv.Calls())
}

func TestEngine_Create_ExistingInstance(t *testing.T) {
	srv := towertest.NewServer(t)
	srv.HandleJSON(http.MethodGet, "/api/v1/projects/", 200,
		pageOf(map[string]any{"id": 4, "name": "ansible"}))
	engine := resource.NewEngine(srv.Client(t), resource.Project(), nil)

	res, err := engine.Create(context.Background(),
		map[string]string{"name": "ansible", "scm_type": "git"})
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, 4, res.Record.GetInt("id"))
	assert.Equal(t, []string{"GET /api/v1/projects/"}, srv.Calls())
}

func TestEngine_Create_OrganizationEndpoint(t *testing.T) {
	srv := towertest.NewServer(t)
	srv.HandleJSON(http.MethodGet, "/api/v1/projects/", 200, emptyPage())
	srv.HandleJSON(http.MethodPost, "/api/v1/organizations/2/projects/", 201,
		map[string]any{"id": 11, "name": "org-proj"})
	engine := resource.NewEngine(srv.Client(t), resource.Project(), nil)

	res, err := engine.Create(context.Background(),
		map[string]string{"name": "org-proj", "scm_type": "git", "organization": "2"})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, []string{
		"GET /api/v1/projects/",
		"POST /api/v1/organizations/2/projects/",
	}, srv.Calls())
}

func TestEngine_Create_MappedChoiceTranslated(t *testing.T) {
	srv := towertest.NewServer(t)
	srv.HandleJSON(http.MethodGet, "/api/v1/projects/", 200, emptyPage())
	srv.HandleJSON(http.MethodPost, "/api/v1/projects/", 201, map[string]any{"id": 5})
	engine := resource.NewEngine(srv.Client(t), resource.Project(), nil)

	_, err := engine.Create(context.Background(),
		map[string]string{"name": "local", "scm_type": "manual"})
	require.NoError(t, err)

	reqs := srv.Requests()
	require.Len(t, reqs, 2)
	assert.Contains(t, reqs[1].Body, `"scm_type":""`,
		"manual must translate to the empty wire value")
}

func TestEngine_Modify(t *testing.T) {
	srv := towertest.NewServer(t)
	srv.HandleJSON(http.MethodPatch, "/api/v1/projects/5/", 200,
		map[string]any{"id": 5, "description": "updated"})
	engine := resource.NewEngine(srv.Client(t), resource.Project(), nil)

	rec, err := engine.Modify(context.Background(), 5, map[string]string{"description": "updated"})
	require.NoError(t, err)
	assert.Equal(t, "updated", rec.GetString("description"))

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.JSONEq(t, `{"description": "updated"}`, reqs[0].Body,
		"modify must send only the supplied fields")
}

func TestEngine_Modify_NothingToDo(t *testing.T) {
	srv := towertest.NewServer(t)
	engine := resource.NewEngine(srv.Client(t), resource.Project(), nil)

	_, err := engine.Modify(context.Background(), 5, map[string]string{})
	require.Error(t, err)
	assert.True(t, api.IsValidation(err))
	assert.Empty(t, srv.Calls())
}

func TestEngine_Delete(t *testing.T) {
	t.Run("existing instance", func(t *testing.T) {
		srv := towertest.NewServer(t)
		srv.Handle(http.MethodDelete, "/api/v1/projects/5/", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(204)
		})
		engine := resource.NewEngine(srv.Client(t), resource.Project(), nil)

		changed, err := engine.Delete(context.Background(), 5)
		require.NoError(t, err)
		assert.True(t, changed)
	})

	t.Run("missing instance is not an error", func(t *testing.T) {
		srv := towertest.NewServer(t)
		srv.HandleJSON(http.MethodDelete, "/api/v1/projects/5/", 404, map[string]any{"detail": "Not found."})
		engine := resource.NewEngine(srv.Client(t), resource.Project(), nil)

		changed, err := engine.Delete(context.Background(), 5)
		require.NoError(t, err)
		assert.False(t, changed)
	})
}
