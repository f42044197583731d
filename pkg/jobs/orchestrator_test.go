package jobs_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/towerops/towerctl/pkg/api"
	"github.com/towerops/towerctl/pkg/jobs"
	"github.com/towerops/towerctl/test/towertest"
)

// fakePrompter scripts interactive input and records what was asked.
type fakePrompter struct {
	passwords map[string]string
	asked     []string

	edited    string
	editSeed  string
	editCalls int
}

func (p *fakePrompter) Password(name string) (string, error) {
	p.asked = append(p.asked, name)
	return p.passwords[name], nil
}

func (p *fakePrompter) EditText(initial string) (string, error) {
	p.editCalls++
	p.editSeed = initial
	return p.edited, nil
}

func templateBody(overrides map[string]any) map[string]any {
	body := map[string]any{
		"id":                      1,
		"name":                    "ping",
		"job_type":                "run",
		"inventory":               1,
		"project":                 1,
		"playbook":                "ping.yml",
		"extra_vars":              "",
		"ask_variables_on_launch": false,
		"related":                 map[string]any{},
	}
	for k, v := range overrides {
		body[k] = v
	}
	return body
}

func noPasswords() map[string]any {
	return map[string]any{"passwords_needed_to_start": []any{}}
}

func TestLaunch_TwoStepProtocol(t *testing.T) {
	srv := towertest.NewServer(t)
	srv.HandleJSON(http.MethodGet, "/api/v1/job_templates/1/", 200, templateBody(nil))
	srv.HandleJSON(http.MethodPost, "/api/v1/jobs/", 201, map[string]any{"id": 42})
	srv.HandleJSON(http.MethodGet, "/api/v1/jobs/42/start/", 200, noPasswords())
	srv.HandleJSON(http.MethodPost, "/api/v1/jobs/42/start/", 202, map[string]any{})

	prompter := &fakePrompter{}
	orch := jobs.NewOrchestrator(srv.Client(t), jobs.WithPrompter(prompter))

	res, err := orch.Launch(context.Background(), jobs.LaunchOptions{TemplateID: 1})
	require.NoError(t, err)
	assert.Equal(t, 42, res.ID)
	assert.True(t, res.Changed)
	assert.Nil(t, res.Status)

	assert.Equal(t, []string{
		"GET /api/v1/job_templates/1/",
		"POST /api/v1/jobs/",
		"GET /api/v1/jobs/42/start/",
		"POST /api/v1/jobs/42/start/",
	}, srv.Calls())

	// The job is created from the template's fields, renamed, and pointed
	// back at its template; the template's own id must not leak in.
	reqs := srv.Requests()
	body := reqs[1].Body
	assert.Contains(t, body, `"name":"ping [invoked via towerctl]"`)
	assert.Contains(t, body, `"job_template":1`)
	assert.NotContains(t, body, `"id"`)
	assert.NotContains(t, body, `"ask_variables_on_launch"`)
}

func TestLaunch_OneStepProtocol(t *testing.T) {
	srv := towertest.NewServer(t)
	srv.HandleJSON(http.MethodGet, "/api/v1/job_templates/1/", 200, templateBody(map[string]any{
		"related": map[string]any{"launch": "/api/v1/job_templates/1/launch/"},
	}))
	srv.HandleJSON(http.MethodGet, "/api/v1/job_templates/1/launch/", 200, noPasswords())
	srv.HandleJSON(http.MethodPost, "/api/v1/job_templates/1/launch/", 201, map[string]any{"job": 99})

	orch := jobs.NewOrchestrator(srv.Client(t), jobs.WithPrompter(&fakePrompter{}))

	res, err := orch.Launch(context.Background(), jobs.LaunchOptions{TemplateID: 1, Tags: "deploy"})
	require.NoError(t, err)
	assert.Equal(t, 99, res.ID, "the job field of the launch response is authoritative")

	assert.Equal(t, []string{
		"GET /api/v1/job_templates/1/",
		"GET /api/v1/job_templates/1/launch/",
		"POST /api/v1/job_templates/1/launch/",
	}, srv.Calls())

	reqs := srv.Requests()
	assert.Contains(t, reqs[2].Body, `"job_tags":"deploy"`)
}

func TestLaunch_PasswordsPrompted(t *testing.T) {
	srv := towertest.NewServer(t)
	srv.HandleJSON(http.MethodGet, "/api/v1/job_templates/1/", 200, templateBody(map[string]any{
		"related": map[string]any{"launch": "/api/v1/job_templates/1/launch/"},
	}))
	srv.HandleJSON(http.MethodGet, "/api/v1/job_templates/1/launch/", 200, map[string]any{
		"passwords_needed_to_start": []any{"ssh_password", "become_password"},
	})
	srv.HandleJSON(http.MethodPost, "/api/v1/job_templates/1/launch/", 201, map[string]any{"job": 5})

	prompter := &fakePrompter{passwords: map[string]string{
		"ssh_password":    "hunter2",
		"become_password": "hunter3",
	}}
	orch := jobs.NewOrchestrator(srv.Client(t), jobs.WithPrompter(prompter))

	_, err := orch.Launch(context.Background(), jobs.LaunchOptions{TemplateID: 1})
	require.NoError(t, err)

	assert.Equal(t, []string{"ssh_password", "become_password"}, prompter.asked)

	reqs := srv.Requests()
	startBody := reqs[len(reqs)-1].Body
	assert.Contains(t, startBody, `"ssh_password":"hunter2"`)
	assert.Contains(t, startBody, `"become_password":"hunter3"`)
}

func TestLaunch_ExtraVarsAppended(t *testing.T) {
	srv := towertest.NewServer(t)
	srv.HandleJSON(http.MethodGet, "/api/v1/job_templates/1/", 200, templateBody(map[string]any{
		"extra_vars": "foo: 1",
		"related":    map[string]any{"launch": "/api/v1/job_templates/1/launch/"},
	}))
	srv.HandleJSON(http.MethodGet, "/api/v1/job_templates/1/launch/", 200, noPasswords())
	srv.HandleJSON(http.MethodPost, "/api/v1/job_templates/1/launch/", 201, map[string]any{"job": 5})

	orch := jobs.NewOrchestrator(srv.Client(t), jobs.WithPrompter(&fakePrompter{}))

	_, err := orch.Launch(context.Background(), jobs.LaunchOptions{TemplateID: 1, ExtraVars: "bar: 2"})
	require.NoError(t, err)

	reqs := srv.Requests()
	assert.Contains(t, reqs[len(reqs)-1].Body, `"extra_vars":"foo: 1\nbar: 2"`)
}

func TestLaunch_ExtraVarsMustBeYAML(t *testing.T) {
	srv := towertest.NewServer(t)
	srv.HandleJSON(http.MethodGet, "/api/v1/job_templates/1/", 200, templateBody(nil))

	orch := jobs.NewOrchestrator(srv.Client(t), jobs.WithPrompter(&fakePrompter{}))

	_, err := orch.Launch(context.Background(), jobs.LaunchOptions{
		TemplateID: 1,
		ExtraVars:  "foo: [unclosed",
	})
	require.Error(t, err)
	assert.True(t, api.IsValidation(err))
	assert.Equal(t, []string{"GET /api/v1/job_templates/1/"}, srv.Calls(),
		"bad variables must be rejected before any job is created")
}

func TestLaunch_EditSessionWhenTemplateAsks(t *testing.T) {
	srv := towertest.NewServer(t)
	srv.HandleJSON(http.MethodGet, "/api/v1/job_templates/1/", 200, templateBody(map[string]any{
		"extra_vars":              "answer: 42",
		"ask_variables_on_launch": true,
		"related":                 map[string]any{"launch": "/api/v1/job_templates/1/launch/"},
	}))
	srv.HandleJSON(http.MethodGet, "/api/v1/job_templates/1/launch/", 200, noPasswords())
	srv.HandleJSON(http.MethodPost, "/api/v1/job_templates/1/launch/", 201, map[string]any{"job": 5})

	prompter := &fakePrompter{edited: "# scratch note\ncolor: blue"}
	orch := jobs.NewOrchestrator(srv.Client(t), jobs.WithPrompter(prompter))

	_, err := orch.Launch(context.Background(), jobs.LaunchOptions{TemplateID: 1})
	require.NoError(t, err)

	assert.Equal(t, 1, prompter.editCalls)
	assert.True(t, strings.HasPrefix(prompter.editSeed, "#"),
		"edit buffer opens with instruction comments")
	assert.Contains(t, prompter.editSeed, "answer: 42")

	// Comment lines are stripped before the edited text is sent.
	reqs := srv.Requests()
	assert.Contains(t, reqs[len(reqs)-1].Body, `"extra_vars":"color: blue"`)
	assert.NotContains(t, reqs[len(reqs)-1].Body, "scratch note")
}

func TestLaunch_NoInputSuppressesEditSession(t *testing.T) {
	srv := towertest.NewServer(t)
	srv.HandleJSON(http.MethodGet, "/api/v1/job_templates/1/", 200, templateBody(map[string]any{
		"ask_variables_on_launch": true,
		"related":                 map[string]any{"launch": "/api/v1/job_templates/1/launch/"},
	}))
	srv.HandleJSON(http.MethodGet, "/api/v1/job_templates/1/launch/", 200, noPasswords())
	srv.HandleJSON(http.MethodPost, "/api/v1/job_templates/1/launch/", 201, map[string]any{"job": 5})

	prompter := &fakePrompter{}
	orch := jobs.NewOrchestrator(srv.Client(t), jobs.WithPrompter(prompter))

	_, err := orch.Launch(context.Background(), jobs.LaunchOptions{TemplateID: 1, NoInput: true})
	require.NoError(t, err)
	assert.Zero(t, prompter.editCalls)
}

func TestLaunch_MissingTemplatePropagates(t *testing.T) {
	srv := towertest.NewServer(t)
	srv.HandleJSON(http.MethodGet, "/api/v1/job_templates/1/", 404, map[string]any{"detail": "Not found."})

	orch := jobs.NewOrchestrator(srv.Client(t), jobs.WithPrompter(&fakePrompter{}))

	_, err := orch.Launch(context.Background(), jobs.LaunchOptions{TemplateID: 1})
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))
}
