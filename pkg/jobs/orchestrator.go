package jobs

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/towerops/towerctl/pkg/api"
)

const defaultPollInterval = 2 * time.Second

// Orchestrator drives the asynchronous job protocol of the Tower API:
// launching jobs from templates, polling them to completion, projecting
// status, triggering project updates, and canceling.
//
// Every operation is synchronous and blocking; there is no internal
// concurrency and no automatic retry. Session state (poll loops, launch
// requests) is owned by the call that created it.
type Orchestrator struct {
	client       *api.Client
	prompter     Prompter
	log          *zap.Logger
	pollInterval time.Duration
}

// OrchestratorOption customizes an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithPrompter injects the interactive input provider.
func WithPrompter(p Prompter) OrchestratorOption {
	return func(o *Orchestrator) { o.prompter = p }
}

// WithLogger sets the orchestrator's logger.
func WithLogger(log *zap.Logger) OrchestratorOption {
	return func(o *Orchestrator) { o.log = log }
}

// WithPollInterval sets the delay between monitor polls.
func WithPollInterval(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

// NewOrchestrator builds an Orchestrator on top of the HTTP adapter.
func NewOrchestrator(client *api.Client, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		client:       client,
		prompter:     TerminalPrompter{},
		log:          zap.NewNop(),
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// LaunchOptions are the inputs to Launch.
type LaunchOptions struct {
	// TemplateID is the job template to launch from.
	TemplateID int

	// Tags, when set, is sent as job_tags.
	Tags string

	// ExtraVars is literal extra-variables text (a file argument is read
	// to text by the CLI layer before it gets here). When set it is
	// appended to the template's existing extra_vars.
	ExtraVars string

	// NoInput suppresses the interactive variable edit session.
	NoInput bool

	// Monitor polls the launched job to completion instead of returning
	// immediately after the start call.
	Monitor bool

	// Timeout bounds the monitor loop. Zero means no deadline.
	Timeout time.Duration
}

// LaunchResult is the outcome of a launch.
type LaunchResult struct {
	// ID is the launched job's primary key.
	ID int

	// Changed is true for every successful launch.
	Changed bool

	// Status carries the monitor outcome when LaunchOptions.Monitor was set.
	Status *StatusResult
}

// Launch creates and starts a job from a job template.
//
// Servers with a launch relation on the template use the one-step
// protocol (POST /job_templates/{id}/launch/); older servers use the
// legacy two-step protocol (POST /jobs/ then POST /jobs/{id}/start/).
// Either way the start endpoint is asked which run-time passwords the
// job needs, and each one is prompted for. HTTP errors propagate
// unmodified; the caller decides exit behavior.
func (o *Orchestrator) Launch(ctx context.Context, opts LaunchOptions) (*LaunchResult, error) {
	template, err := o.getTemplate(ctx, opts.TemplateID)
	if err != nil {
		return nil, err
	}

	data := template.Raw().Plain()
	delete(data, "id")
	data["job_template"] = opts.TemplateID
	data["name"] = fmt.Sprintf("%s [invoked via towerctl]", template.Name())
	if opts.Tags != "" {
		data["job_tags"] = opts.Tags
	}

	askVariables := template.AskVariablesOnLaunch()
	delete(data, "ask_variables_on_launch")

	switch {
	case opts.ExtraVars != "":
		if err := validateExtraVars(opts.ExtraVars); err != nil {
			return nil, err
		}
		data["extra_vars"] = appendExtraVars(template.ExtraVars(), opts.ExtraVars)
	case askVariables && !opts.NoInput:
		edited, err := o.prompter.EditText(editHeader + template.ExtraVars())
		if err != nil {
			return nil, fmt.Errorf("edit extra variables: %w", err)
		}
		data["extra_vars"] = stripComments(edited)
	}

	// Tower 2.1+ exposes a launch relation on the template; its absence
	// means the legacy two-step job creation protocol.
	oneStep := template.HasRelated("launch")

	var jobID int
	startData := map[string]any{}
	var startEndpoint string
	if oneStep {
		startEndpoint = fmt.Sprintf("/job_templates/%d/launch/", opts.TemplateID)
		if v, ok := data["extra_vars"]; ok {
			startData["extra_vars"] = v
		}
		if opts.Tags != "" {
			startData["job_tags"] = opts.Tags
		}
	} else {
		o.log.Debug("Creating the job", zap.Int("job_template", opts.TemplateID))
		resp, err := o.client.Post(ctx, "/jobs/", data)
		if err != nil {
			return nil, err
		}
		created, err := resp.JSON()
		if err != nil {
			return nil, err
		}
		jobID = created.GetInt("id")
		startEndpoint = fmt.Sprintf("/jobs/%d/start/", jobID)
	}

	// Many jobs rely on passwords entered at run time; the start endpoint
	// reports which ones this job needs.
	o.log.Debug("Asking for information necessary to start the job")
	startInfo, err := o.client.Get(ctx, startEndpoint, nil)
	if err != nil {
		return nil, err
	}
	info, err := startInfo.JSON()
	if err != nil {
		return nil, err
	}
	for _, p := range info.GetSlice("passwords_needed_to_start") {
		name, ok := p.(string)
		if !ok {
			continue
		}
		secret, err := o.prompter.Password(name)
		if err != nil {
			return nil, err
		}
		startData[name] = secret
	}

	o.log.Debug("Launching the job", zap.String("endpoint", startEndpoint))
	resp, err := o.client.Post(ctx, startEndpoint, startData)
	if err != nil {
		return nil, err
	}
	if oneStep {
		// The launch response's job field is the authoritative id.
		body, err := resp.JSON()
		if err != nil {
			return nil, err
		}
		jobID = body.GetInt("job")
	}

	result := &LaunchResult{ID: jobID, Changed: true}
	if opts.Monitor {
		status, err := o.Monitor(ctx, JobTarget(jobID), opts.Timeout)
		if err != nil {
			return nil, err
		}
		result.Status = status
	}
	return result, nil
}

func (o *Orchestrator) getTemplate(ctx context.Context, id int) (*Record, error) {
	resp, err := o.client.Get(ctx, fmt.Sprintf("/job_templates/%d/", id), nil)
	if err != nil {
		return nil, err
	}
	om, err := resp.JSON()
	if err != nil {
		return nil, err
	}
	return NewRecord(om), nil
}
