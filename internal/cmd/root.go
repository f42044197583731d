// Package cmd implements the towerctl command tree.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"

	"github.com/towerops/towerctl/internal/config"
	"github.com/towerops/towerctl/internal/observability"
	"github.com/towerops/towerctl/pkg/api"
	"github.com/towerops/towerctl/pkg/jobs"
	"github.com/towerops/towerctl/pkg/output"
	"github.com/towerops/towerctl/pkg/resource"
)

// versionInfo is stamped by the build via SetVersionInfo.
var versionInfo = struct {
	Version   string
	Commit    string
	BuildDate string
}{
	Version:   "dev",
	Commit:    "HEAD",
	BuildDate: "unknown",
}

// SetVersionInfo records build-time version metadata.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

// Per-invocation state, resolved in the root PersistentPreRunE.
var (
	appCfg       *config.Config
	apiClient    *api.Client
	orchestrator *jobs.Orchestrator
	resultWriter *output.Writer
	descriptors  map[string]*resource.Descriptor
)

var rootCmd = &cobra.Command{
	Use:   "towerctl",
	Short: "Command-line client for the Tower job-orchestration API",
	Long: `towerctl manages Tower resources (credentials, projects, job
templates, jobs) and drives the asynchronous job protocol: launching
jobs from templates, monitoring them to completion, checking status,
triggering project updates, and canceling.

Connection settings come from flags, TOWERCTL_* environment variables,
or a towerctl.yaml config file.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupRuntime,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("host", "", "Tower server host (scheme optional, https assumed)")
	pf.String("username", "", "Tower username")
	pf.String("password", "", "Tower password")
	pf.Bool("insecure", false, "Skip TLS certificate verification")
	pf.String("format", "", "Output format: text, json, or yaml")
	pf.BoolP("verbose", "v", false, "Enable debug logging")
}

// setupRuntime loads configuration (flags act as runtime overrides) and
// builds the shared client, orchestrator, and writer.
func setupRuntime(cmd *cobra.Command, _ []string) error {
	overrides := map[string]any{}
	for _, key := range []string{"host", "username", "password", "format"} {
		if cmd.Flags().Changed(key) {
			v, _ := cmd.Flags().GetString(key)
			overrides[key] = v
		}
	}
	for _, key := range []string{"insecure", "verbose"} {
		if cmd.Flags().Changed(key) {
			v, _ := cmd.Flags().GetBool(key)
			overrides[key] = v
		}
	}

	cfg, err := config.Load(cmd.Context(), overrides)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Failed to load configuration", err)
	}
	appCfg = cfg

	if err := observability.Init(cfg.Verbose); err != nil {
		return exitError(foundry.ExitInvalidArgument, "Failed to initialize logging", err)
	}

	format, err := output.ParseFormat(cfg.Format)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid output format", err)
	}
	resultWriter = output.NewWriter(cmd.OutOrStdout(), format)

	client, err := api.NewClient(api.Config{
		Host:              cfg.Host,
		Username:          cfg.Username,
		Password:          cfg.Password,
		Insecure:          cfg.Insecure,
		RequestTimeout:    cfg.RequestTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
	}, api.WithLogger(observability.CLILogger))
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid connection settings", err)
	}
	apiClient = client

	orchestrator = jobs.NewOrchestrator(client,
		jobs.WithLogger(observability.CLILogger),
		jobs.WithPollInterval(cfg.PollInterval),
	)

	descriptors = resource.Builtin()
	return nil
}

// cmdError carries a process exit code alongside the underlying error.
type cmdError struct {
	code int
	msg  string
	err  error
}

func (e *cmdError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *cmdError) Unwrap() error {
	return e.err
}

// exitError creates an error that makes the CLI exit with the given code.
func exitError(code int, message string, err error) error {
	return &cmdError{code: code, msg: message, err: err}
}

// exitCodeFor maps an error onto a process exit code.
func exitCodeFor(err error) int {
	var ce *cmdError
	if errors.As(err, &ce) {
		return ce.code
	}
	switch {
	case api.IsValidation(err):
		return foundry.ExitInvalidArgument
	case api.IsServerError(err):
		return foundry.ExitExternalServiceUnavailable
	default:
		return 1
	}
}

// Execute runs the command tree and exits the process on failure.
func Execute() {
	defer observability.Sync()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}
