package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/towerops/towerctl/pkg/api"
	"github.com/towerops/towerctl/pkg/jobs"
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Launch or monitor jobs",
}

var jobLaunchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Launch a new job from a job template",
	Long: `Launch a new job based on a job template.

Creates a new job on the Tower server, immediately starts it, and
returns its id so its status can be monitored.`,
	RunE: runJobLaunch,
}

var jobMonitorCmd = &cobra.Command{
	Use:   "monitor <id>",
	Short: "Monitor a running job until it finishes",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobMonitor,
}

var jobStatusCmd = &cobra.Command{
	Use:   "status <id>",
	Short: "Print the current job status",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobStatus,
}

var jobCancelCmd = &cobra.Command{
	Use:   "cancel <id>",
	Short: "Cancel a currently running job",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobCancel,
}

func init() {
	rootCmd.AddCommand(jobCmd)
	jobCmd.AddCommand(jobLaunchCmd)
	jobCmd.AddCommand(jobMonitorCmd)
	jobCmd.AddCommand(jobStatusCmd)
	jobCmd.AddCommand(jobCancelCmd)

	jobLaunchCmd.Flags().Int("job-template", 0, "Job template id to launch from")
	jobLaunchCmd.Flags().String("tags", "", "Job tags to run with")
	jobLaunchCmd.Flags().String("extra-vars", "", "Path to a file of extra variables (YAML)")
	jobLaunchCmd.Flags().Bool("monitor", false, "Monitor the launched job instead of exiting immediately")
	jobLaunchCmd.Flags().Int("timeout", 0, "With --monitor, time this command out after N seconds")
	jobLaunchCmd.Flags().Bool("no-input", false, "Suppress any requests for input")
	_ = jobLaunchCmd.MarkFlagRequired("job-template")

	jobMonitorCmd.Flags().Int("timeout", 0, "Time this command (not the job) out after N seconds")

	jobStatusCmd.Flags().Bool("detail", false, "Print the full record")

	jobCancelCmd.Flags().Bool("fail-if-not-running", false, "Fail loudly if the job is not currently running")
}

func runJobLaunch(cmd *cobra.Command, _ []string) error {
	templateID, _ := cmd.Flags().GetInt("job-template")
	tags, _ := cmd.Flags().GetString("tags")
	varsPath, _ := cmd.Flags().GetString("extra-vars")
	monitor, _ := cmd.Flags().GetBool("monitor")
	timeout, _ := cmd.Flags().GetInt("timeout")
	noInput, _ := cmd.Flags().GetBool("no-input")

	var extraVars string
	if varsPath != "" {
		contents, err := readFileValue(varsPath)
		if err != nil {
			return err
		}
		extraVars = contents
	}

	result, err := orchestrator.Launch(cmd.Context(), jobs.LaunchOptions{
		TemplateID: templateID,
		Tags:       tags,
		ExtraVars:  extraVars,
		NoInput:    noInput,
		Monitor:    monitor,
		Timeout:    time.Duration(timeout) * time.Second,
	})
	if err != nil {
		return err
	}

	if result.Status != nil {
		return resultWriter.WriteResult(statusResultMap(result.Status))
	}
	out := api.NewOrderedMap()
	out.Set("changed", result.Changed)
	out.Set("id", result.ID)
	return resultWriter.WriteResult(out)
}

func runJobMonitor(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	timeout, _ := cmd.Flags().GetInt("timeout")

	res, err := orchestrator.Monitor(cmd.Context(), jobs.JobTarget(id), time.Duration(timeout)*time.Second)
	if err != nil {
		return err
	}
	return resultWriter.WriteResult(statusResultMap(res))
}

func runJobStatus(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	detail, _ := cmd.Flags().GetBool("detail")

	res, err := orchestrator.Status(cmd.Context(), jobs.JobTarget(id), detail)
	if err != nil {
		return err
	}
	return resultWriter.WriteResult(statusResultMap(res))
}

func runJobCancel(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	failIfNotRunning, _ := cmd.Flags().GetBool("fail-if-not-running")

	res, err := orchestrator.Cancel(cmd.Context(), id, failIfNotRunning)
	if err != nil {
		return err
	}
	out := api.NewOrderedMap()
	out.Set("status", res.Status)
	out.Set("changed", res.Changed)
	return resultWriter.WriteResult(out)
}
