package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/towerops/towerctl/pkg/api"
	"github.com/towerops/towerctl/pkg/jobs"
)

var projectCmd = newResourceCommand(crudConfig{
	resource: "project",
	short:    "Manage projects",
	// The organization identifies which collection a project was created
	// in; allowing it on modify would blur identifier and attribute.
	modifyExclude: []string{"organization"},
})

var projectUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Trigger a project update",
	Long: `Trigger an SCM update of a project.

Only meaningful on non-manual projects; the server is asked first
whether the project can be updated at all.`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectUpdate,
}

var projectStatusCmd = &cobra.Command{
	Use:   "status <id>",
	Short: "Print the status of a project's most relevant update",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectStatus,
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectUpdateCmd)
	projectCmd.AddCommand(projectStatusCmd)

	projectUpdateCmd.Flags().Bool("monitor", false, "Monitor the update instead of exiting immediately")
	projectUpdateCmd.Flags().Int("timeout", 0, "With --monitor, time this command out after N seconds")

	projectStatusCmd.Flags().Bool("detail", false, "Print the full record")
}

func runProjectUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	monitor, _ := cmd.Flags().GetBool("monitor")
	timeout, _ := cmd.Flags().GetInt("timeout")

	result, err := orchestrator.Update(cmd.Context(), jobs.ProjectTarget(id), monitor, time.Duration(timeout)*time.Second)
	if err != nil {
		return err
	}

	if result.Status != nil {
		return resultWriter.WriteResult(statusResultMap(result.Status))
	}
	out := api.NewOrderedMap()
	out.Set("changed", result.Changed)
	return resultWriter.WriteResult(out)
}

func runProjectStatus(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	detail, _ := cmd.Flags().GetBool("detail")

	res, err := orchestrator.Status(cmd.Context(), jobs.ProjectTarget(id), detail)
	if err != nil {
		return err
	}
	return resultWriter.WriteResult(statusResultMap(res))
}
