package cmd

var jobTemplateCmd = newResourceCommand(crudConfig{
	resource: "job_template",
	short:    "Manage job templates",
})

func init() {
	rootCmd.AddCommand(jobTemplateCmd)
}
