package cmd

var credentialCmd = newResourceCommand(crudConfig{
	resource: "credential",
	short:    "Manage credentials",
})

func init() {
	rootCmd.AddCommand(credentialCmd)
}
