package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/towerops/towerctl/internal/observability"
	"github.com/towerops/towerctl/pkg/api"
	"github.com/towerops/towerctl/pkg/resource"
)

// crudConfig declares a resource command group backed by the generic
// CRUD engine.
type crudConfig struct {
	// resource is the descriptor key in resource.Builtin().
	resource string

	// short is the group's one-line help.
	short string

	// modifyExclude lists fields that modify must not accept (fields
	// that act as identifiers rather than mutable attributes).
	modifyExclude []string
}

func (cc crudConfig) engine() *resource.Engine {
	return resource.NewEngine(apiClient, descriptors[cc.resource], observability.CLILogger)
}

// newResourceCommand builds a command group with create, modify, list,
// get, and delete backed by the resource's declared fields.
func newResourceCommand(cc crudConfig) *cobra.Command {
	group := &cobra.Command{
		Use:   cc.resource,
		Short: cc.short,
	}

	desc := resource.Builtin()[cc.resource]

	createCmd := &cobra.Command{
		Use:   "create",
		Short: fmt.Sprintf("Create a %s", cc.resource),
		RunE: func(cmd *cobra.Command, _ []string) error {
			values, err := collectFieldValues(cmd, desc)
			if err != nil {
				return err
			}
			result, err := cc.engine().Create(cmd.Context(), values)
			if err != nil {
				return err
			}
			result.Record.Set("changed", result.Changed)
			return resultWriter.WriteResult(result.Record)
		},
	}
	addFieldFlags(createCmd, desc)

	modifyCmd := &cobra.Command{
		Use:   "modify <id>",
		Short: fmt.Sprintf("Modify a %s", cc.resource),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			values, err := collectFieldValues(cmd, desc, cc.modifyExclude...)
			if err != nil {
				return err
			}
			record, err := cc.engine().Modify(cmd.Context(), id, values)
			if err != nil {
				return err
			}
			return resultWriter.WriteResult(record)
		},
	}
	addFieldFlags(modifyCmd, desc, cc.modifyExclude...)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %ss", cc.resource),
		RunE: func(cmd *cobra.Command, _ []string) error {
			filters, err := collectFieldValues(cmd, desc)
			if err != nil {
				return err
			}
			page, err := cc.engine().List(cmd.Context(), filters)
			if err != nil {
				return err
			}
			glob, _ := cmd.Flags().GetString("glob")
			page, err = filterByGlob(page, glob)
			if err != nil {
				return err
			}
			return resultWriter.WriteList(desc.Fields, page)
		},
	}
	addFieldFlags(listCmd, desc)
	listCmd.Flags().String("glob", "", "Keep only results whose name matches this glob (client-side)")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: fmt.Sprintf("Show one %s", cc.resource),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			record, err := cc.engine().Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return resultWriter.WriteResult(record)
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: fmt.Sprintf("Delete a %s", cc.resource),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			changed, err := cc.engine().Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := api.NewOrderedMap()
			out.Set("changed", changed)
			return resultWriter.WriteResult(out)
		},
	}

	group.AddCommand(createCmd, modifyCmd, listCmd, getCmd, deleteCmd)
	return group
}
