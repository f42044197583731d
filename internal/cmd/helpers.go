package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"

	"github.com/towerops/towerctl/pkg/api"
	"github.com/towerops/towerctl/pkg/jobs"
	"github.com/towerops/towerctl/pkg/resource"
)

// flagName converts an API field name to a flag name.
func flagName(field string) string {
	return strings.ReplaceAll(field, "_", "-")
}

// addFieldFlags registers one string flag per declared field, except the
// excluded names.
func addFieldFlags(cmd *cobra.Command, desc *resource.Descriptor, exclude ...string) {
	skip := map[string]bool{}
	for _, name := range exclude {
		skip[name] = true
	}
	for _, f := range desc.Fields {
		if skip[f.Name] {
			continue
		}
		help := f.Help
		if help == "" {
			help = fmt.Sprintf("Value for the %s field", f.Name)
		}
		if f.Kind == resource.KindFile {
			help += " (path to a file; its contents are sent)"
		}
		cmd.Flags().String(flagName(f.Name), "", help)
	}
}

// collectFieldValues gathers the field flags the user actually set.
// File-kind fields name a path whose contents become the value.
func collectFieldValues(cmd *cobra.Command, desc *resource.Descriptor, exclude ...string) (map[string]string, error) {
	skip := map[string]bool{}
	for _, name := range exclude {
		skip[name] = true
	}
	values := map[string]string{}
	for _, f := range desc.Fields {
		if skip[f.Name] {
			continue
		}
		flag := flagName(f.Name)
		if !cmd.Flags().Changed(flag) {
			continue
		}
		raw, _ := cmd.Flags().GetString(flag)
		if f.Kind == resource.KindFile {
			contents, err := readFileValue(raw)
			if err != nil {
				return nil, err
			}
			raw = contents
		}
		values[f.Name] = raw
	}
	return values, nil
}

// readFileValue reads a file-kind field's contents.
func readFileValue(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", exitError(foundry.ExitFileNotFound, fmt.Sprintf("File %s does not exist", path), err)
		}
		return "", exitError(foundry.ExitFileReadError, fmt.Sprintf("Failed to read %s", path), err)
	}
	return string(b), nil
}

// parseID parses a positional primary-key argument.
func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || id <= 0 {
		return 0, exitError(foundry.ExitInvalidArgument,
			fmt.Sprintf("Invalid id %q", arg), fmt.Errorf("%w: id must be a positive integer", api.ErrValidation))
	}
	return id, nil
}

// filterByGlob keeps only the records whose name matches the pattern.
// Matching happens client-side, after the server responds.
func filterByGlob(page *resource.Page, pattern string) (*resource.Page, error) {
	if pattern == "" {
		return page, nil
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, exitError(foundry.ExitInvalidArgument,
			fmt.Sprintf("Invalid glob pattern %q", pattern), doublestar.ErrBadPattern)
	}
	out := &resource.Page{Next: page.Next, Previous: page.Previous}
	for _, rec := range page.Results {
		name := rec.GetString("name")
		ok, err := doublestar.Match(pattern, name)
		if err != nil {
			return nil, exitError(foundry.ExitInvalidArgument,
				fmt.Sprintf("Invalid glob pattern %q", pattern), err)
		}
		if ok {
			out.Results = append(out.Results, rec)
		}
	}
	out.Count = len(out.Results)
	return out, nil
}

// statusResultMap projects a StatusResult for rendering. Without detail
// the projection is exactly elapsed, failed, and status.
func statusResultMap(res *jobs.StatusResult) *api.OrderedMap {
	if res.Record != nil {
		return res.Record
	}
	m := api.NewOrderedMap()
	m.Set("elapsed", res.Elapsed)
	m.Set("failed", res.Failed)
	m.Set("status", string(res.Status))
	return m
}
