package jobs

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/towerops/towerctl/pkg/api"
)

// editHeader is prepended to the template's current variables when an
// interactive edit session opens.
const editHeader = "# Specify extra variables (if any) here.\n" +
	"# Lines beginning with \"#\" are ignored.\n"

// stripComments drops lines beginning with '#'.
func stripComments(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "#") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// validateExtraVars checks that extra variables parse as a YAML document.
// Extra vars are YAML (of which JSON is a subset), and the server rejects
// malformed payloads late with an opaque error, so catch it client-side.
func validateExtraVars(text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var doc any
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return fmt.Errorf("%w: extra variables are not valid YAML: %v", api.ErrValidation, err)
	}
	return nil
}

// appendExtraVars appends supplied variables to a template's existing
// extra_vars text.
func appendExtraVars(existing, extra string) string {
	if strings.TrimSpace(existing) == "" {
		return extra
	}
	if strings.HasSuffix(existing, "\n") {
		return existing + extra
	}
	return existing + "\n" + extra
}
