package shared

import (
	"fmt"
	"strings"
)

// DryRunAction represents an action type in dry-run output.
type DryRunAction string

const (
	// DryRunActionCreate indicates a file would be created.
	DryRunActionCreate DryRunAction = "CREATE"
	// DryRunActionModify indicates a file would be modified.
	DryRunActionModify DryRunAction = "MODIFY"
	// DryRunActionDelete indicates a file would be deleted.
	DryRunActionDelete DryRunAction = "DELETE"
)

// DryRunOutput formats check-mode output in a consistent way across commands.
// It shows what a real run would do without doing it.
type DryRunOutput struct {
	actions []string
	command string
}

// NewDryRunOutput creates a new dry-run output formatter. command is the
// invocation that applies the listed actions.
func NewDryRunOutput(command string) *DryRunOutput {
	return &DryRunOutput{
		actions: make([]string, 0),
		command: command,
	}
}

// DryRunCreate adds a CREATE action to the dry-run output.
func (d *DryRunOutput) DryRunCreate(path string) {
	d.actions = append(d.actions, fmt.Sprintf("%s: %s", DryRunActionCreate, path))
}

// DryRunModify adds a MODIFY action to the dry-run output.
// The description should briefly explain what would change.
func (d *DryRunOutput) DryRunModify(path, description string) {
	if description == "" {
		d.actions = append(d.actions, fmt.Sprintf("%s: %s", DryRunActionModify, path))
		return
	}
	d.actions = append(d.actions, fmt.Sprintf("%s: %s (%s)", DryRunActionModify, path, description))
}

// DryRunDelete adds a DELETE action to the dry-run output.
func (d *DryRunOutput) DryRunDelete(path string) {
	d.actions = append(d.actions, fmt.Sprintf("%s: %s", DryRunActionDelete, path))
}

// Len returns the number of recorded actions.
func (d *DryRunOutput) Len() int {
	return len(d.actions)
}

// String returns the formatted dry-run output.
// Format:
//
//	Generated workflows are out of date:
//
//	CREATE: .github/workflows/release.yml
//	MODIFY: .github/workflows/test.yml (workflow test)
//	DELETE: .github/workflows/old.yml
//
//	Run `go run ./cmd/flowgen` to update them.
func (d *DryRunOutput) String() string {
	if len(d.actions) == 0 {
		return "Generated workflows are up to date."
	}

	var sb strings.Builder
	sb.WriteString("Generated workflows are out of date:\n\n")

	for _, action := range d.actions {
		sb.WriteString(action)
		sb.WriteString("\n")
	}

	if d.command != "" {
		fmt.Fprintf(&sb, "\nRun `%s` to update them.", d.command)
	}

	return strings.TrimRight(sb.String(), "\n")
}
