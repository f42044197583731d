package jobs

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/term"
)

// Prompter is the interactive input capability the orchestrator depends
// on. Launch needs a terminal for run-time passwords and, on templates
// that ask for variables, an edit session. Modeling it as an interface
// keeps the orchestrator testable without a real terminal.
type Prompter interface {
	// Password asks for the named run-time password. Input is never echoed.
	Password(name string) (string, error)

	// EditText opens an interactive edit session seeded with initial and
	// returns the edited text.
	EditText(initial string) (string, error)
}

// TerminalPrompter prompts on the controlling terminal and edits via
// $EDITOR (falling back to vi).
type TerminalPrompter struct{}

func (TerminalPrompter) Password(name string) (string, error) {
	fmt.Fprintf(os.Stderr, "Password for %s: ", name)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password for %s: %w", name, err)
	}
	return string(b), nil
}

func (TerminalPrompter) EditText(initial string) (string, error) {
	f, err := os.CreateTemp("", "towerctl-vars-*.yml")
	if err != nil {
		return "", fmt.Errorf("create edit buffer: %w", err)
	}
	path := f.Name()
	defer func() { _ = os.Remove(path) }()

	if _, err := f.WriteString(initial); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("seed edit buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close edit buffer: %w", err)
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	cmd := exec.Command(editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("run editor %s: %w", editor, err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read edit buffer: %w", err)
	}
	return string(b), nil
}
