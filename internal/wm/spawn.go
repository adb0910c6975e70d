package wm

import (
	"fmt"
	"os/exec"
)

// ShellLauncher runs command lines through /bin/sh. The wrapper backgrounds
// the command, merges its stderr into stdout, and prefixes every output line
// so spawned-process chatter is attributable in the manager's own log stream.
type ShellLauncher struct{}

func (ShellLauncher) Run(cmdline string) error {
	wrapped := fmt.Sprintf("(%s 2>&1) | sed 's/^/spawned process: /' &", cmdline)
	cmd := exec.Command("/bin/sh", "-c", wrapped)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %q: %w", cmdline, err)
	}
	// The shell exits immediately after backgrounding the pipeline; waiting
	// here reaps it without blocking on the spawned process itself.
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("run %q: %w", cmdline, err)
	}
	return nil
}
