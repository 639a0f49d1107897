package guard

import (
	"context"
	"os/exec"

	"go.dw1.io/x/exp/rendersec"
)

// Command is [exec.Command], checked as an [rendersec.Exec] of name. On
// denial the returned command carries the error in Err, so Start, Run and
// Output fail without spawning anything.
func Command(ctx context.Context, name string, args ...string) *exec.Cmd {
	cmd := exec.Command(name, args...)
	if err := rendersec.Check(ctx, rendersec.Exec{Command: name}); err != nil {
		cmd.Err = err
	}

	return cmd
}

// CommandContext is like Command but the process is killed when ctx is done.
func CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	if err := rendersec.Check(ctx, rendersec.Exec{Command: name}); err != nil {
		cmd.Err = err
	}

	return cmd
}

// LookPath is [exec.LookPath]. Resolving a program is checked as executing
// it, since the result is only useful for that.
func LookPath(ctx context.Context, file string) (string, error) {
	if err := rendersec.Check(ctx, rendersec.Exec{Command: file}); err != nil {
		return "", err
	}

	return exec.LookPath(file)
}
