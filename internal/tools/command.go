// Copyright (C) 2025 Dyne.org foundation
// designed, written and maintained by Denis Roio <jaromil@dyne.org>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package tools

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

const (
	defaultShell = "sh"

	// commandWaitDelay bounds how long Wait lingers on inherited pipes after
	// the process group has been killed.
	commandWaitDelay = 2 * time.Second
)

// commandRunner runs command lines through a shell in their own process
// group, keeping at most maxOutput bytes of each stream.
type commandRunner struct {
	shell     string
	timeout   time.Duration
	maxOutput int64
}

func newCommandRunner(shell string, timeout time.Duration, maxOutput int64) commandRunner {
	if shell == "" {
		shell = defaultShell
	}
	if maxOutput <= 0 {
		maxOutput = defaultMaxOutputBytes
	}
	return commandRunner{shell: shell, timeout: timeout, maxOutput: maxOutput}
}

func (r commandRunner) run(ctx context.Context, op CommandOperation) (CommandOutput, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.shell, "-c", op.Command)
	cmd.Dir = op.WorkingDirectory
	stdout := newCappedBuffer(r.maxOutput)
	stderr := newCappedBuffer(r.maxOutput)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = commandWaitDelay
	configureProcessGroup(cmd)

	err := cmd.Run()
	output := CommandOutput{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		Truncated: stdout.truncated || stderr.truncated,
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return output, NewTimeoutError("running the command", fmt.Errorf("%w: %v", ErrCommandTimedOut, ctxErr))
		}
		return output, NewTimeoutError("running the command", fmt.Errorf("%w: %v", ErrCommandCanceled, ctxErr))
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		output.ExitCode = exitCode(exitErr.ProcessState)
	case errors.Is(err, exec.ErrWaitDelay), errors.Is(err, errOutputLimit):
		// The shell exited but a background child kept a pipe open, or the
		// command wrote past the cap and its output was cut.
		output.ExitCode = exitCode(cmd.ProcessState)
	default:
		return output, NewToolExecutionError(ToolExecuteBashCommand, "launch", err)
	}
	return output, nil
}
