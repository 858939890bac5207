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
	"fmt"
)

// Executor performs an operation the operator has already accepted.
type Executor interface {
	Execute(ctx context.Context, op Operation) (interface{}, error)
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, op Operation) (interface{}, error)

func (f ExecutorFunc) Execute(ctx context.Context, op Operation) (interface{}, error) {
	return f(ctx, op)
}

// HostExecutor runs operations against the real host.
type HostExecutor struct {
	commands commandRunner
	files    fileIO
}

// NewHostExecutor creates an executor using shell for commands.
func NewHostExecutor(shell string, timeouts TimeoutConfig, limits Limits) *HostExecutor {
	return &HostExecutor{
		commands: newCommandRunner(shell, timeouts.TimeoutForTool(ToolExecuteBashCommand), limits.MaxOutputBytes),
		files:    fileIO{limits: normalizeLimits(limits)},
	}
}

func (e *HostExecutor) Execute(ctx context.Context, op Operation) (interface{}, error) {
	switch o := op.(type) {
	case CommandOperation:
		return e.commands.run(ctx, o)
	case ReadFileOperation:
		return e.files.read(ctx, o)
	case WriteFileOperation:
		return e.files.write(ctx, o)
	default:
		return nil, fmt.Errorf("%w: unsupported operation %T", ErrUnknownTool, op)
	}
}
