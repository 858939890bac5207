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

// DryRunExecutor reports what would happen without touching the host.
// Commands are not spawned and files are not opened.
type DryRunExecutor struct {
	files fileIO
}

// NewDryRunExecutor creates a simulating executor. The limits are applied
// to simulated writes so oversize content is still reported.
func NewDryRunExecutor(limits Limits) *DryRunExecutor {
	return &DryRunExecutor{files: fileIO{limits: normalizeLimits(limits)}}
}

func (e *DryRunExecutor) Execute(ctx context.Context, op Operation) (interface{}, error) {
	if err := ensureContext(ctx); err != nil {
		return nil, err
	}
	switch o := op.(type) {
	case CommandOperation:
		return CommandOutput{
			Stdout:    "[dry-run] would run: " + o.Command,
			Simulated: true,
		}, nil
	case ReadFileOperation:
		return ReadFileOutput{FilePath: o.Path, Simulated: true}, nil
	case WriteFileOperation:
		data, err := e.files.encode(o)
		if err != nil {
			return nil, err
		}
		return WriteFileOutput{
			FilePath:     o.Path,
			Message:      fmt.Sprintf("dry run: would write %d bytes to %s", len(data), o.Path),
			BytesWritten: len(data),
			Simulated:    true,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported operation %T", ErrUnknownTool, op)
	}
}
