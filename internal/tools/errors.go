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
	"errors"
	"fmt"

	apperrors "toolgate/internal/errors"
)

// Common tool errors
var (
	// ErrUnknownTool indicates the request names an operation kind the engine does not support.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrInvalidArguments indicates tool arguments are missing or malformed.
	ErrInvalidArguments = errors.New("invalid tool arguments")

	// ErrCommandNotAllowed indicates a command did not match any allowlist pattern.
	ErrCommandNotAllowed = errors.New("command not allowlisted")

	// ErrPathNotAllowed indicates a file target is outside the configured base directories.
	ErrPathNotAllowed = errors.New("path outside allowed base directories")

	// ErrCommandTimedOut indicates a command was stopped because its deadline passed.
	ErrCommandTimedOut = errors.New("command timed out")

	// ErrCommandCanceled indicates a command was stopped because its caller went away.
	ErrCommandCanceled = errors.New("command canceled")
)

// NewValidationError wraps a request shape problem.
func NewValidationError(toolName string, err error) *apperrors.Error {
	return apperrors.Wrap(apperrors.CodeValidation, fmt.Sprintf("invalid request for tool %q", toolName), err)
}

// NewPolicyError reports a refusal by the allowlist or path whitelist.
func NewPolicyError(toolName string, err error) *apperrors.Error {
	return apperrors.Wrap(apperrors.CodePolicy, fmt.Sprintf("request for tool %s refused by policy", toolName), err)
}

// NewToolExecutionError wraps a tool execution error with a shared error code.
func NewToolExecutionError(toolName ToolName, operation string, err error) *apperrors.Error {
	if operation != "" {
		return apperrors.Wrap(apperrors.CodeToolExecution, fmt.Sprintf("tool %s failed during %s", toolName, operation), err)
	}
	return apperrors.Wrap(apperrors.CodeToolExecution, fmt.Sprintf("tool %s failed", toolName), err)
}

// NewTimeoutError reports that a deadline or cancellation ended a request.
func NewTimeoutError(stage string, err error) *apperrors.Error {
	return apperrors.Wrap(apperrors.CodeTimeout, fmt.Sprintf("request timed out while %s", stage), err)
}
