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

// Package confirm implements the blocking operator confirmation step that
// every tool request must pass before it runs.
package confirm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"

	apperrors "toolgate/internal/errors"
)

// ErrUnavailable indicates no operator can be reached to answer a prompt.
var ErrUnavailable = errors.New("no operator available for confirmation")

// Prompt is what the operator is asked about.
type Prompt struct {
	RequestID  string
	ToolName   string
	Disclosure string
}

// Decision is the operator's answer for exactly one prompt.
type Decision struct {
	Accepted bool
}

// Source obtains one decision from an operator. Implementations render the
// disclosure verbatim and block until an answer, an error, or ctx is done.
type Source interface {
	Decide(ctx context.Context, prompt Prompt) (bool, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, prompt Prompt) (bool, error)

func (f SourceFunc) Decide(ctx context.Context, prompt Prompt) (bool, error) {
	return f(ctx, prompt)
}

// Gate wraps a Source with fail-closed decision mapping.
type Gate struct {
	source  Source
	logger  zerolog.Logger
	prompts atomic.Int64
}

// NewGate creates a gate around source.
func NewGate(source Source, logger zerolog.Logger) *Gate {
	return &Gate{source: source, logger: logger}
}

// Confirm asks the operator about prompt. End of input declines. A cancelled
// or expired ctx yields a timeout error, an unreachable operator a
// confirmation error; neither is ever an acceptance.
func (g *Gate) Confirm(ctx context.Context, prompt Prompt) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return Decision{}, apperrors.Wrap(apperrors.CodeTimeout, "confirmation was not obtained in time", err)
	}
	g.prompts.Add(1)

	accepted, err := g.source.Decide(ctx, prompt)
	if ctxErr := ctx.Err(); ctxErr != nil {
		g.logger.Warn().Str("request_id", prompt.RequestID).Err(ctxErr).Msg("Confirmation abandoned")
		return Decision{}, apperrors.Wrap(apperrors.CodeTimeout, "confirmation was not obtained in time", ctxErr)
	}
	switch {
	case err == nil:
	case errors.Is(err, io.EOF):
		accepted = false
	case errors.Is(err, ErrUnavailable):
		return Decision{}, apperrors.Wrap(apperrors.CodeConfirmation, "operator confirmation unavailable", err)
	default:
		return Decision{}, apperrors.Wrap(apperrors.CodeConfirmation, "failed to obtain operator confirmation", err)
	}

	g.logger.Info().
		Str("request_id", prompt.RequestID).
		Str("tool_name", prompt.ToolName).
		Bool("accepted", accepted).
		Msg("Operator decision")
	return Decision{Accepted: accepted}, nil
}

// Prompts returns how many prompts the gate has put to its source.
func (g *Gate) Prompts() int64 {
	return g.prompts.Load()
}

// ParseAnswer reports whether line is an explicit affirmative. Everything
// else, including empty input, is a decline.
func ParseAnswer(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func writeDisclosure(w io.Writer, prompt Prompt) error {
	if prompt.Disclosure == "" {
		return nil
	}
	if _, err := io.WriteString(w, prompt.Disclosure); err != nil {
		return err
	}
	if !strings.HasSuffix(prompt.Disclosure, "\n") {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

func questionFor(prompt Prompt) string {
	name := prompt.ToolName
	if name == "" {
		name = "unknown_tool"
	}
	if prompt.RequestID == "" {
		return fmt.Sprintf("Allow %s? [y/N]: ", name)
	}
	return fmt.Sprintf("Allow %s (request %s)? [y/N]: ", name, prompt.RequestID)
}
