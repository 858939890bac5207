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

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"toolgate/internal/confirm"
	"toolgate/internal/tools"
)

// maxLineBytes bounds one JSON request line.
const maxLineBytes = 64 << 20

func runCmd() *cobra.Command {
	var operatorInput string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Read JSON Lines requests on stdin and write one result per line to stdout",
		Long: `Each stdin line is a tool request:
  {"request_id":"r1","tool_name":"readFile","parameters":{"path":"notes.txt"},"icerc_full_text":"..."}
The operator is prompted on the controlling terminal. Ctrl-C abandons the
request in flight, or exits when nothing is in flight.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
			defer stop()

			var source confirm.Source
			if operatorInput != "" {
				file, err := os.Open(operatorInput)
				if err != nil {
					return fmt.Errorf("failed to open operator input: %w", err)
				}
				defer file.Close()
				source = confirm.NewReaderSource(file, cmd.ErrOrStderr())
			}

			rt, err := setup(ctx, cmd, source)
			if err != nil {
				return err
			}
			defer rt.Close(context.Background())

			current := &inFlight{}
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()
			stopInterrupts := current.watchInterrupts(cancel, rt.logger)
			defer stopInterrupts()

			return processStream(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), rt.engine, current, rt.logger)
		},
	}
	cmd.Flags().StringVar(&operatorInput, "operator-input", "", "read operator answers from this file or FIFO instead of the terminal")
	return cmd
}

type requestEngine interface {
	Execute(ctx context.Context, req tools.ToolRequest) tools.ToolResult
}

// processStream handles requests one line at a time until in is exhausted or
// ctx is cancelled. Every non-blank line yields exactly one result line.
func processStream(ctx context.Context, in io.Reader, out io.Writer, engine requestEngine, current *inFlight, logger zerolog.Logger) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				readErr <- nil
				return
			}
		}
		readErr <- scanner.Err()
	}()

	encoder := json.NewEncoder(out)
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return fmt.Errorf("error reading requests: %w", err)
				}
				return nil
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			result := handleLine(ctx, line, engine, current, logger)
			if err := encoder.Encode(result); err != nil {
				return fmt.Errorf("failed to write result: %w", err)
			}
		}
	}
}

func handleLine(ctx context.Context, line string, engine requestEngine, current *inFlight, logger zerolog.Logger) tools.ToolResult {
	var req tools.ToolRequest
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		logger.Warn().Err(err).Msg("Malformed request line")
		return tools.Failure(req, tools.NewValidationError(req.ToolName,
			fmt.Errorf("%w: malformed request: %v", tools.ErrInvalidArguments, err)))
	}

	opCtx, cancel := context.WithCancel(ctx)
	current.Begin(req.RequestID, cancel)
	defer func() {
		current.End()
		cancel()
	}()
	return engine.Execute(opCtx, req)
}
