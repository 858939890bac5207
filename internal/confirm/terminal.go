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

package confirm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

// DefaultTTYPath is the controlling terminal. Prompts go there because
// stdin and stdout may carry the request stream.
const DefaultTTYPath = "/dev/tty"

// TerminalSource prompts on the controlling terminal with readline.
type TerminalSource struct {
	ttyPath string
}

// NewTerminalSource creates a source bound to the controlling terminal.
func NewTerminalSource() *TerminalSource {
	return &TerminalSource{ttyPath: DefaultTTYPath}
}

// TerminalAvailable reports whether a controlling terminal can be opened.
func TerminalAvailable() bool {
	tty, err := os.OpenFile(DefaultTTYPath, os.O_RDWR, 0)
	if err != nil {
		return false
	}
	defer tty.Close()
	return term.IsTerminal(int(tty.Fd()))
}

func (s *TerminalSource) Decide(ctx context.Context, prompt Prompt) (bool, error) {
	tty, err := os.OpenFile(s.ttyPath, os.O_RDWR, 0)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer tty.Close()

	fd := int(tty.Fd())
	if !term.IsTerminal(fd) {
		return false, fmt.Errorf("%w: %s is not a terminal", ErrUnavailable, s.ttyPath)
	}

	if err := writeDisclosure(tty, prompt); err != nil {
		return false, fmt.Errorf("failed to render disclosure: %w", err)
	}

	var rawState *term.State
	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 questionFor(prompt),
		Stdin:                  tty,
		Stdout:                 tty,
		Stderr:                 tty,
		HistoryLimit:           -1,
		DisableAutoSaveHistory: true,
		InterruptPrompt:        "^C",
		EOFPrompt:              "no",
		FuncIsTerminal:         func() bool { return true },
		FuncMakeRaw: func() error {
			state, err := term.MakeRaw(fd)
			if err != nil {
				return err
			}
			rawState = state
			return nil
		},
		FuncExitRaw: func() error {
			if rawState == nil {
				return nil
			}
			return term.Restore(fd, rawState)
		},
		FuncGetWidth: func() int {
			width, _, err := term.GetSize(fd)
			if err != nil || width <= 0 {
				return 80
			}
			return width
		},
	})
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer rl.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			rl.Close()
		case <-done:
		}
	}()

	line, err := rl.Readline()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, ctxErr
	}
	switch classifyReadlineError(line, err) {
	case readlineAnswer:
		return ParseAnswer(line), nil
	case readlineDecline:
		return false, nil
	default:
		return false, err
	}
}

type readlineAction int

const (
	readlineAnswer readlineAction = iota
	readlineDecline
	readlineFailed
)

// classifyReadlineError maps readline outcomes onto the gate's fail-closed
// rules: interrupt and end of input are answers, and both mean no.
func classifyReadlineError(line string, err error) readlineAction {
	switch {
	case err == nil:
		return readlineAnswer
	case errors.Is(err, readline.ErrInterrupt):
		return readlineDecline
	case errors.Is(err, io.EOF):
		if strings.TrimSpace(line) == "" {
			return readlineDecline
		}
		return readlineAnswer
	default:
		return readlineFailed
	}
}
