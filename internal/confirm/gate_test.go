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
	"strings"
	"testing"

	"github.com/rs/zerolog"

	apperrors "toolgate/internal/errors"
)

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"y", true},
		{"Y", true},
		{"yes", true},
		{"  YES \n", true},
		{"", false},
		{"\n", false},
		{"n", false},
		{"no", false},
		{"yep", false},
		{"y es", false},
		{"sure", false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.input), func(t *testing.T) {
			if got := ParseAnswer(tt.input); got != tt.expected {
				t.Fatalf("ParseAnswer(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestGateMapsSourceOutcomes(t *testing.T) {
	tests := []struct {
		name     string
		source   SourceFunc
		accepted bool
		code     apperrors.Code
	}{
		{
			name:     "accept",
			source:   func(context.Context, Prompt) (bool, error) { return true, nil },
			accepted: true,
		},
		{
			name:   "decline",
			source: func(context.Context, Prompt) (bool, error) { return false, nil },
		},
		{
			name:   "eof declines",
			source: func(context.Context, Prompt) (bool, error) { return true, io.EOF },
		},
		{
			name:   "unavailable",
			source: func(context.Context, Prompt) (bool, error) { return true, fmt.Errorf("%w: no tty", ErrUnavailable) },
			code:   apperrors.CodeConfirmation,
		},
		{
			name:   "source failure",
			source: func(context.Context, Prompt) (bool, error) { return true, errors.New("broken pipe") },
			code:   apperrors.CodeConfirmation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := NewGate(tt.source, zerolog.Nop())
			decision, err := gate.Confirm(context.Background(), Prompt{RequestID: "r1", ToolName: "readFile"})
			if tt.code != "" {
				if !apperrors.Is(err, tt.code) {
					t.Fatalf("expected %s error, got %v", tt.code, err)
				}
				if decision.Accepted {
					t.Fatal("an error must never accept")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if decision.Accepted != tt.accepted {
				t.Fatalf("accepted = %v, want %v", decision.Accepted, tt.accepted)
			}
		})
	}
}

func TestGateCancelledContextIsTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	source := SourceFunc(func(ctx context.Context, _ Prompt) (bool, error) {
		cancel()
		<-ctx.Done()
		return true, ctx.Err()
	})
	gate := NewGate(source, zerolog.Nop())

	decision, err := gate.Confirm(ctx, Prompt{RequestID: "r1"})
	if !apperrors.Is(err, apperrors.CodeTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if decision.Accepted {
		t.Fatal("cancelled confirmation must not accept")
	}
}

func TestGateAlreadyCancelledSkipsSource(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	scripted := NewScriptedSource(true)
	gate := NewGate(scripted, zerolog.Nop())

	if _, err := gate.Confirm(ctx, Prompt{}); !apperrors.Is(err, apperrors.CodeTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if scripted.Calls() != 0 {
		t.Fatalf("expected source not to be asked, got %d calls", scripted.Calls())
	}
	if gate.Prompts() != 0 {
		t.Fatalf("expected no prompt counted, got %d", gate.Prompts())
	}
}

func TestGateCountsPrompts(t *testing.T) {
	gate := NewGate(AlwaysDecline(), zerolog.Nop())
	for i := 0; i < 3; i++ {
		if _, err := gate.Confirm(context.Background(), Prompt{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if gate.Prompts() != 3 {
		t.Fatalf("expected 3 prompts, got %d", gate.Prompts())
	}
}

func TestWriteDisclosureVerbatim(t *testing.T) {
	var out strings.Builder
	disclosure := "I will run:\n  rm -rf build/\nReason: clean"
	if err := writeDisclosure(&out, Prompt{Disclosure: disclosure}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != disclosure+"\n" {
		t.Fatalf("disclosure altered: %q", out.String())
	}

	out.Reset()
	if err := writeDisclosure(&out, Prompt{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected nothing for empty disclosure, got %q", out.String())
	}
}

func TestQuestionNamesRequest(t *testing.T) {
	q := questionFor(Prompt{RequestID: "abc", ToolName: "writeFile"})
	if !strings.Contains(q, "writeFile") || !strings.Contains(q, "abc") {
		t.Fatalf("question should name tool and request: %q", q)
	}
	if !strings.Contains(questionFor(Prompt{}), "unknown_tool") {
		t.Fatal("expected placeholder tool name")
	}
}

func TestScriptedSourceExhaustionDeclines(t *testing.T) {
	source := NewScriptedSource(true)
	first, _ := source.Decide(context.Background(), Prompt{RequestID: "a"})
	second, _ := source.Decide(context.Background(), Prompt{RequestID: "b"})
	if !first || second {
		t.Fatalf("expected accept then decline, got %v then %v", first, second)
	}
	prompts := source.Prompts()
	if len(prompts) != 2 || prompts[1].RequestID != "b" {
		t.Fatalf("unexpected recorded prompts: %+v", prompts)
	}
}

func TestClassifyReadlineError(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		err      error
		expected readlineAction
	}{
		{"answer", "y", nil, readlineAnswer},
		{"eof empty", "", io.EOF, readlineDecline},
		{"eof with partial", "y", io.EOF, readlineAnswer},
		{"other", "", errors.New("closed"), readlineFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyReadlineError(tt.line, tt.err); got != tt.expected {
				t.Fatalf("got %v, want %v", got, tt.expected)
			}
		})
	}
}
