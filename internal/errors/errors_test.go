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

package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	base := stderrors.New("disk full")
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{"message and cause", Wrap(CodeToolExecution, "write failed", base), "write failed: disk full"},
		{"message only", New(CodePolicy, "command not allowlisted"), "command not allowlisted"},
		{"cause only", &Error{Code: CodeInternal, Err: base}, "disk full"},
		{"code only", &Error{Code: CodeTimeout}, "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestCodeOfWrapped(t *testing.T) {
	inner := New(CodeValidation, "missing or invalid 'path' parameter")
	outer := fmt.Errorf("readFile: %w", inner)

	if CodeOf(outer) != CodeValidation {
		t.Fatalf("expected validation code, got %s", CodeOf(outer))
	}
	if !Is(outer, CodeValidation) {
		t.Fatal("expected Is to match validation code")
	}
	if Is(outer, CodePolicy) {
		t.Fatal("did not expect policy code")
	}
	if CodeOf(stderrors.New("plain")) != CodeInternal {
		t.Fatal("expected uncoded errors to map to internal")
	}
}

func TestUnwrap(t *testing.T) {
	base := stderrors.New("boom")
	err := Wrap(CodeToolExecution, "run", base)
	if !stderrors.Is(err, base) {
		t.Fatal("errors.Is should unwrap to base error")
	}
}
