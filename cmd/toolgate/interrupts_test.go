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
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestInFlightCancel(t *testing.T) {
	current := &inFlight{}
	if _, ok := current.Cancel(); ok {
		t.Fatal("expected nothing to cancel when idle")
	}

	ctx, cancel := context.WithCancel(context.Background())
	current.Begin("r7", cancel)
	requestID, ok := current.Cancel()
	if !ok || requestID != "r7" {
		t.Fatalf("expected to cancel r7, got %q %v", requestID, ok)
	}
	select {
	case <-ctx.Done():
	default:
		t.Fatal("expected context to be canceled")
	}

	current.End()
	if _, ok := current.Cancel(); ok {
		t.Fatal("expected nothing to cancel after End")
	}
}

func TestRouteInterrupt(t *testing.T) {
	tests := []struct {
		name      string
		busy      bool
		wantExit  bool
		wantInLog string
	}{
		{"request in flight", true, false, "r1"},
		{"idle", false, true, "exiting"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := &inFlight{}
			requestCtx, requestCancel := context.WithCancel(context.Background())
			defer requestCancel()
			if tt.busy {
				current.Begin("r1", requestCancel)
			}
			exitCtx, exit := context.WithCancel(context.Background())
			defer exit()

			var logs bytes.Buffer
			current.routeInterrupt(exit, zerolog.New(&logs))

			if exited := exitCtx.Err() != nil; exited != tt.wantExit {
				t.Fatalf("exit called = %v, expected %v", exited, tt.wantExit)
			}
			if cancelled := requestCtx.Err() != nil; cancelled != tt.busy {
				t.Fatalf("request cancelled = %v, expected %v", cancelled, tt.busy)
			}
			if !strings.Contains(logs.String(), tt.wantInLog) {
				t.Fatalf("expected %q in log, got %q", tt.wantInLog, logs.String())
			}
		})
	}
}
