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
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"toolgate/internal/confirm"
	"toolgate/internal/tools"
)

func runLines(t *testing.T, source confirm.Source, input string) []map[string]interface{} {
	t.Helper()
	gate := confirm.NewGate(source, zerolog.Nop())
	engine := tools.NewEngine(gate, tools.Options{Logger: zerolog.Nop()})

	var out bytes.Buffer
	if err := processStream(context.Background(), strings.NewReader(input), &out, engine, &inFlight{}, zerolog.Nop()); err != nil {
		t.Fatalf("processStream failed: %v", err)
	}

	var results []map[string]interface{}
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var result map[string]interface{}
		if err := json.Unmarshal(scanner.Bytes(), &result); err != nil {
			t.Fatalf("output line is not json: %q", scanner.Text())
		}
		results = append(results, result)
	}
	return results
}

func TestProcessStreamOneResultPerRequest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	input := strings.Join([]string{
		`{"request_id":"r1","tool_name":"writeFile","parameters":{"path":"` + path + `","content":"hello"},"icerc_full_text":"write"}`,
		"",
		`{"request_id":"r2","tool_name":"executeBashCommand","parameters":{"command":"exit 3"}}`,
		`{"request_id":"r3","tool_name":"readFile","parameters":{"path":"` + path + `"}}`,
	}, "\n")

	results := runLines(t, confirm.NewScriptedSource(true, true, false), input)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	expected := []struct {
		id     string
		status string
	}{
		{"r1", "success"},
		{"r2", "success"},
		{"r3", "declined_by_user"},
	}
	for i, want := range expected {
		if results[i]["request_id"] != want.id || results[i]["status"] != want.status {
			t.Fatalf("result %d: expected %s/%s, got %v", i, want.id, want.status, results[i])
		}
	}
	if code := results[1]["data"].(map[string]interface{})["exit_code"]; code != float64(3) {
		t.Fatalf("expected exit_code 3, got %v", code)
	}
}

func TestProcessStreamMalformedLine(t *testing.T) {
	results := runLines(t, confirm.AlwaysAccept(), "{not json}\n"+`{"request_id":"ok","tool_name":"nope"}`+"\n")
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0]["request_id"] != "" || results[0]["status"] != "error" {
		t.Fatalf("unexpected malformed result %v", results[0])
	}
	if code := results[0]["data"].(map[string]interface{})["code"]; code != "validation" {
		t.Fatalf("expected validation code, got %v", code)
	}
	if results[1]["request_id"] != "ok" || results[1]["tool_name"] != "nope" {
		t.Fatalf("unexpected echo %v", results[1])
	}
}

func TestProcessStreamStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gate := confirm.NewGate(confirm.AlwaysAccept(), zerolog.Nop())
	engine := tools.NewEngine(gate, tools.Options{Logger: zerolog.Nop()})

	reader, writer := io.Pipe()
	defer writer.Close()
	var out bytes.Buffer
	if err := processStream(ctx, reader, &out, engine, &inFlight{}, zerolog.Nop()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}

func TestHandleLineTracksRequestInFlight(t *testing.T) {
	current := &inFlight{}
	var cancelled string
	engine := engineFunc(func(ctx context.Context, req tools.ToolRequest) tools.ToolResult {
		cancelled, _ = current.Cancel()
		<-ctx.Done()
		return tools.Failure(req, tools.NewTimeoutError("test", ctx.Err()))
	})

	result := handleLine(context.Background(), `{"request_id":"x","tool_name":"readFile"}`, engine, current, zerolog.Nop())
	if cancelled != "x" {
		t.Fatalf("expected request x to be in flight, got %q", cancelled)
	}
	if result.Status != tools.StatusError {
		t.Fatalf("unexpected result %+v", result)
	}
	if _, ok := current.Cancel(); ok {
		t.Fatal("expected nothing in flight after the request")
	}
}

type engineFunc func(ctx context.Context, req tools.ToolRequest) tools.ToolResult

func (f engineFunc) Execute(ctx context.Context, req tools.ToolRequest) tools.ToolResult {
	return f(ctx, req)
}
