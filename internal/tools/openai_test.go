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
	"encoding/json"
	"testing"

	"github.com/sashabaranov/go-openai"

	apperrors "toolgate/internal/errors"
)

func TestOpenAIToolsMatchDefinitions(t *testing.T) {
	defs := OpenAITools()
	if len(defs) != 3 {
		t.Fatalf("expected 3 tools, got %d", len(defs))
	}
	for _, def := range defs {
		if def.Type != openai.ToolTypeFunction || def.Function == nil {
			t.Fatalf("unexpected tool %#v", def)
		}
		if !ToolName(def.Function.Name).Known() {
			t.Fatalf("unexpected tool name %q", def.Function.Name)
		}
	}
}

func TestRequestFromToolCall(t *testing.T) {
	call := openai.ToolCall{
		ID:   "call_1",
		Type: openai.ToolTypeFunction,
		Function: openai.FunctionCall{
			Name:      "readFile",
			Arguments: `{"path":"notes.txt","icerc_full_text":"Intent: read notes"}`,
		},
	}

	req, err := RequestFromToolCall(call, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.RequestID != "call_1" || req.ToolName != "readFile" {
		t.Fatalf("unexpected identity: %+v", req)
	}
	if req.DisclosureText != "Intent: read notes" {
		t.Fatalf("expected embedded disclosure, got %q", req.DisclosureText)
	}
	if _, ok := req.Parameters["icerc_full_text"]; ok {
		t.Fatal("disclosure should be removed from parameters")
	}
	if req.Parameters["path"] != "notes.txt" {
		t.Fatalf("unexpected parameters: %v", req.Parameters)
	}

	req, err = RequestFromToolCall(call, "explicit")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.DisclosureText != "explicit" {
		t.Fatalf("explicit disclosure should win, got %q", req.DisclosureText)
	}
}

func TestRequestFromToolCallInvalidArguments(t *testing.T) {
	call := openai.ToolCall{ID: "call_2", Function: openai.FunctionCall{Name: "writeFile", Arguments: "{not json"}}
	req, err := RequestFromToolCall(call, "")
	if !apperrors.Is(err, apperrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	result := Failure(req, err)
	if result.RequestID != "call_2" || result.ToolName != "writeFile" {
		t.Fatalf("failure should echo the call: %+v", result)
	}
}

func TestToolMessage(t *testing.T) {
	result := Declined(ToolRequest{RequestID: "call_3", ToolName: "writeFile"})
	msg, err := ToolMessage(result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Role != openai.ChatMessageRoleTool || msg.ToolCallID != "call_3" {
		t.Fatalf("unexpected message: %+v", msg)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(msg.Content), &decoded); err != nil {
		t.Fatalf("content is not json: %v", err)
	}
	if decoded["status"] != "declined_by_user" {
		t.Fatalf("unexpected status: %v", decoded["status"])
	}
}
