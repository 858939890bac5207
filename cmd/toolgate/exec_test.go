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
	"testing"
)

func TestParseParams(t *testing.T) {
	tests := []struct {
		name     string
		json     string
		pairs    []string
		expected map[string]interface{}
		wantErr  bool
	}{
		{"pairs", "", []string{"command=ls -la", "working_directory=/tmp"}, map[string]interface{}{"command": "ls -la", "working_directory": "/tmp"}, false},
		{"value with equals", "", []string{"command=a=b"}, map[string]interface{}{"command": "a=b"}, false},
		{"empty value", "", []string{"content="}, map[string]interface{}{"content": ""}, false},
		{"json", `{"path":"a.txt","content":"x"}`, nil, map[string]interface{}{"path": "a.txt", "content": "x"}, false},
		{"pair overrides json", `{"path":"a.txt"}`, []string{"path=b.txt"}, map[string]interface{}{"path": "b.txt"}, false},
		{"missing equals", "", []string{"command"}, nil, true},
		{"empty key", "", []string{"=x"}, nil, true},
		{"bad json", "{", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseParams(tt.json, tt.pairs)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, got)
			}
			for key, value := range tt.expected {
				if got[key] != value {
					t.Fatalf("%s: expected %v, got %v", key, value, got[key])
				}
			}
		})
	}
}

func TestExecRequestGeneratesID(t *testing.T) {
	req, err := execOptions{toolName: "readFile", params: []string{"path=a"}}.request()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.RequestID == "" {
		t.Fatal("expected generated request id")
	}

	req, err = execOptions{requestID: "mine", toolName: "readFile"}.request()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.RequestID != "mine" {
		t.Fatalf("expected explicit id, got %q", req.RequestID)
	}
}
