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
	"testing"
)

func schemaProperties(t *testing.T, params map[string]interface{}) map[string]interface{} {
	t.Helper()
	props, ok := params["properties"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected properties object, got %#v", params["properties"])
	}
	return props
}

func schemaRequired(params map[string]interface{}) map[string]bool {
	required := map[string]bool{}
	list, _ := params["required"].([]interface{})
	for _, item := range list {
		if name, ok := item.(string); ok {
			required[name] = true
		}
	}
	return required
}

func TestDefinitionsCoverEveryTool(t *testing.T) {
	defs := Definitions()
	if len(defs) != len(ToolNames) {
		t.Fatalf("expected %d definitions, got %d", len(ToolNames), len(defs))
	}
	for i, def := range defs {
		if def.Name != ToolNames[i] {
			t.Fatalf("definition %d: expected %s, got %s", i, ToolNames[i], def.Name)
		}
		if def.Description == "" {
			t.Fatalf("definition %s has no description", def.Name)
		}
	}
}

func TestSchemaParametersFields(t *testing.T) {
	tests := []struct {
		name     ToolName
		params   map[string]interface{}
		present  []string
		required []string
		optional []string
	}{
		{
			name:     ToolExecuteBashCommand,
			params:   mustSchemaParametersFor[CommandOperation](),
			present:  []string{"command", "working_directory"},
			required: []string{"command"},
			optional: []string{"working_directory"},
		},
		{
			name:     ToolReadFile,
			params:   mustSchemaParametersFor[ReadFileOperation](),
			present:  []string{"path", "encoding"},
			required: []string{"path"},
			optional: []string{"encoding"},
		},
		{
			name:     ToolWriteFile,
			params:   mustSchemaParametersFor[WriteFileOperation](),
			present:  []string{"path", "content", "encoding", "mode"},
			required: []string{"path", "content"},
			optional: []string{"encoding", "mode"},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			props := schemaProperties(t, tt.params)
			for _, key := range tt.present {
				if _, ok := props[key]; !ok {
					t.Fatalf("expected property %q", key)
				}
			}
			required := schemaRequired(tt.params)
			for _, key := range tt.required {
				if !required[key] {
					t.Fatalf("expected %q to be required, got %v", key, tt.params["required"])
				}
			}
			for _, key := range tt.optional {
				if required[key] {
					t.Fatalf("did not expect %q to be required", key)
				}
			}
		})
	}
}
