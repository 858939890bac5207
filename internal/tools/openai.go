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
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// disclosureArgKey lets a model embed the disclosure in the call arguments
// when the orchestrator does not supply one separately.
const disclosureArgKey = "icerc_full_text"

// OpenAITools returns every tool as an OpenAI function tool.
func OpenAITools() []openai.Tool {
	defs := Definitions()
	out := make([]openai.Tool, 0, len(defs))
	for _, def := range defs {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        string(def.Name),
				Description: def.Description,
				Parameters:  def.Parameters,
			},
		})
	}
	return out
}

// RequestFromToolCall converts an OpenAI tool call into a ToolRequest. The
// call id becomes the request id. When disclosure is empty it is taken from
// the icerc_full_text argument, which is then removed from the parameters.
// On error the returned request still carries the id and name so a result
// can echo them.
func RequestFromToolCall(call openai.ToolCall, disclosure string) (ToolRequest, error) {
	req := ToolRequest{
		RequestID:      call.ID,
		ToolName:       call.Function.Name,
		Parameters:     map[string]interface{}{},
		DisclosureText: disclosure,
	}
	if call.Function.Name == "" {
		return req, NewValidationError("", fmt.Errorf("%w: tool call missing function name", ErrInvalidArguments))
	}
	if call.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Function.Arguments), &req.Parameters); err != nil {
			return req, NewValidationError(call.Function.Name, fmt.Errorf("%w: %v", ErrInvalidArguments, err))
		}
	}
	if embedded, ok := req.Parameters[disclosureArgKey]; ok {
		delete(req.Parameters, disclosureArgKey)
		if text, isString := embedded.(string); isString && req.DisclosureText == "" {
			req.DisclosureText = text
		}
	}
	return req, nil
}

// ToolMessage renders result as the tool message answering its call.
func ToolMessage(result ToolResult) (openai.ChatCompletionMessage, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return openai.ChatCompletionMessage{}, fmt.Errorf("failed to encode tool result: %w", err)
	}
	return openai.ChatCompletionMessage{
		Role:       openai.ChatMessageRoleTool,
		Content:    string(raw),
		Name:       result.ToolName,
		ToolCallID: result.RequestID,
	}, nil
}
