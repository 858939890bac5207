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
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"toolgate/internal/tools"
)

type execOptions struct {
	requestID  string
	toolName   string
	params     []string
	paramsJSON string
	disclosure string
}

func execCmd() *cobra.Command {
	var opts execOptions
	cmd := &cobra.Command{
		Use:   "exec",
		Short: "Run a single tool request built from flags and print its result",
		Example: `  toolgate exec --tool executeBashCommand --param command="ls -la" --disclosure "List the project files"
  toolgate exec --tool writeFile --params-json '{"path":"a.txt","content":"hello"}'`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := opts.request()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			rt, err := setup(ctx, cmd, nil)
			if err != nil {
				return err
			}
			defer rt.Close(context.Background())

			result := rt.engine.Execute(ctx, req)
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(result); err != nil {
				return err
			}
			if result.Status == tools.StatusError {
				return fmt.Errorf("request %s failed", result.RequestID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.requestID, "id", "", "request id (generated when empty)")
	cmd.Flags().StringVar(&opts.toolName, "tool", "", "tool name: executeBashCommand, readFile or writeFile")
	cmd.Flags().StringArrayVar(&opts.params, "param", nil, "parameter as key=value (repeatable)")
	cmd.Flags().StringVar(&opts.paramsJSON, "params-json", "", "parameters as a JSON object")
	cmd.Flags().StringVar(&opts.disclosure, "disclosure", "", "text shown to the operator before asking")
	_ = cmd.MarkFlagRequired("tool")
	return cmd
}

func (o execOptions) request() (tools.ToolRequest, error) {
	params, err := parseParams(o.paramsJSON, o.params)
	if err != nil {
		return tools.ToolRequest{}, err
	}
	id := o.requestID
	if id == "" {
		id = uuid.NewString()
	}
	return tools.ToolRequest{
		RequestID:      id,
		ToolName:       o.toolName,
		Parameters:     params,
		DisclosureText: o.disclosure,
	}, nil
}

// parseParams merges a JSON object with key=value pairs; pairs win.
func parseParams(rawJSON string, pairs []string) (map[string]interface{}, error) {
	params := map[string]interface{}{}
	if strings.TrimSpace(rawJSON) != "" {
		if err := json.Unmarshal([]byte(rawJSON), &params); err != nil {
			return nil, fmt.Errorf("invalid --params-json: %w", err)
		}
	}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q: expected key=value", pair)
		}
		params[key] = value
	}
	return params, nil
}
