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

package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"toolgate/internal/tools"
)

// Key documents one configuration key.
type Key struct {
	Name        string
	Flag        string
	Description string
	Example     interface{}
}

// Keys lists every configuration key in the order they are documented.
func Keys() []Key {
	return []Key{
		{"allowlist_file", "allowlist", "File of command patterns ('*' any run, '?' one character) matched against the whole command line. When set, commands matching no pattern are refused before the operator is asked. An empty file refuses every command. 'ls*' also admits 'ls; rm -rf ~', so prefer exact patterns.", ""},
		{"dry_run", "dry-run", "Confirm requests normally but simulate every operation.", false},
		{"shell", "shell", "Shell used as '<shell> -c <command>'.", DefaultShell},
		{"command_timeout", "command-timeout", "Kill the command's process group after this long. 0 disables.", "0s"},
		{"confirm_timeout", "confirm-timeout", "Stop waiting for the operator after this long. 0 waits forever.", "0s"},
		{"confirm_style", "confirm-style", "Operator prompt: 'line' (readline) or 'form' (interactive form).", DefaultConfirmStyle},
		{"path_whitelist", "path-whitelist", "Base directories readFile and writeFile are limited to. Empty allows any path.", []string{}},
		{"max_file_size_bytes", "max-file-size", "Largest file readFile will load and writeFile will produce.", tools.DefaultLimits().MaxFileSizeBytes},
		{"max_output_bytes", "max-output", "Bytes of stdout and of stderr kept per command. Output past it is dropped and the result is marked truncated.", tools.DefaultLimits().MaxOutputBytes},
		{"listen_addr", "listen", "Address 'toolgate serve' listens on.", DefaultListenAddr},
		{"otlp_endpoint", "otlp-endpoint", "OTLP/HTTP collector (host:port) for request traces. Empty disables tracing.", ""},
		{"debug", "debug", "Enable debug logging.", false},
		{"log_file", "log-file", "Write logs to this file. Logs are discarded when unset and debug is off.", ""},
	}
}

// Settings returns the resolved configuration keyed like the config file.
func (c Config) Settings() map[string]interface{} {
	whitelist := c.PathWhitelist
	if whitelist == nil {
		whitelist = []string{}
	}
	return map[string]interface{}{
		"allowlist_file":      c.AllowlistFile,
		"dry_run":             c.DryRun,
		"shell":               c.Shell,
		"command_timeout":     c.CommandTimeout.String(),
		"confirm_timeout":     c.ConfirmTimeout.String(),
		"confirm_style":       c.ConfirmStyle,
		"path_whitelist":      whitelist,
		"max_file_size_bytes": c.MaxFileSizeBytes,
		"max_output_bytes":    c.MaxOutputBytes,
		"listen_addr":         c.ListenAddr,
		"otlp_endpoint":       c.OTLPEndpoint,
		"debug":               c.Debug,
		"log_file":            c.LogFile,
	}
}

// YAML renders the resolved configuration as a config file.
func (c Config) YAML() (string, error) {
	settings := c.Settings()
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, key := range Keys() {
		if err := appendEntry(doc, key.Name, settings[key.Name], ""); err != nil {
			return "", err
		}
	}
	return encodeNode(doc)
}

// ExampleYAML renders a commented config file with default values.
func ExampleYAML() (string, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, key := range Keys() {
		comment := fmt.Sprintf("%s (flag --%s, env %s_%s)", key.Description, key.Flag, EnvPrefix, strings.ToUpper(key.Name))
		if err := appendEntry(doc, key.Name, key.Example, comment); err != nil {
			return "", err
		}
	}
	return encodeNode(doc)
}

func appendEntry(doc *yaml.Node, name string, value interface{}, comment string) error {
	var valueNode yaml.Node
	if err := valueNode.Encode(value); err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	doc.Content = append(doc.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: name, HeadComment: comment},
		&valueNode,
	)
	return nil
}

func encodeNode(doc *yaml.Node) (string, error) {
	out, err := yaml.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
