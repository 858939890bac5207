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

// ToolName identifies an operation kind. The set is closed.
type ToolName string

const (
	ToolExecuteBashCommand ToolName = "executeBashCommand"
	ToolReadFile           ToolName = "readFile"
	ToolWriteFile          ToolName = "writeFile"
)

// ToolNames lists every supported operation kind.
var ToolNames = []ToolName{ToolExecuteBashCommand, ToolReadFile, ToolWriteFile}

// Known reports whether name is a supported operation kind.
func (n ToolName) Known() bool {
	switch n {
	case ToolExecuteBashCommand, ToolReadFile, ToolWriteFile:
		return true
	default:
		return false
	}
}

// ToolRequest is one operation requested by the orchestrator. The engine only
// ever reads it.
type ToolRequest struct {
	RequestID      string                 `json:"request_id"`
	ToolName       string                 `json:"tool_name"`
	Parameters     map[string]interface{} `json:"parameters"`
	DisclosureText string                 `json:"icerc_full_text"`
}

// WriteMode selects how writeFile opens its target.
type WriteMode string

const (
	WriteModeOverwrite WriteMode = "overwrite"
	WriteModeAppend    WriteMode = "append"
)

const defaultEncoding = "utf-8"

// Operation is a validated, strongly typed request payload.
type Operation interface {
	ToolName() ToolName
}

// CommandOperation runs a command line through the configured shell.
type CommandOperation struct {
	Command          string `mapstructure:"command" json:"command" validate:"required,max=10000" jsonschema:"description=The shell command to execute,minLength=1"`
	WorkingDirectory string `mapstructure:"working_directory" json:"working_directory,omitempty" validate:"omitempty,max=4096" jsonschema:"description=Directory to run the command in (defaults to the gate's working directory)"`
}

func (CommandOperation) ToolName() ToolName { return ToolExecuteBashCommand }

// ReadFileOperation reads a whole text file.
type ReadFileOperation struct {
	Path     string `mapstructure:"path" json:"path" validate:"required,max=4096" jsonschema:"description=Path to the file to read,minLength=1"`
	Encoding string `mapstructure:"encoding" json:"encoding,omitempty" validate:"omitempty,encoding" jsonschema:"description=Text encoding of the file (default utf-8)"`

	// resolved is set when the path whitelist approved the symlink-free target.
	resolved string
}

func (ReadFileOperation) ToolName() ToolName { return ToolReadFile }

func (o ReadFileOperation) openPath() string {
	if o.resolved != "" {
		return o.resolved
	}
	return o.Path
}

// WriteFileOperation writes text to a file, replacing or appending.
type WriteFileOperation struct {
	Path     string    `mapstructure:"path" json:"path" validate:"required,max=4096" jsonschema:"description=Path to the file to write,minLength=1"`
	Content  string    `mapstructure:"content" json:"content" jsonschema:"description=Text content to write"`
	Encoding string    `mapstructure:"encoding" json:"encoding,omitempty" validate:"omitempty,encoding" jsonschema:"description=Text encoding to write with (default utf-8)"`
	Mode     WriteMode `mapstructure:"mode" json:"mode,omitempty" validate:"omitempty,oneof=overwrite append" jsonschema:"description=overwrite (default) or append,enum=overwrite,enum=append"`

	resolved string
}

func (WriteFileOperation) ToolName() ToolName { return ToolWriteFile }

func (o WriteFileOperation) openPath() string {
	if o.resolved != "" {
		return o.resolved
	}
	return o.Path
}
