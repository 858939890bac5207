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
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"

	"toolgate/internal/paths"
)

const maxPathLength = 4096

// ValidationRule checks tool arguments and returns an error if invalid.
type ValidationRule func(args map[string]interface{}) error

// ChainValidation runs rules in order until the first error.
func ChainValidation(rules ...ValidationRule) ValidationRule {
	return func(args map[string]interface{}) error {
		for _, rule := range rules {
			if rule == nil {
				continue
			}
			if err := rule(args); err != nil {
				return err
			}
		}
		return nil
	}
}

// RequireStringArg ensures a parameter is present and holds a string.
// Empty strings pass; emptiness is a field-level rule.
func RequireStringArg(key string) ValidationRule {
	return func(args map[string]interface{}) error {
		value, ok := args[key]
		if !ok || value == nil {
			return fmt.Errorf("missing required '%s' parameter", key)
		}
		if _, ok := value.(string); !ok {
			return fmt.Errorf("invalid '%s' parameter: expected string, got %T", key, value)
		}
		return nil
	}
}

// OptionalStringArg ensures a parameter, when present, holds a string.
func OptionalStringArg(key string) ValidationRule {
	return func(args map[string]interface{}) error {
		value, ok := args[key]
		if !ok || value == nil {
			return nil
		}
		if _, ok := value.(string); !ok {
			return fmt.Errorf("invalid '%s' parameter: expected string, got %T", key, value)
		}
		return nil
	}
}

// Validator turns untyped boundary requests into typed operations.
type Validator struct {
	validate *validator.Validate
	rules    map[ToolName]ValidationRule
}

// NewValidator builds a validator with the parameter rules of every tool.
func NewValidator() *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.RegisterValidation("encoding", func(fl validator.FieldLevel) bool {
		return SupportedEncoding(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	return &Validator{
		validate: validate,
		rules: map[ToolName]ValidationRule{
			ToolExecuteBashCommand: ChainValidation(
				RequireStringArg("command"),
				OptionalStringArg("working_directory"),
			),
			ToolReadFile: ChainValidation(
				RequireStringArg("path"),
				OptionalStringArg("encoding"),
			),
			ToolWriteFile: ChainValidation(
				RequireStringArg("path"),
				RequireStringArg("content"),
				OptionalStringArg("encoding"),
				OptionalStringArg("mode"),
			),
		},
	}
}

// Validate checks req against the schema of its tool and returns the typed
// operation with defaults applied. Unknown optional keys are ignored.
func (v *Validator) Validate(req ToolRequest) (Operation, error) {
	name := ToolName(req.ToolName)
	rule, ok := v.rules[name]
	if !ok {
		return nil, NewValidationError(req.ToolName, fmt.Errorf("%w: %q", ErrUnknownTool, req.ToolName))
	}

	args := req.Parameters
	if args == nil {
		args = map[string]interface{}{}
	}
	if err := rule(args); err != nil {
		return nil, NewValidationError(req.ToolName, fmt.Errorf("%w: %v", ErrInvalidArguments, err))
	}

	var (
		op  Operation
		err error
	)
	switch name {
	case ToolExecuteBashCommand:
		op, err = decodeOperation[CommandOperation](v, args)
	case ToolReadFile:
		op, err = decodeOperation[ReadFileOperation](v, args)
	case ToolWriteFile:
		op, err = decodeOperation[WriteFileOperation](v, args)
	}
	if err != nil {
		return nil, NewValidationError(req.ToolName, fmt.Errorf("%w: %v", ErrInvalidArguments, err))
	}

	op, err = normalizeOperation(op)
	if err != nil {
		return nil, NewValidationError(req.ToolName, fmt.Errorf("%w: %v", ErrInvalidArguments, err))
	}
	return op, nil
}

func decodeOperation[T Operation](v *Validator, args map[string]interface{}) (Operation, error) {
	var out T
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "mapstructure",
		Result:  &out,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(args); err != nil {
		return nil, err
	}
	if err := v.validate.Struct(out); err != nil {
		return nil, describeValidationError(err)
	}
	return out, nil
}

func describeValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("missing or invalid '%s' parameter: must not be empty", fe.Field())
	case "max":
		return fmt.Errorf("invalid '%s' parameter: exceeds maximum length of %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Errorf("invalid '%s' parameter: must be one of %s", fe.Field(), fe.Param())
	case "encoding":
		return fmt.Errorf("invalid '%s' parameter: unsupported encoding %q", fe.Field(), fe.Value())
	default:
		return fmt.Errorf("invalid '%s' parameter", fe.Field())
	}
}

func normalizeOperation(op Operation) (Operation, error) {
	switch o := op.(type) {
	case CommandOperation:
		if strings.TrimSpace(o.Command) == "" {
			return nil, fmt.Errorf("missing or invalid 'command' parameter: must not be empty")
		}
		if strings.IndexByte(o.Command, 0) != -1 {
			return nil, fmt.Errorf("invalid 'command' parameter: contains null byte")
		}
		if o.WorkingDirectory != "" {
			if err := paths.ValidatePathString(o.WorkingDirectory, maxPathLength); err != nil {
				return nil, fmt.Errorf("invalid 'working_directory' parameter: %v", err)
			}
		}
		return o, nil
	case ReadFileOperation:
		if err := paths.ValidatePathString(o.Path, maxPathLength); err != nil {
			return nil, fmt.Errorf("invalid 'path' parameter: %v", err)
		}
		if o.Encoding == "" {
			o.Encoding = defaultEncoding
		}
		return o, nil
	case WriteFileOperation:
		if err := paths.ValidatePathString(o.Path, maxPathLength); err != nil {
			return nil, fmt.Errorf("invalid 'path' parameter: %v", err)
		}
		if o.Encoding == "" {
			o.Encoding = defaultEncoding
		}
		if o.Mode == "" {
			o.Mode = WriteModeOverwrite
		}
		return o, nil
	default:
		return nil, fmt.Errorf("unsupported operation %T", op)
	}
}
