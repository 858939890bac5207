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

// Package config resolves toolgate settings from defaults, a config file,
// TOOLGATE_* environment variables and command-line flags, in that order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	apperrors "toolgate/internal/errors"
	"toolgate/internal/tools"
)

const (
	EnvPrefix = "TOOLGATE"

	DefaultShell        = "sh"
	DefaultConfirmStyle = ConfirmStyleLine
	DefaultListenAddr   = "127.0.0.1:8750"

	ConfirmStyleLine = "line"
	ConfirmStyleForm = "form"
)

// Config holds the resolved runtime configuration.
type Config struct {
	AllowlistFile    string
	DryRun           bool
	Shell            string
	CommandTimeout   time.Duration
	ConfirmTimeout   time.Duration
	ConfirmStyle     string
	PathWhitelist    []string
	MaxFileSizeBytes int64
	MaxOutputBytes   int64
	ListenAddr       string
	OTLPEndpoint     string
	Debug            bool
	LogFile          string

	// File is the config file that was read, if any.
	File string
}

type rawConfig struct {
	AllowlistFile    string        `mapstructure:"allowlist_file"`
	DryRun           bool          `mapstructure:"dry_run"`
	Shell            string        `mapstructure:"shell"`
	CommandTimeout   time.Duration `mapstructure:"command_timeout"`
	ConfirmTimeout   time.Duration `mapstructure:"confirm_timeout"`
	ConfirmStyle     string        `mapstructure:"confirm_style"`
	PathWhitelist    []string      `mapstructure:"path_whitelist"`
	MaxFileSizeBytes int64         `mapstructure:"max_file_size_bytes"`
	MaxOutputBytes   int64         `mapstructure:"max_output_bytes"`
	ListenAddr       string        `mapstructure:"listen_addr"`
	OTLPEndpoint     string        `mapstructure:"otlp_endpoint"`
	Debug            bool          `mapstructure:"debug"`
	LogFile          string        `mapstructure:"log_file"`
}

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"allowlist":       "allowlist_file",
	"dry-run":         "dry_run",
	"shell":           "shell",
	"command-timeout": "command_timeout",
	"confirm-timeout": "confirm_timeout",
	"confirm-style":   "confirm_style",
	"path-whitelist":  "path_whitelist",
	"max-file-size":   "max_file_size_bytes",
	"max-output":      "max_output_bytes",
	"listen":          "listen_addr",
	"otlp-endpoint":   "otlp_endpoint",
	"debug":           "debug",
	"log-file":        "log_file",
}

// AddFlags registers the configuration flags on cmd as persistent flags.
func AddFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file (default: toolgate.{yaml,json,toml} in the user config dir)")
	flags.String("allowlist", "", "file of command patterns matched against the whole command line; a trailing '*' also admits anything the shell would run after it (';', '&&', '$(...)'), so prefer exact patterns")
	flags.Bool("dry-run", false, "confirm requests but simulate every operation")
	flags.String("shell", DefaultShell, "shell used to run commands")
	flags.Duration("command-timeout", 0, "kill commands running longer than this (0 = no limit)")
	flags.Duration("confirm-timeout", 0, "give up waiting for the operator after this long (0 = wait forever)")
	flags.String("confirm-style", DefaultConfirmStyle, "operator prompt style: line or form")
	flags.StringSlice("path-whitelist", nil, "restrict file tools to these base directories")
	flags.Int64("max-file-size", tools.DefaultLimits().MaxFileSizeBytes, "maximum file size for readFile/writeFile in bytes")
	flags.Int64("max-output", tools.DefaultLimits().MaxOutputBytes, "bytes of stdout and of stderr kept per command; output past it is dropped")
	flags.String("listen", DefaultListenAddr, "listen address for serve")
	flags.String("otlp-endpoint", "", "OTLP/HTTP trace endpoint (host:port)")
	flags.Bool("debug", false, "enable debug logging")
	flags.String("log-file", "", "write logs to this file")
}

// Load resolves configuration. cmd may be nil, in which case flags are not
// consulted.
func Load(cmd *cobra.Command) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if cmd != nil {
		for name, key := range flagKeys {
			if flag := lookupFlag(cmd, name); flag != nil {
				_ = v.BindPFlag(key, flag)
			}
		}
	}

	file, err := loadConfigFile(v, explicitConfigPath(cmd))
	if err != nil {
		return Config{}, err
	}

	var raw rawConfig
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		Result:           &raw,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return Config{}, apperrors.Wrap(apperrors.CodeConfig, "failed to build config decoder", err)
	}
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return Config{}, apperrors.Wrap(apperrors.CodeConfig, "invalid configuration", err)
	}

	cfg := Config{
		AllowlistFile:    strings.TrimSpace(raw.AllowlistFile),
		DryRun:           raw.DryRun,
		Shell:            strings.TrimSpace(raw.Shell),
		CommandTimeout:   raw.CommandTimeout,
		ConfirmTimeout:   raw.ConfirmTimeout,
		ConfirmStyle:     strings.ToLower(strings.TrimSpace(raw.ConfirmStyle)),
		PathWhitelist:    cleanList(raw.PathWhitelist),
		MaxFileSizeBytes: raw.MaxFileSizeBytes,
		MaxOutputBytes:   raw.MaxOutputBytes,
		ListenAddr:       raw.ListenAddr,
		OTLPEndpoint:     raw.OTLPEndpoint,
		Debug:            raw.Debug,
		LogFile:          raw.LogFile,
		File:             file,
	}
	if cfg.Shell == "" {
		cfg.Shell = DefaultShell
	}
	if cfg.ConfirmStyle == "" {
		cfg.ConfirmStyle = DefaultConfirmStyle
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("allowlist_file", "")
	v.SetDefault("dry_run", false)
	v.SetDefault("shell", DefaultShell)
	v.SetDefault("command_timeout", "0s")
	v.SetDefault("confirm_timeout", "0s")
	v.SetDefault("confirm_style", DefaultConfirmStyle)
	v.SetDefault("path_whitelist", []string{})
	v.SetDefault("max_file_size_bytes", tools.DefaultLimits().MaxFileSizeBytes)
	v.SetDefault("max_output_bytes", tools.DefaultLimits().MaxOutputBytes)
	v.SetDefault("listen_addr", DefaultListenAddr)
	v.SetDefault("otlp_endpoint", "")
	v.SetDefault("debug", false)
	v.SetDefault("log_file", "")
}

// Validate rejects values that would make the engine misbehave.
func (c Config) Validate() error {
	var problems []error
	if c.CommandTimeout < 0 {
		problems = append(problems, fmt.Errorf("command_timeout must not be negative"))
	}
	if c.ConfirmTimeout < 0 {
		problems = append(problems, fmt.Errorf("confirm_timeout must not be negative"))
	}
	if c.MaxFileSizeBytes <= 0 {
		problems = append(problems, fmt.Errorf("max_file_size_bytes must be positive"))
	}
	if c.MaxOutputBytes <= 0 {
		problems = append(problems, fmt.Errorf("max_output_bytes must be positive"))
	}
	switch c.ConfirmStyle {
	case ConfirmStyleLine, ConfirmStyleForm:
	default:
		problems = append(problems, fmt.Errorf("confirm_style must be %q or %q, got %q", ConfirmStyleLine, ConfirmStyleForm, c.ConfirmStyle))
	}
	if len(problems) > 0 {
		return apperrors.Wrap(apperrors.CodeConfig, "invalid configuration", errors.Join(problems...))
	}
	return nil
}

// Limits returns the file and output size limits for the engine.
func (c Config) Limits() tools.Limits {
	return tools.Limits{MaxFileSizeBytes: c.MaxFileSizeBytes, MaxOutputBytes: c.MaxOutputBytes}
}

// Timeouts returns the stage timeouts for the engine.
func (c Config) Timeouts() tools.TimeoutConfig {
	return tools.TimeoutConfig{Confirm: c.ConfirmTimeout, Command: c.CommandTimeout}
}

func lookupFlag(cmd *cobra.Command, name string) *pflag.Flag {
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag
	}
	return cmd.InheritedFlags().Lookup(name)
}

func explicitConfigPath(cmd *cobra.Command) string {
	if cmd != nil {
		if flag := lookupFlag(cmd, "config"); flag != nil && flag.Value.String() != "" {
			return flag.Value.String()
		}
	}
	return os.Getenv(EnvPrefix + "_CONFIG")
}

func loadConfigFile(v *viper.Viper, explicit string) (string, error) {
	if explicit != "" {
		v.SetConfigFile(explicit)
		if err := v.ReadInConfig(); err != nil {
			return "", apperrors.Wrap(apperrors.CodeConfig, fmt.Sprintf("failed to read config file %s", explicit), err)
		}
		return explicit, nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", nil
	}
	base := filepath.Join(configDir, "toolgate")
	for _, name := range []string{"toolgate.yaml", "toolgate.yml", "toolgate.json", "toolgate.toml"} {
		path := filepath.Join(base, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return "", apperrors.Wrap(apperrors.CodeConfig, fmt.Sprintf("failed to read config file %s", path), err)
		}
		return path, nil
	}
	return "", nil
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
