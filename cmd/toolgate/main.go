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
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"toolgate/internal/config"
	"toolgate/internal/confirm"
	"toolgate/internal/metrics"
	"toolgate/internal/telemetry"
	"toolgate/internal/tools"
)

// Set by ldflags at release time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "toolgate",
		Short:         "Run model-requested tools only after a human says yes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.AddFlags(root)
	root.AddCommand(runCmd(), serveCmd(), execCmd(), toolsCmd(), configCmd(), versionCmd())
	return root
}

func initLogger(debug bool, logFilePath string) (zerolog.Logger, io.Closer, error) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	var output io.Writer
	var closer io.Closer
	switch {
	case logFilePath != "":
		file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = file
		closer = file
	case debug:
		// stdout carries results, so debug output goes to stderr.
		output = zerolog.ConsoleWriter{Out: os.Stderr}
	default:
		output = io.Discard
	}

	return zerolog.New(output).With().Timestamp().Logger(), closer, nil
}

// runtime is everything a command needs to execute requests.
type runtime struct {
	cfg      config.Config
	logger   zerolog.Logger
	engine   *tools.Engine
	gate     *confirm.Gate
	metrics  *metrics.Recorder
	shutdown []func(context.Context) error
}

func (r *runtime) Close(ctx context.Context) {
	for i := len(r.shutdown) - 1; i >= 0; i-- {
		if err := r.shutdown[i](ctx); err != nil {
			r.logger.Warn().Err(err).Msg("Shutdown step failed")
		}
	}
}

// setup loads configuration and builds the engine. source overrides the
// configured operator prompt when non-nil.
func setup(ctx context.Context, cmd *cobra.Command, source confirm.Source) (*runtime, error) {
	cfg, err := config.Load(cmd)
	if err != nil {
		return nil, err
	}

	logger, closer, err := initLogger(cfg.Debug, cfg.LogFile)
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg, logger: logger}
	if closer != nil {
		rt.shutdown = append(rt.shutdown, func(context.Context) error { return closer.Close() })
	}
	logger.Info().Str("version", version).Str("config_file", cfg.File).Msg("toolgate starting")

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTLPEndpoint, version)
	if err != nil {
		rt.Close(ctx)
		return nil, err
	}
	rt.shutdown = append(rt.shutdown, shutdownTracing)

	var allowlist *tools.Allowlist
	if cfg.AllowlistFile != "" {
		allowlist, err = tools.LoadAllowlist(cfg.AllowlistFile)
		if err != nil {
			rt.Close(ctx)
			return nil, err
		}
		logger.Info().Str("allowlist", allowlist.Source()).Int("patterns", allowlist.Len()).Msg("Allowlist loaded")
	}

	whitelist, err := tools.NewPathWhitelist(cfg.PathWhitelist)
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("invalid path whitelist: %w", err)
	}

	if source == nil {
		source = decisionSource(cfg.ConfirmStyle)
		if !confirm.TerminalAvailable() {
			logger.Warn().Msg("No controlling terminal; every request will fail confirmation")
		}
	}

	rt.metrics = metrics.NewRecorder()
	rt.gate = confirm.NewGate(source, logger)
	rt.engine = tools.NewEngine(rt.gate, tools.Options{
		Allowlist:     allowlist,
		PathWhitelist: whitelist,
		DryRun:        cfg.DryRun,
		Shell:         cfg.Shell,
		Limits:        cfg.Limits(),
		Timeouts:      cfg.Timeouts(),
		Logger:        logger,
		Metrics:       rt.metrics,
	})
	if cfg.DryRun {
		logger.Info().Msg("Dry run: operations will be simulated")
	}
	return rt, nil
}

func decisionSource(style string) confirm.Source {
	if style == config.ConfirmStyleForm {
		return confirm.NewFormSource()
	}
	return confirm.NewTerminalSource()
}
