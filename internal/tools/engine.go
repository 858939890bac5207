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
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"

	"toolgate/internal/confirm"
	apperrors "toolgate/internal/errors"
	"toolgate/internal/metrics"
	"toolgate/internal/telemetry"
)

// Confirmer obtains the operator's decision for one request.
type Confirmer interface {
	Confirm(ctx context.Context, prompt confirm.Prompt) (confirm.Decision, error)
}

// Options configures an Engine. The zero value runs real operations with
// no allowlist, no path whitelist and no timeouts.
type Options struct {
	Allowlist     *Allowlist
	PathWhitelist PathWhitelist
	DryRun        bool
	Shell         string
	Limits        Limits
	Timeouts      TimeoutConfig

	// Executor replaces the host or dry-run executor when set.
	Executor Executor

	Logger  zerolog.Logger
	Metrics *metrics.Recorder
	Tracer  trace.Tracer
}

// Engine is the single entry point for tool requests. It validates, applies
// policy, asks the operator and only then executes. Execute is safe for
// concurrent use; confirmation and execution are serialized in arrival
// order.
type Engine struct {
	validator *Validator
	allowlist *Allowlist
	paths     PathWhitelist
	gate      Confirmer
	executor  Executor
	timeouts  TimeoutConfig
	queue     *semaphore.Weighted
	logger    zerolog.Logger
	metrics   *metrics.Recorder
	tracer    trace.Tracer
}

// NewEngine creates an engine that confirms every request through gate.
func NewEngine(gate Confirmer, opts Options) *Engine {
	executor := opts.Executor
	if executor == nil {
		if opts.DryRun {
			executor = NewDryRunExecutor(opts.Limits)
		} else {
			executor = NewHostExecutor(opts.Shell, opts.Timeouts, opts.Limits)
		}
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = telemetry.Tracer()
	}
	return &Engine{
		validator: NewValidator(),
		allowlist: opts.Allowlist,
		paths:     opts.PathWhitelist,
		gate:      gate,
		executor:  executor,
		timeouts:  opts.Timeouts,
		queue:     semaphore.NewWeighted(1),
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		tracer:    tracer,
	}
}

// Execute processes one request and always returns exactly one result whose
// request_id and tool_name echo req.
func (e *Engine) Execute(ctx context.Context, req ToolRequest) (result ToolResult) {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "tools.execute", trace.WithAttributes(
		attribute.String("request_id", req.RequestID),
		attribute.String("tool_name", req.ToolName),
	))
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().
				Str("request_id", req.RequestID).
				Str("tool_name", req.ToolName).
				Interface("panic", r).
				Msg("Recovered from panic while handling tool request")
			result = Failure(req, apperrors.New(apperrors.CodeInternal, fmt.Sprintf("internal error: %v", r)))
		}
		e.finish(span, req, result, time.Since(start))
	}()

	op, err := e.validator.Validate(req)
	if err != nil {
		return Failure(req, err)
	}

	op, err = e.checkPolicy(op)
	if err != nil {
		e.metrics.PolicyRefusal(string(op.ToolName()))
		return Failure(req, NewPolicyError(req.ToolName, err))
	}

	if err := e.queue.Acquire(ctx, 1); err != nil {
		return Failure(req, NewTimeoutError("waiting for the confirmation gate", err))
	}
	defer e.queue.Release(1)

	decision, err := e.confirm(ctx, req)
	if err != nil {
		return Failure(req, err)
	}
	if !decision.Accepted {
		return Declined(req)
	}

	data, err := e.executor.Execute(ctx, op)
	if err != nil {
		return Failure(req, err)
	}
	return Success(req, data)
}

// checkPolicy applies the allowlist and path whitelist. File operations come
// back bound to the resolved target the whitelist approved.
func (e *Engine) checkPolicy(op Operation) (Operation, error) {
	switch o := op.(type) {
	case CommandOperation:
		if !e.allowlist.Allows(o.Command) {
			return op, fmt.Errorf("%w: %q", ErrCommandNotAllowed, o.Command)
		}
	case ReadFileOperation:
		resolved, err := e.paths.Resolve(o.Path)
		o.resolved = resolved
		return o, err
	case WriteFileOperation:
		resolved, err := e.paths.Resolve(o.Path)
		o.resolved = resolved
		return o, err
	}
	return op, nil
}

func (e *Engine) confirm(ctx context.Context, req ToolRequest) (confirm.Decision, error) {
	if e.gate == nil {
		return confirm.Decision{}, apperrors.Wrap(apperrors.CodeConfirmation, "operator confirmation unavailable", confirm.ErrUnavailable)
	}
	if e.timeouts.Confirm > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeouts.Confirm)
		defer cancel()
	}
	return e.gate.Confirm(ctx, confirm.Prompt{
		RequestID:  req.RequestID,
		ToolName:   req.ToolName,
		Disclosure: req.DisclosureText,
	})
}

func (e *Engine) finish(span trace.Span, req ToolRequest, result ToolResult, elapsed time.Duration) {
	defer span.End()
	span.SetAttributes(attribute.String("status", string(result.Status)))

	event := e.logger.Info()
	if payload, ok := result.ErrorPayload(); ok {
		span.SetStatus(codes.Error, payload.ErrorMessage)
		event = e.logger.Warn().Str("code", string(payload.Code)).Str("error", payload.ErrorMessage)
	}
	event.
		Str("request_id", req.RequestID).
		Str("tool_name", req.ToolName).
		Str("status", string(result.Status)).
		Dur("duration", elapsed).
		Msg("Tool request completed")

	e.metrics.Observe(metricToolName(req.ToolName), string(result.Status), elapsed)
}

// metricToolName keeps label cardinality bounded for unknown tool names.
func metricToolName(name string) string {
	if ToolName(name).Known() {
		return name
	}
	return "unknown"
}
