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
	"os"
	"os/signal"
	"sync"

	"github.com/rs/zerolog"
)

// inFlight tracks the request currently executing so an interrupt can abandon
// it without stopping the stream.
type inFlight struct {
	mu        sync.Mutex
	requestID string
	cancel    context.CancelFunc
}

// Begin records req as in flight until End is called.
func (f *inFlight) Begin(requestID string, cancel context.CancelFunc) {
	f.mu.Lock()
	f.requestID, f.cancel = requestID, cancel
	f.mu.Unlock()
}

func (f *inFlight) End() {
	f.mu.Lock()
	f.requestID, f.cancel = "", nil
	f.mu.Unlock()
}

// Cancel abandons the request in flight and reports its id. ok is false when
// nothing is running.
func (f *inFlight) Cancel() (requestID string, ok bool) {
	f.mu.Lock()
	requestID, cancel := f.requestID, f.cancel
	f.mu.Unlock()
	if cancel == nil {
		return "", false
	}
	cancel()
	return requestID, true
}

// routeInterrupt handles one SIGINT: the request in flight is abandoned, or
// exit is called when the stream is idle.
func (f *inFlight) routeInterrupt(exit context.CancelFunc, logger zerolog.Logger) {
	if requestID, ok := f.Cancel(); ok {
		logger.Info().Str("request_id", requestID).Msg("Interrupt: abandoning request")
		return
	}
	logger.Info().Msg("Interrupt: no request in flight, exiting")
	exit()
}

// watchInterrupts routes SIGINT through f until the returned stop func runs.
func (f *inFlight) watchInterrupts(exit context.CancelFunc, logger zerolog.Logger) func() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)
	done := make(chan struct{})
	var once sync.Once
	go func() {
		for {
			select {
			case <-signals:
				f.routeInterrupt(exit, logger)
			case <-done:
				return
			}
		}
	}()
	return func() {
		once.Do(func() {
			signal.Stop(signals)
			close(done)
		})
	}
}
