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

package confirm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
)

// ReaderSource asks on w and reads answers line by line from r, for piped
// operator input. Each line is tagged with the prompt that was current when
// it finished reading; a line read while an abandoned prompt was current is
// discarded rather than applied to a later one.
type ReaderSource struct {
	r     io.Reader
	w     io.Writer
	once  sync.Once
	lines chan answerLine
	done  chan struct{}
	err   error

	// current is the sequence number of the prompt being asked.
	current atomic.Uint64
	// stale is the last abandoned prompt; lines tagged at or below it are
	// dropped.
	stale uint64
}

type answerLine struct {
	prompt uint64
	text   string
}

// NewReaderSource creates a source over a plain reader/writer pair.
func NewReaderSource(r io.Reader, w io.Writer) *ReaderSource {
	return &ReaderSource{
		r:     r,
		w:     w,
		lines: make(chan answerLine),
		done:  make(chan struct{}),
	}
}

func (s *ReaderSource) start() {
	go func() {
		reader := bufio.NewReader(s.r)
		for {
			line, err := reader.ReadString('\n')
			if line != "" {
				s.lines <- answerLine{prompt: s.current.Load(), text: line}
			}
			if err != nil {
				s.err = err
				close(s.done)
				return
			}
		}
	}()
}

// Decide must not be called concurrently; the gate's caller serializes it.
func (s *ReaderSource) Decide(ctx context.Context, prompt Prompt) (bool, error) {
	seq := s.current.Add(1)
	s.once.Do(s.start)

	if err := writeDisclosure(s.w, prompt); err != nil {
		return false, fmt.Errorf("failed to render disclosure: %w", err)
	}
	if _, err := io.WriteString(s.w, questionFor(prompt)); err != nil {
		return false, fmt.Errorf("failed to render prompt: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			s.stale = seq
			return false, ctx.Err()
		case line := <-s.lines:
			if line.prompt <= s.stale {
				continue
			}
			return ParseAnswer(line.text), nil
		case <-s.done:
			return false, s.err
		}
	}
}
