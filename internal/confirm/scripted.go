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
	"context"
	"sync"
)

// ScriptedSource answers prompts from a fixed list, for tests and
// unattended runs. Once the list is exhausted every prompt is declined.
type ScriptedSource struct {
	mu      sync.Mutex
	answers []bool
	prompts []Prompt
}

// NewScriptedSource returns a source that replays answers in order.
func NewScriptedSource(answers ...bool) *ScriptedSource {
	return &ScriptedSource{answers: append([]bool(nil), answers...)}
}

// AlwaysAccept returns a source that accepts every prompt.
func AlwaysAccept() Source {
	return SourceFunc(func(context.Context, Prompt) (bool, error) { return true, nil })
}

// AlwaysDecline returns a source that declines every prompt.
func AlwaysDecline() Source {
	return SourceFunc(func(context.Context, Prompt) (bool, error) { return false, nil })
}

func (s *ScriptedSource) Decide(ctx context.Context, prompt Prompt) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if len(s.answers) == 0 {
		return false, nil
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}

// Calls returns how many prompts were answered.
func (s *ScriptedSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

// Prompts returns a copy of every prompt seen so far.
func (s *ScriptedSource) Prompts() []Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Prompt(nil), s.prompts...)
}
