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
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
)

// FormSource asks with a huh confirm form on the controlling terminal. The
// form starts on "No", so submitting without choosing declines.
type FormSource struct {
	ttyPath string
}

// NewFormSource creates a form-based source.
func NewFormSource() *FormSource {
	return &FormSource{ttyPath: DefaultTTYPath}
}

func (s *FormSource) Decide(ctx context.Context, prompt Prompt) (bool, error) {
	tty, err := os.OpenFile(s.ttyPath, os.O_RDWR, 0)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer tty.Close()

	if err := writeDisclosure(tty, prompt); err != nil {
		return false, fmt.Errorf("failed to render disclosure: %w", err)
	}

	accepted := false
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(questionFor(prompt)).
				Affirmative("Yes").
				Negative("No").
				Value(&accepted),
		),
	).WithInput(tty).WithOutput(tty)

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return accepted, nil
}
