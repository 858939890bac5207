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
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tidwall/match"

	apperrors "toolgate/internal/errors"
)

// Allowlist is an immutable set of accepted command patterns. A pattern is a
// glob over the whole command line: '*' matches any run of characters and '?'
// matches exactly one.
type Allowlist struct {
	source   string
	patterns []string
}

// LoadAllowlist reads one pattern per line from path. Blank lines and lines
// starting with '#' are skipped. Failure to read the file is a startup error.
func LoadAllowlist(path string) (*Allowlist, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeConfig, fmt.Sprintf("failed to open allowlist %s", path), err)
	}
	defer file.Close()

	allowlist, err := ParseAllowlist(file)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeConfig, fmt.Sprintf("failed to read allowlist %s", path), err)
	}
	allowlist.source = path
	return allowlist, nil
}

// ParseAllowlist reads patterns from r.
func ParseAllowlist(r io.Reader) (*Allowlist, error) {
	var patterns []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return &Allowlist{patterns: patterns}, nil
}

// NewAllowlist builds an allowlist from in-memory patterns.
func NewAllowlist(patterns ...string) *Allowlist {
	cleaned := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if trimmed := strings.TrimSpace(pattern); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return &Allowlist{patterns: cleaned}
}

// Allows reports whether command matches at least one pattern. The whole
// command line is matched, shell syntax included, so "git status*" also
// admits "git status; rm -rf ~". Exact patterns admit only themselves.
func (a *Allowlist) Allows(command string) bool {
	if a == nil {
		return true
	}
	candidate := strings.TrimSpace(command)
	for _, pattern := range a.patterns {
		if match.Match(candidate, pattern) {
			return true
		}
	}
	return false
}

// Len returns the number of loaded patterns.
func (a *Allowlist) Len() int {
	if a == nil {
		return 0
	}
	return len(a.patterns)
}

// Source returns the file the allowlist was loaded from, if any.
func (a *Allowlist) Source() string {
	if a == nil {
		return ""
	}
	return a.source
}
