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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"toolgate/internal/paths"
)

// PathWhitelist restricts file operations to a set of base directories.
// The zero value allows every path.
type PathWhitelist struct {
	bases []string
}

// NewPathWhitelist resolves entries once. Relative entries are taken against
// the current working directory.
func NewPathWhitelist(entries []string) (PathWhitelist, error) {
	var bases []string
	var baseResolved string
	for _, entry := range entries {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		if baseResolved == "" {
			wd, err := os.Getwd()
			if err != nil {
				return PathWhitelist{}, fmt.Errorf("failed to determine working directory: %v", err)
			}
			if baseResolved, err = filepath.EvalSymlinks(wd); err != nil {
				return PathWhitelist{}, fmt.Errorf("failed to resolve base directory: %v", err)
			}
		}
		allowed, err := paths.ResolveWhitelistEntry(entry, baseResolved)
		if err != nil {
			return PathWhitelist{}, err
		}
		bases = append(bases, allowed)
	}
	return PathWhitelist{bases: bases}, nil
}

// Enabled reports whether any base directory is configured.
func (w PathWhitelist) Enabled() bool {
	return len(w.bases) > 0
}

// Resolve returns the symlink-free target of path once it is known to lie
// under a base, or "" when the whitelist is disabled. A path outside every
// base yields ErrPathNotAllowed. Callers open the
// returned path so the file touched is the file that was checked.
func (w PathWhitelist) Resolve(path string) (string, error) {
	if !w.Enabled() {
		return "", nil
	}
	resolved, err := paths.Resolve(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPathNotAllowed, err)
	}
	for _, base := range w.bases {
		if paths.HasPathPrefix(resolved, base) {
			return resolved, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrPathNotAllowed, path)
}
