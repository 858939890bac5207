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

package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ValidatePathString rejects path strings that can never name a real file.
func ValidatePathString(path string, maxLen int) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if strings.IndexByte(path, 0) != -1 {
		return fmt.Errorf("path contains null byte")
	}
	if !utf8.ValidString(path) {
		return fmt.Errorf("path is not valid UTF-8")
	}
	if maxLen > 0 {
		if len(path) > maxLen {
			return fmt.Errorf("path exceeds maximum length of %d characters", maxLen)
		}
		if len(filepath.Clean(path)) > maxLen {
			return fmt.Errorf("path exceeds maximum length of %d characters", maxLen)
		}
	}
	return nil
}

// maxSymlinkHops matches the Linux ELOOP limit.
const maxSymlinkHops = 40

// Resolve returns the absolute, symlink-free path the kernel would reach for
// path. Components are walked in order, so a ".." after a symlink steps out of
// the link's target, not out of the link's directory. Components that do not
// exist yet are kept as written, so the target of a file about to be created
// resolves too.
func Resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("invalid path: empty")
	}
	if !filepath.IsAbs(path) {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("invalid path: %v", err)
		}
		path = wd + string(os.PathSeparator) + path
	}

	volume := filepath.VolumeName(path)
	resolved := volume + string(os.PathSeparator)
	pending := splitComponents(path[len(volume):])
	hops := 0
	for len(pending) > 0 {
		name := pending[0]
		pending = pending[1:]
		switch name {
		case ".":
			continue
		case "..":
			resolved = filepath.Dir(resolved)
			continue
		}

		next := filepath.Join(resolved, name)
		info, err := os.Lstat(next)
		if os.IsNotExist(err) {
			resolved = next
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to stat path: %v", err)
		}
		if info.Mode()&os.ModeSymlink == 0 {
			resolved = next
			continue
		}

		hops++
		if hops > maxSymlinkHops {
			return "", fmt.Errorf("failed to resolve path: too many levels of symbolic links")
		}
		target, err := os.Readlink(next)
		if err != nil {
			return "", fmt.Errorf("failed to resolve path: %v", err)
		}
		if filepath.IsAbs(target) {
			targetVolume := filepath.VolumeName(target)
			resolved = targetVolume + string(os.PathSeparator)
			target = target[len(targetVolume):]
		}
		pending = append(splitComponents(target), pending...)
	}
	return resolved, nil
}

func splitComponents(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool {
		return r < utf8.RuneSelf && os.IsPathSeparator(uint8(r))
	})
}

// HasPathPrefix reports whether path equals base or lies beneath it.
func HasPathPrefix(path, base string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, ".."+string(os.PathSeparator)) && rel != "..")
}

// ResolveWhitelistEntry resolves a whitelist entry relative to baseResolved.
func ResolveWhitelistEntry(entry, baseResolved string) (string, error) {
	candidate := entry
	if !filepath.IsAbs(candidate) {
		candidate = baseResolved + string(os.PathSeparator) + candidate
	}
	resolved, err := Resolve(candidate)
	if err != nil {
		return "", fmt.Errorf("failed to resolve allowed path: %v", err)
	}
	return resolved, nil
}
