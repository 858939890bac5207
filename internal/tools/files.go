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
	"io"
	"os"
)

const defaultFilePerm = 0o644

// fileIO reads and writes whole text files within the configured limits.
type fileIO struct {
	limits Limits
}

func (f fileIO) read(ctx context.Context, op ReadFileOperation) (ReadFileOutput, error) {
	if err := ensureContext(ctx); err != nil {
		return ReadFileOutput{}, err
	}

	target := op.openPath()
	info, err := os.Stat(target)
	if err != nil {
		return ReadFileOutput{}, NewToolExecutionError(ToolReadFile, "read", err)
	}
	if info.IsDir() {
		return ReadFileOutput{}, NewToolExecutionError(ToolReadFile, "read", fmt.Errorf("path %q is a directory", op.Path))
	}
	if info.Size() > f.limits.MaxFileSizeBytes {
		return ReadFileOutput{}, NewToolExecutionError(ToolReadFile, "read",
			fmt.Errorf("file exceeds maximum size of %d bytes", f.limits.MaxFileSizeBytes))
	}

	file, err := os.Open(target)
	if err != nil {
		return ReadFileOutput{}, NewToolExecutionError(ToolReadFile, "read", err)
	}
	defer file.Close()

	// The file may grow between Stat and Read.
	data, err := io.ReadAll(io.LimitReader(file, f.limits.MaxFileSizeBytes+1))
	if err != nil {
		return ReadFileOutput{}, NewToolExecutionError(ToolReadFile, "read", err)
	}
	if int64(len(data)) > f.limits.MaxFileSizeBytes {
		return ReadFileOutput{}, NewToolExecutionError(ToolReadFile, "read",
			fmt.Errorf("file exceeds maximum size of %d bytes", f.limits.MaxFileSizeBytes))
	}

	content, err := decodeContent(data, op.Encoding)
	if err != nil {
		return ReadFileOutput{}, NewToolExecutionError(ToolReadFile, "decode", err)
	}
	return ReadFileOutput{FilePath: op.Path, Content: content}, nil
}

func (f fileIO) write(ctx context.Context, op WriteFileOperation) (WriteFileOutput, error) {
	if err := ensureContext(ctx); err != nil {
		return WriteFileOutput{}, err
	}

	data, err := f.encode(op)
	if err != nil {
		return WriteFileOutput{}, err
	}

	target := op.openPath()
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		return WriteFileOutput{}, NewToolExecutionError(ToolWriteFile, "write", fmt.Errorf("path %q is a directory", op.Path))
	}

	flags := os.O_WRONLY | os.O_CREATE
	verb := "wrote"
	if op.Mode == WriteModeAppend {
		flags |= os.O_APPEND
		verb = "appended"
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(target, flags, defaultFilePerm)
	if err != nil {
		return WriteFileOutput{}, NewToolExecutionError(ToolWriteFile, "open", err)
	}
	written, writeErr := file.Write(data)
	closeErr := file.Close()
	if writeErr != nil {
		return WriteFileOutput{}, NewToolExecutionError(ToolWriteFile, "write",
			fmt.Errorf("%v (%d of %d bytes written)", writeErr, written, len(data)))
	}
	if closeErr != nil {
		return WriteFileOutput{}, NewToolExecutionError(ToolWriteFile, "write", closeErr)
	}

	return WriteFileOutput{
		FilePath:     op.Path,
		Message:      fmt.Sprintf("%s %d bytes to %s", verb, written, op.Path),
		BytesWritten: written,
	}, nil
}

// encode converts content to the requested encoding and enforces the size
// limit. Dry runs use it too so they report the real byte count.
func (f fileIO) encode(op WriteFileOperation) ([]byte, error) {
	data, err := encodeContent(op.Content, op.Encoding)
	if err != nil {
		return nil, NewToolExecutionError(ToolWriteFile, "encode", err)
	}
	if int64(len(data)) > f.limits.MaxFileSizeBytes {
		return nil, NewToolExecutionError(ToolWriteFile, "encode",
			fmt.Errorf("content exceeds maximum size of %d bytes", f.limits.MaxFileSizeBytes))
	}
	return data, nil
}

func ensureContext(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return NewTimeoutError("preparing the operation", err)
	}
	return nil
}
