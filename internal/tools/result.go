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
	stderrors "errors"

	apperrors "toolgate/internal/errors"
)

// Status is the terminal outcome of one request.
type Status string

const (
	StatusSuccess        Status = "success"
	StatusError          Status = "error"
	StatusDeclinedByUser Status = "declined_by_user"
)

// DeclinedMessage is the fixed notice returned when the operator says no.
const DeclinedMessage = "The operator declined to run this operation."

// ToolResult is the only value returned across the engine boundary.
type ToolResult struct {
	RequestID string      `json:"request_id"`
	ToolName  string      `json:"tool_name"`
	Status    Status      `json:"status"`
	Data      interface{} `json:"data"`
}

// CommandOutput is the success payload of executeBashCommand.
type CommandOutput struct {
	Stdout    string `json:"stdout"`
	Stderr    string `json:"stderr"`
	ExitCode  int    `json:"exit_code"`
	Truncated bool   `json:"truncated,omitempty"`
	Simulated bool   `json:"simulated,omitempty"`
}

// ReadFileOutput is the success payload of readFile.
type ReadFileOutput struct {
	FilePath  string `json:"file_path"`
	Content   string `json:"content"`
	Simulated bool   `json:"simulated,omitempty"`
}

// WriteFileOutput is the success payload of writeFile.
type WriteFileOutput struct {
	FilePath     string `json:"file_path"`
	Message      string `json:"message"`
	BytesWritten int    `json:"bytes_written"`
	Simulated    bool   `json:"simulated,omitempty"`
}

// ErrorData is the payload of every error result.
type ErrorData struct {
	ErrorMessage string         `json:"error_message"`
	Details      string         `json:"details,omitempty"`
	Code         apperrors.Code `json:"code"`
}

// DeclinedData is the payload of a declined result.
type DeclinedData struct {
	Message string `json:"message"`
}

// Success wraps an executor payload.
func Success(req ToolRequest, data interface{}) ToolResult {
	return ToolResult{
		RequestID: req.RequestID,
		ToolName:  req.ToolName,
		Status:    StatusSuccess,
		Data:      data,
	}
}

// Declined reports that the operator refused the request.
func Declined(req ToolRequest) ToolResult {
	return ToolResult{
		RequestID: req.RequestID,
		ToolName:  req.ToolName,
		Status:    StatusDeclinedByUser,
		Data:      DeclinedData{Message: DeclinedMessage},
	}
}

// Failure converts any stage error into an error result. Coded errors keep
// their message as error_message and their cause as details.
func Failure(req ToolRequest, err error) ToolResult {
	return ToolResult{
		RequestID: req.RequestID,
		ToolName:  req.ToolName,
		Status:    StatusError,
		Data:      errorData(err),
	}
}

func errorData(err error) ErrorData {
	if err == nil {
		return ErrorData{ErrorMessage: "unknown error", Code: apperrors.CodeInternal}
	}
	var coded *apperrors.Error
	if stderrors.As(err, &coded) && coded != nil {
		data := ErrorData{ErrorMessage: coded.Message, Code: coded.Code}
		if coded.Err != nil {
			data.Details = coded.Err.Error()
		}
		if data.ErrorMessage == "" {
			data.ErrorMessage = err.Error()
			data.Details = ""
		}
		return data
	}
	return ErrorData{ErrorMessage: err.Error(), Code: apperrors.CodeInternal}
}

// ErrorPayload returns the error payload of r, if r is an error result.
func (r ToolResult) ErrorPayload() (ErrorData, bool) {
	data, ok := r.Data.(ErrorData)
	return data, ok && r.Status == StatusError
}
