package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	appErrors "github.com/noah-isme/teacher-archive/pkg/errors"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // command completed
	ExitFailure      = 1 // the archive rejected the operation
	ExitCommandError = 2 // bad flags, configuration or an unopenable database
)

// CommandErrorCode is reported for failures that carry no archive error code.
const CommandErrorCode = "COMMAND_ERROR"

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error, defaulting to ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

// CLIResponse is the JSON envelope of every command.
type CLIResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  *CLIError   `json:"error,omitempty"`
}

// CLIError describes a failed command in JSON output.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// Success writes data as JSON, or with text when the format is text.
func (f *OutputFormatter) Success(data interface{}, text func(w *tabwriter.Writer)) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	tw := tabwriter.NewWriter(f.Writer, 0, 0, 2, ' ', 0)
	text(tw)
	return tw.Flush()
}

// Error reports err using the archive error code it carries.
func (f *OutputFormatter) Error(err error) {
	var appErr *appErrors.Error
	if !errors.As(err, &appErr) {
		appErr = appErrors.New(CommandErrorCode, err.Error())
	}
	message := appErr.Message
	if f.Verbose && appErr.Err != nil {
		message = appErr.Error()
	}

	if f.Format == "json" {
		_ = json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: appErr.Code, Message: message, Field: appErr.Field},
		})
		return
	}

	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	if appErr.Field != "" {
		fmt.Fprintf(w, "Error [%s]: %s (%s)\n", appErr.Code, message, appErr.Field)
		return
	}
	fmt.Fprintf(w, "Error [%s]: %s\n", appErr.Code, message)
}
