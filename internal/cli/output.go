package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dukerupert/grocerylist/internal/model"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Store, network or import failure
	ExitCommandError = 2 // Bad input (invalid id, empty or duplicate name, bad flags)
)

// Error codes used in the JSON error envelope.
const (
	ErrCodeGeneric     = "E000"
	ErrCodeInvalid     = "E001"
	ErrCodeDuplicate   = "E002"
	ErrCodeUnavailable = "E003"
	ErrCodeNetwork     = "E004"
	ErrCodeImport      = "E005"
)

// ExitError carries the exit code a command wants the process to end with.
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

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
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

// OutputFormatter renders command results as text or a JSON envelope.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
}

// CLIResponse is the JSON envelope every command writes in json mode.
type CLIResponse struct {
	Status string    `json:"status"`
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (f *OutputFormatter) json() bool {
	return f.Format == "json"
}

// Success writes data. In text mode text is printed instead of data when set.
func (f *OutputFormatter) Success(data any, text string) error {
	if f.json() {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	if text == "" {
		text = fmt.Sprint(data)
	}
	_, err := fmt.Fprintln(f.Writer, text)
	return err
}

// Items writes a list of items, as a table in text mode.
func (f *OutputFormatter) Items(items []model.GroceryItem) error {
	if f.json() {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: items})
	}
	if len(items) == 0 {
		_, err := fmt.Fprintln(f.Writer, "No items.")
		return err
	}

	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tBOUGHT\tNAME\tQTY\tCATEGORY")
	for _, it := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", it.ID, checkbox(it.Bought), it.Name, it.Quantity, category(it.Category))
	}
	return tw.Flush()
}

// Error writes an error. Text errors go to ErrWriter so stdout stays clean.
func (f *OutputFormatter) Error(code, message string) error {
	if f.json() {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message},
		})
	}
	_, err := fmt.Fprintf(f.errWriter(), "Error [%s]: %s\n", code, message)
	return err
}

func (f *OutputFormatter) errWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

func checkbox(bought bool) string {
	if bought {
		return "[x]"
	}
	return "[ ]"
}

func category(c *string) string {
	if c == nil {
		return "-"
	}
	return *c
}

// describe renders one item on a single line.
func describe(it *model.GroceryItem) string {
	return fmt.Sprintf("%s #%d %s x%d (%s)", checkbox(it.Bought), it.ID, it.Name, it.Quantity, category(it.Category))
}
