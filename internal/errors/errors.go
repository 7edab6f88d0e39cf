// Package errors provides structured error types for gantt.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
)

// Code represents a unique error code.
type Code string

// Error codes for gantt.
const (
	// Task store errors
	CodeValidation   Code = "VALIDATION_FAILED"
	CodeTaskNotFound Code = "TASK_NOT_FOUND"
	CodeDuplicateID  Code = "DUPLICATE_TASK_ID"

	// Persistence errors
	CodeParse          Code = "PARSE_FAILED"
	CodeHistoryMissing Code = "HISTORY_MISSING"
	CodeStorage        Code = "STORAGE_FAILED"

	// Import errors
	CodeImportPartial   Code = "IMPORT_PARTIAL"
	CodeImportFailed    Code = "IMPORT_FAILED"
	CodeImportCancelled Code = "IMPORT_CANCELLED"
	CodeBusy            Code = "BUSY"

	// Export errors
	CodeExportTooLarge Code = "EXPORT_TOO_LARGE"

	// Config errors
	CodeConfigInvalid Code = "CONFIG_INVALID"
)

// Category groups error codes so hosts can decide how to surface them.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryNotFound
	CategoryBadRequest
	CategoryConflict
	CategoryInternal
	CategoryCancelled
)

// codeCategories maps error codes to their categories.
var codeCategories = map[Code]Category{
	CodeValidation:      CategoryBadRequest,
	CodeTaskNotFound:    CategoryNotFound,
	CodeDuplicateID:     CategoryConflict,
	CodeParse:           CategoryBadRequest,
	CodeHistoryMissing:  CategoryNotFound,
	CodeStorage:         CategoryInternal,
	CodeImportPartial:   CategoryBadRequest,
	CodeImportFailed:    CategoryBadRequest,
	CodeImportCancelled: CategoryCancelled,
	CodeBusy:            CategoryConflict,
	CodeExportTooLarge:  CategoryBadRequest,
	CodeConfigInvalid:   CategoryBadRequest,
}

// ExitCode returns the process exit code the CLI uses for a category.
func (c Category) ExitCode() int {
	switch c {
	case CategoryNotFound:
		return 3
	case CategoryBadRequest:
		return 2
	case CategoryConflict:
		return 4
	case CategoryCancelled:
		return 5
	default:
		return 1
	}
}

// Error is the structured error type for gantt.
type Error struct {
	Code    Code     `json:"code"`
	What    string   `json:"what"`
	Why     string   `json:"why,omitempty"`
	Fix     string   `json:"fix,omitempty"`
	Details []string `json:"details,omitempty"`
	Cause   error    `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.What)
	if e.Why != "" {
		b.WriteString(": ")
		b.WriteString(e.Why)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// maxDetails bounds how many detail lines UserMessage prints.
const maxDetails = 5

// UserMessage returns a user-friendly message for CLI output.
func (e *Error) UserMessage() string {
	var b strings.Builder
	b.WriteString("Error: ")
	b.WriteString(e.What)
	if e.Why != "" {
		b.WriteString("\n\nWhy: ")
		b.WriteString(e.Why)
	}
	if len(e.Details) > 0 {
		b.WriteString("\n\nDetails:")
		for i, d := range e.Details {
			if i == maxDetails {
				fmt.Fprintf(&b, "\n  ...and %d more", len(e.Details)-maxDetails)
				break
			}
			b.WriteString("\n  ")
			b.WriteString(d)
		}
	}
	if e.Fix != "" {
		b.WriteString("\n\nFix: ")
		b.WriteString(e.Fix)
	}
	return b.String()
}

// Category returns the error category.
func (e *Error) Category() Category {
	if cat, ok := codeCategories[e.Code]; ok {
		return cat
	}
	return CategoryUnknown
}

// MarshalJSON implements json.Marshaler.
func (e *Error) MarshalJSON() ([]byte, error) {
	type alias Error
	aux := struct {
		*alias
		CauseMsg string `json:"cause,omitempty"`
	}{
		alias: (*alias)(e),
	}
	if e.Cause != nil {
		aux.CauseMsg = e.Cause.Error()
	}
	return json.Marshal(aux)
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy of the error with the given cause.
func (e *Error) WithCause(err error) *Error {
	cp := *e
	cp.Cause = err
	return &cp
}

// --- Error constructors ---

// ErrValidation returns an error for a task that fails field validation.
func ErrValidation(field, reason string) *Error {
	return &Error{
		Code: CodeValidation,
		What: fmt.Sprintf("invalid task: %s", field),
		Why:  reason,
		Fix:  "Provide a name, a start date and an end date (YYYY-MM-DD) with start on or before end",
	}
}

// ErrTaskNotFound returns an error when a task doesn't exist.
func ErrTaskNotFound(id string) *Error {
	return &Error{
		Code: CodeTaskNotFound,
		What: fmt.Sprintf("task %s not found", id),
		Why:  "No task with this ID exists in the current chart",
		Fix:  "Run 'gantt list' to see the available task IDs",
	}
}

// ErrDuplicateID returns an error when a replacement batch repeats an id.
func ErrDuplicateID(id string) *Error {
	return &Error{
		Code: CodeDuplicateID,
		What: "task batch rejected",
		Why:  fmt.Sprintf("task id %s appears more than once", id),
	}
}

// ErrParse returns an error for data that could not be decoded.
func ErrParse(what string, cause error) *Error {
	return &Error{
		Code:  CodeParse,
		What:  what,
		Cause: cause,
	}
}

// ErrHistoryMissing returns an error when a history entry's snapshot is gone.
func ErrHistoryMissing(key string) *Error {
	return &Error{
		Code: CodeHistoryMissing,
		What: "history snapshot not found",
		Why:  fmt.Sprintf("no data stored under %s", key),
		Fix:  "Pick another entry from 'gantt history list'",
	}
}

// ErrStorage wraps a storage port failure.
func ErrStorage(op string, cause error) *Error {
	return &Error{
		Code:  CodeStorage,
		What:  fmt.Sprintf("storage %s failed", op),
		Cause: cause,
	}
}

// ErrPartialImport describes a usable subset found alongside failures.
func ErrPartialImport(valid int, failures []string) *Error {
	return &Error{
		Code:    CodeImportPartial,
		What:    fmt.Sprintf("%d task(s) failed to load, %d loaded", len(failures), valid),
		Why:     "Some rows could not be decoded",
		Details: failures,
	}
}

// ErrImportFailed returns the terminal import failure.
func ErrImportFailed(why string, failures []string) *Error {
	return &Error{
		Code:    CodeImportFailed,
		What:    "no valid task data found",
		Why:     why,
		Fix:     "Check that the file was exported by gantt or has Task Name, Start Date and End Date columns",
		Details: failures,
	}
}

// ErrImportCancelled returns an error when the caller declines a confirmation.
func ErrImportCancelled(what string) *Error {
	return &Error{
		Code: CodeImportCancelled,
		What: what,
		Why:  "declined by caller",
	}
}

// ErrBusy returns an error when another import or restore is in flight.
func ErrBusy(op string) *Error {
	return &Error{
		Code: CodeBusy,
		What: fmt.Sprintf("cannot %s", op),
		Why:  "another import or restore is already in progress",
		Fix:  "Wait for the running operation to finish and retry",
	}
}

// ErrExportTooLarge returns an error when a value does not fit in one
// spreadsheet cell.
func ErrExportTooLarge(what string, chars, limit int) *Error {
	return &Error{
		Code: CodeExportTooLarge,
		What: fmt.Sprintf("cannot export %s", what),
		Why:  fmt.Sprintf("it is %d characters long and a spreadsheet cell holds at most %d", chars, limit),
		Fix:  "Shorten the task's name or cell texts, or remove some cell overrides, and export again",
	}
}

// ErrConfigInvalid returns an error for invalid configuration.
func ErrConfigInvalid(field, reason string) *Error {
	return &Error{
		Code: CodeConfigInvalid,
		What: fmt.Sprintf("invalid configuration: %s", field),
		Why:  reason,
		Fix:  "Check .gantt/gantt.yaml and fix the invalid field",
	}
}

// AsError attempts to convert an error to an *Error.
// Returns nil if the error chain holds none.
func AsError(err error) *Error {
	var e *Error
	if stderrors.As(err, &e) {
		return e
	}
	return nil
}

// HasCode reports whether any *Error in err's chain carries code.
func HasCode(err error, code Code) bool {
	return stderrors.Is(err, &Error{Code: code})
}
