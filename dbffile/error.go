package dbffile

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Open, Create, ReadRecords and AppendRecords.
// They are wrapped with a context code on the way out, match with errors.Is.
var (
	ErrUnsupportedVersion   = errors.New("unsupported file version")
	ErrMissingMemoFile      = errors.New("memo file not found")
	ErrBadHeaderTerminator  = errors.New("missing header terminator (0x0D)")
	ErrWrongRecordLength    = errors.New("record length in header does not match the field sizes")
	ErrUnsupportedFieldType = errors.New("unsupported field type")
	ErrUnsupportedEncoding  = errors.New("unsupported encoding")
	ErrMemoWriteUnsupported = errors.New("Writing to files with memo fields is not supported.")
	ErrMemoReadPastEnd      = errors.New("memo block address is past the end of the memo file")
	ErrFieldSizeInvalid     = errors.New("invalid field size")
	ErrFieldNameInvalid     = errors.New("invalid field name")
	ErrEOF                  = errors.New("EOF")
	ErrIncomplete           = errors.New("INCOMPLETE")
)

// DuplicateFieldNameError is returned when two field descriptors share a name.
type DuplicateFieldNameError struct {
	Field string
}

func (e *DuplicateFieldNameError) Error() string {
	return fmt.Sprintf("Duplicate field name: '%s'", e.Field)
}

// FieldError reports a value that does not fit its column, by field name.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Reason
}

// Error wraps another error with a stable context code naming the file,
// function and step the failure originated from.
type Error struct {
	code string
	err  error
}

func newError(code string, err error) *Error {
	return &Error{code: code, err: err}
}

func newErrorf(code string, format string, v ...interface{}) *Error {
	return &Error{code: code, err: fmt.Errorf(format, v...)}
}

func (e *Error) Error() string {
	return e.err.Error()
}

// Code returns the context code of the error.
func (e *Error) Code() string {
	return e.code
}

func (e *Error) Unwrap() error {
	return e.err
}
