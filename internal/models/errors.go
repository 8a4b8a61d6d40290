package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingRequiredColumn is returned when a required role cannot be
	// resolved in one of the uploaded tables.
	ErrMissingRequiredColumn = errors.New("missing required column")

	// ErrMalformedInput is returned when an upload cannot be decoded as a table.
	ErrMalformedInput = errors.New("malformed input")

	// ErrInvalidOptions is returned for a run configuration that cannot be honored.
	ErrInvalidOptions = errors.New("invalid options")
)

// MissingColumnsError lists the required roles a table failed to resolve
// together with the columns it actually has.
type MissingColumnsError struct {
	Table   string
	Roles   []Role
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	roles := make([]string, len(e.Roles))
	for i, r := range e.Roles {
		roles[i] = string(r)
	}
	return fmt.Sprintf("%s: %s is missing required columns [%s]; found columns [%s]",
		ErrMissingRequiredColumn, e.Table, strings.Join(roles, ", "), strings.Join(e.Columns, ", "))
}

func (e *MissingColumnsError) Unwrap() error { return ErrMissingRequiredColumn }

// Malformed wraps a decoder error for the named upload.
func Malformed(name string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrMalformedInput, name, err)
}
