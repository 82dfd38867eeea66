package manifest

import (
	"errors"
	"fmt"
)

// ErrSchema is wrapped by every [SchemaError].
var ErrSchema = errors.New("manifest schema error")

// SchemaError reports a task row that lacks a required field, or one that
// otherwise cannot become a task.
type SchemaError struct {
	Path  string
	Row   int // 1-based data row, header excluded
	Field string
	Msg   string
}

func (e *SchemaError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = "missing required field"
	}
	return fmt.Sprintf("manifest %s: row %d: %s %q", e.Path, e.Row, msg, e.Field)
}

func (e *SchemaError) Unwrap() error {
	return ErrSchema
}
