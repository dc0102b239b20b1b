package wordquiz

import (
	"fmt"
	"strings"
)

// SchemaError reports required columns missing from an input table.
type SchemaError struct {
	Source  string
	Missing []string
}

func (e *SchemaError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s: missing required columns: %s", e.Source, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// ValidationError reports malformed selection or generation parameters.
// Nothing has been read or rendered when it is returned.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// EmptySelectionError reports criteria that matched zero rows. The table
// itself is valid, which is why this is distinct from SchemaError.
type EmptySelectionError struct {
	Criteria string
}

func (e *EmptySelectionError) Error() string {
	return fmt.Sprintf("no rows match the selection (%s)", e.Criteria)
}

// RenderError reports a layout, font or geometry failure while producing a
// document. Fatal to the enclosing batch.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string { return fmt.Sprintf("render failed: %v", e.Err) }

func (e *RenderError) Unwrap() error { return e.Err }

// MergeError reports an input that is not a valid PDF, or a page-copy
// failure, during a merge.
type MergeError struct {
	Err error
}

func (e *MergeError) Error() string { return fmt.Sprintf("merge failed: %v", e.Err) }

func (e *MergeError) Unwrap() error { return e.Err }

// BundleError reports that no complete question/answer pair was available to
// archive. A length mismatch alone is not an error; the bundle truncates.
type BundleError struct {
	Msg string
}

func (e *BundleError) Error() string { return e.Msg }
