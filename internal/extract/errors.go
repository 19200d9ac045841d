//-------------------------------------------------------------------------
//
// foodwh-etl
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package extract

import "fmt"

// SourceFormatError reports a raw extract that is missing, unreadable or
// lacks an expected sheet or column.
type SourceFormatError struct {
	Dataset string
	Reason  string
	Err     error
}

func (e *SourceFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("source %s: %s: %v", e.Dataset, e.Reason, e.Err)
	}
	return fmt.Sprintf("source %s: %s", e.Dataset, e.Reason)
}

func (e *SourceFormatError) Unwrap() error {
	return e.Err
}

// Errorf builds a SourceFormatError for dataset.
func Errorf(dataset, format string, args ...any) *SourceFormatError {
	return &SourceFormatError{Dataset: dataset, Reason: fmt.Sprintf(format, args...)}
}
