package normalize

import (
	"errors"
	"fmt"
)

// ErrMalformedRecord is matched by every *MalformedRecordError.
var ErrMalformedRecord = errors.New("malformed record")

// MalformedRecordError reports a record that was dropped from a batch.
type MalformedRecordError struct {
	Index  int    // Position of the record in the input batch
	ID     string // Record id when one could be read
	Reason string
}

func (e *MalformedRecordError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("malformed record %d (id %s): %s", e.Index, e.ID, e.Reason)
	}
	return fmt.Sprintf("malformed record %d: %s", e.Index, e.Reason)
}

func (e *MalformedRecordError) Unwrap() error {
	return ErrMalformedRecord
}
