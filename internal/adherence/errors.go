package adherence

import (
	"errors"
	"fmt"
)

var (
	// ErrEntryNotFound means the entry id is not part of the loaded schedule.
	ErrEntryNotFound = errors.New("schedule entry not found")
	// ErrTransportFailure wraps every failed read or write against the store.
	ErrTransportFailure = errors.New("schedule store unavailable")
	// ErrLoadSuperseded is returned by a Load whose result arrived after a
	// newer Load was started. Nothing was changed; callers may ignore it.
	ErrLoadSuperseded = errors.New("schedule load superseded by a newer request")
	ErrOwnerRequired  = errors.New("owner id is required")
)

func transportFailure(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrTransportFailure, err)
}
