package tournament

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrFixtureExists = errors.New("fixture already exists")
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")

	// Returned in place of storage failures, whose cause is only logged.
	ErrGenerationFailed = errors.New("could not generate fixture")
	ErrFinalizeFailed   = errors.New("could not finalize matchday")
	ErrResultFailed     = errors.New("could not record result")
)

// AlreadyExistsError lists the zones that already have matches.
type AlreadyExistsError struct {
	ZoneIDs []int64
}

func (e *AlreadyExistsError) Error() string {
	ids := make([]string, len(e.ZoneIDs))
	for i, id := range e.ZoneIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}
	return fmt.Sprintf("fixture already exists for zone(s) %s", strings.Join(ids, ", "))
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrFixtureExists
}

type ValidationError struct {
	ZoneID     int64
	CategoryID int64
	Reason     string
	Err        error
}

func (e *ValidationError) Error() string {
	switch {
	case e.CategoryID != 0:
		return fmt.Sprintf("category %d: %s", e.CategoryID, e.Reason)
	case e.ZoneID != 0:
		return fmt.Sprintf("zone %d: %s", e.ZoneID, e.Reason)
	default:
		return e.Reason
	}
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
