package genome

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks against the typed errors below.
var (
	ErrInvalidFamily = errors.New("genome: invalid family record")
	ErrOutOfRange    = errors.New("genome: individual out of range")
	ErrNameOverflow  = errors.New("genome: name exceeds capacity")
)

// ValidationReason names why a stored family was rejected.
type ValidationReason string

const (
	ReasonAbsent    ValidationReason = "absent"
	ReasonCorrupt   ValidationReason = "corrupt"
	ReasonSignature ValidationReason = "signature"
	ReasonVersion   ValidationReason = "version"
)

// ValidationError reports a missing or header-mismatched family record.
type ValidationError struct {
	Reason ValidationReason
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("invalid genome %s: %s", e.Reason, e.Detail)
	}
	return fmt.Sprintf("invalid genome %s", e.Reason)
}

// Is matches ErrInvalidFamily.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidFamily }

// RangeError reports an individual index outside the family.
type RangeError struct {
	Index int
	Size  int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("individual %d out of range 0-%d", e.Index, e.Size-1)
}

// Is matches ErrOutOfRange.
func (e *RangeError) Is(target error) bool { return target == ErrOutOfRange }

// NameOverflowError reports a name that does not fit the name buffer.
type NameOverflowError struct {
	Name     string
	Capacity int
}

func (e *NameOverflowError) Error() string {
	return fmt.Sprintf("name %q (%d bytes) does not fit capacity %d", e.Name, len(e.Name), e.Capacity)
}

// Is matches ErrNameOverflow.
func (e *NameOverflowError) Is(target error) bool { return target == ErrNameOverflow }
