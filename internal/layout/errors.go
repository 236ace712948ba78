package layout

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is matching.
var (
	ErrInvalidLayout = errors.New("invalid flash layout")
	ErrOverflow      = errors.New("layout overflow")
)

// InvalidLayoutError indicates offsets that are not strictly increasing.
type InvalidLayoutError struct {
	Reason string
}

func (e *InvalidLayoutError) Error() string {
	return fmt.Sprintf("invalid flash layout: %s", e.Reason)
}

func (e *InvalidLayoutError) Is(target error) bool {
	return target == ErrInvalidLayout
}

// OverflowError indicates a segment that runs into the next region.
type OverflowError struct {
	Segment string
	End     uint64
	Limit   uint64
	Next    string
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("layout overflow: %s ends at 0x%X, past %s at 0x%X",
		e.Segment, e.End, e.Next, e.Limit)
}

func (e *OverflowError) Is(target error) bool {
	return target == ErrOverflow
}
