package blocks

import (
	"errors"
	"fmt"
)

// ErrMissingBlock is matched by every MissingBlockError
var ErrMissingBlock = errors.New("referenced block not found")

// ErrDuplicateBlock is returned when two blocks share an id
var ErrDuplicateBlock = errors.New("duplicate block id")

// MissingBlockError reports a child reference that resolves to no block.
// It is a data-integrity error and is never retried.
type MissingBlockError struct {
	ID     string // The id that could not be resolved
	Parent string // The block whose child list referenced it, empty for roots
}

func (e *MissingBlockError) Error() string {
	if e.Parent == "" {
		return fmt.Sprintf("block %q not found", e.ID)
	}
	return fmt.Sprintf("block %q referenced by %q not found", e.ID, e.Parent)
}

// Is makes errors.Is(err, ErrMissingBlock) true
func (e *MissingBlockError) Is(target error) bool {
	return target == ErrMissingBlock
}

// ErrCycle is matched by every CycleError
var ErrCycle = errors.New("block graph contains a cycle")

// CycleError reports a block reached again through its own descendants.
// Like a missing block it is a data-integrity error.
type CycleError struct {
	ID     string // The block that closes the cycle
	Parent string // The descendant whose child list points back to it
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("block %q referenced by its descendant %q", e.ID, e.Parent)
}

// Is makes errors.Is(err, ErrCycle) true
func (e *CycleError) Is(target error) bool {
	return target == ErrCycle
}
