package Trees

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrAllocation is returned by Insert when the allocator refuses a new node. The tree is unchanged.
	ErrAllocation = errors.New("Trees: node allocation failed")
	// ErrSizeOverflow is returned when the element count would no longer fit in the size type S.
	ErrSizeOverflow = errors.New("Trees: size type overflow")
	// ErrDestroyed is returned by operations on a tree after Destroy.
	ErrDestroyed = errors.New("Trees: tree destroyed")
	// ErrUnsorted is returned by From when its input isn't in ascending order.
	ErrUnsorted = errors.New("Trees: input not sorted")
)

// InvariantError describes the first broken tree invariant found by Verify.
type InvariantError struct {
	Slot   uint64 // arena slot of the offending node, 0 for tree level problems.
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("Trees: invariant violated at slot %d: %s", e.Slot, e.Reason)
}
