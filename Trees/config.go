package Trees

// DuplicatePolicy decides what Insert does with a key that is already present.
type DuplicatePolicy uint8

const (
	// CountDuplicates keeps one node per key and counts repeated insertions (multiset).
	CountDuplicates DuplicatePolicy = iota
	// IgnoreDuplicates makes inserting a present key a no-op (set).
	IgnoreDuplicates
)

func (d DuplicatePolicy) String() string {
	switch d {
	case CountDuplicates:
		return "count"
	case IgnoreDuplicates:
		return "ignore"
	}
	return "unknown"
}

// Compact and Wide are the two usual choices for the size type S. Compact halves the size fields of a node
// on 64 bit machines but limits the tree to 1<<32-1 elements, counting duplicates.
type (
	Compact = uint32
	Wide    = uint64
)

// Config of a tree. The zero value is a multiset without pooling that allocates without limit.
type Config struct {
	Duplicates DuplicatePolicy
	// Pooling keeps released node slots on a free list for reuse instead of returning them to Allocator.
	Pooling bool
	// Hint is the initial capacity of the node arena.
	Hint int
	// Allocator is asked before every fresh node slot is handed out. nil means Unbounded.
	Allocator Allocator
}
