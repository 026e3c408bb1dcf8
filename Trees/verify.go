package Trees

import (
	"fmt"

	Go_OSTree "github.com/g-m-twostay/go-ostree"
)

// Verify checks every structural invariant of the tree: search order, red/black coloring, equal black
// height, subtree sizes, positive multiplicities, parent links, and that live and pooled slots are disjoint
// and account for the whole arena. It returns the first violation found as an *InvariantError.
// Time: O(n).
func (u *OSTree[K, S]) Verify() error {
	if u.ifs[0] != (info[S]{}) {
		return &InvariantError{0, "nil sentinel was written"}
	}
	seen := Go_OSTree.NewBitArray(len(u.ifs))
	if u.root != 0 {
		if u.ifs[u.root].red {
			return &InvariantError{uint64(u.root), "red root"}
		}
		if _, err := u.verify(u.root, 0, 0, 0, seen); err != nil {
			return err
		}
	}
	if live := seen.Count(); live != u.Distinct() {
		return &InvariantError{0, fmt.Sprintf("%d nodes reachable, %d live slots", live, u.Distinct())}
	}
	var pooled S
	for i := u.free; i != 0; i = u.ifs[i].l {
		if int(i) >= len(u.ifs) || seen.Swap(int(i), true) {
			return &InvariantError{uint64(i), "free list reaches a live, repeated or out of range slot"}
		}
		pooled++
	}
	if pooled != u.pooled {
		return &InvariantError{0, fmt.Sprintf("free list has %d slots, %d recorded", pooled, u.pooled)}
	}
	return nil
}

// verify the subtree at i whose parent is p and whose keys lie strictly between the keys of slots lo and
// hi (0 for unbounded). Returns the black height counting the nil leaves.
func (u *OSTree[K, S]) verify(i, p, lo, hi S, seen Go_OSTree.BitArray) (int, error) {
	if i == 0 {
		return 1, nil
	}
	if int(i) >= len(u.ifs) {
		return 0, &InvariantError{uint64(i), "slot out of range"}
	}
	if seen.Swap(int(i), true) {
		return 0, &InvariantError{uint64(i), "reached twice"}
	}
	n := u.ifs[i]
	switch {
	case n.p != p:
		return 0, &InvariantError{uint64(i), "wrong parent link"}
	case n.n == 0:
		return 0, &InvariantError{uint64(i), "zero multiplicity"}
	case lo != 0 && u.cmp(*u.key(lo), *u.key(i)) >= 0, hi != 0 && u.cmp(*u.key(i), *u.key(hi)) >= 0:
		return 0, &InvariantError{uint64(i), "key out of order"}
	case n.red && (u.ifs[n.l].red || u.ifs[n.r].red):
		return 0, &InvariantError{uint64(i), "red node with red child"}
	}
	lb, err := u.verify(n.l, i, lo, i, seen)
	if err != nil {
		return 0, err
	}
	rb, err := u.verify(n.r, i, i, hi, seen)
	if err != nil {
		return 0, err
	}
	if lb != rb {
		return 0, &InvariantError{uint64(i), fmt.Sprintf("black height %d on the left, %d on the right", lb, rb)}
	}
	if n.sz != u.ifs[n.l].sz+u.ifs[n.r].sz+n.n {
		return 0, &InvariantError{uint64(i), "subtree size mismatch"}
	}
	if !n.red {
		lb++
	}
	return lb, nil
}

// check panics on a broken invariant in builds with the ostdebug tag.
func (u *OSTree[K, S]) check() {
	if debugChecks {
		if err := u.Verify(); err != nil {
			panic(err)
		}
	}
}

// Stats about the memory of a tree.
type Stats struct {
	Size      uint64  // elements, counting duplicates
	Nodes     int     // live node slots
	Pooled    int     // slots on the free list
	Capacity  int     // node slots the arena can hold without growing
	Height    int     // nodes on the longest root to leaf path
	NodeBytes uintptr // bytes accounted per slot
}

// Stats of the tree. Time: O(n).
func (u *OSTree[K, S]) Stats() Stats {
	return Stats{
		Size:      uint64(u.Size()),
		Nodes:     u.Distinct(),
		Pooled:    int(u.pooled),
		Capacity:  cap(u.ifs) - 1,
		Height:    u.height(u.root),
		NodeBytes: u.nb,
	}
}

func (u *OSTree[K, S]) height(i S) int {
	if i == 0 {
		return 0
	}
	return max(u.height(u.ifs[i].l), u.height(u.ifs[i].r)) + 1
}
