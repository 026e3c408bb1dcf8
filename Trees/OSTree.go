package Trees

import (
	"cmp"
	"math/bits"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// OSTree is an order statistic tree: a red/black tree in which every node also records the number of
// elements in its subtree, counting duplicates. Equal keys share one node with a multiplicity, so the
// tree is a multiset unless configured with IgnoreDuplicates.
// K is the key type, totally ordered by the comparison function. S is the unsigned type of sizes, ranks
// and arena indexes; the tree refuses to grow beyond the largest S.
// Nodes live in an arena of slots addressed by index. Released slots go to a free list when pooling is
// enabled, otherwise the arena is kept dense and storage is handed back to the Allocator immediately.
// The height is at most 2*log2(n+1) where n is the number of distinct keys; all operations except
// the bulk ones are O(log n). Ranks and indexes start from 0 and count duplicates.
// An OSTree isn't safe for concurrent use.
type OSTree[K any, S constraints.Unsigned] struct {
	base[K, S]
	cmp  func(K, K) int
	dups DuplicatePolicy
	dead bool
}

// New tree ordering keys with cmp.Compare.
func New[K cmp.Ordered, S constraints.Unsigned](cfg Config) *OSTree[K, S] {
	return NewFunc[K, S](cfg, cmp.Compare[K])
}

// NewFunc builds a tree ordered by compare, which must return a negative number if a<b, 0 if a==b and
// a positive number if a>b, and must be a total order.
func NewFunc[K any, S constraints.Unsigned](cfg Config, compare func(a, b K) int) *OSTree[K, S] {
	u := &OSTree[K, S]{cmp: compare, dups: cfg.Duplicates}
	u.init(cfg)
	return u
}

// From builds a tree directly from an ascending slice in O(n). Runs of equal keys become one node with
// multiplicity, or a single element under IgnoreDuplicates. sorted isn't retained.
func From[K cmp.Ordered, S constraints.Unsigned](cfg Config, sorted []K) (*OSTree[K, S], error) {
	if cfg.Hint < len(sorted) {
		cfg.Hint = len(sorted)
	}
	u := New[K, S](cfg)
	if err := u.build(sorted); err != nil {
		return nil, err
	}
	u.check()
	return u, nil
}

type buildFrame[S constraints.Unsigned] struct {
	lo, hi, p S
	depth     int
	left      bool
}

func (u *OSTree[K, S]) build(sorted []K) error {
	ks := make([]K, 0, len(sorted))
	ns := make([]uint64, 0, len(sorted))
	for i, k := range sorted {
		if last := len(ks) - 1; last >= 0 {
			if c := u.cmp(ks[last], k); c > 0 {
				return errors.WithMessagef(ErrUnsorted, "index %d", i)
			} else if c == 0 {
				if u.dups == CountDuplicates {
					ns[last]++
				}
				continue
			}
		}
		ks, ns = append(ks, k), append(ns, 1)
	}
	m := len(ks)
	if m == 0 {
		return nil
	}
	// pre[i] is the number of elements in the first i distinct keys.
	pre := make([]uint64, m+1)
	for i, n := range ns {
		pre[i+1] = pre[i] + n
	}
	if pre[m] > uint64(^S(0)) {
		return errors.WithMessagef(ErrSizeOverflow, "%d elements", pre[m])
	}
	for i := range m {
		if err := u.a.Alloc(u.nb); err != nil {
			for range i {
				u.a.Free(u.nb)
			}
			return errors.WithMessagef(ErrAllocation, "%d bytes: %v", u.nb, err)
		}
	}
	u.ks = append(u.ks[:0], ks...)
	u.ifs = append(u.ifs[:1], make([]info[S], m)...)
	// mid splitting fills every level but the deepest one, which is colored red unless it's the root.
	redDepth := bits.Len(uint(m)) - 1
	st := make([]buildFrame[S], 0, bits.Len(uint(m))+1)
	for st = append(st, buildFrame[S]{lo: 1, hi: S(m)}); len(st) > 0; {
		f := st[len(st)-1]
		st = st[:len(st)-1]
		mid := f.lo + (f.hi-f.lo)/2
		*u.getIf(mid) = info[S]{
			p:   f.p,
			sz:  S(pre[f.hi] - pre[f.lo-1]),
			n:   S(ns[mid-1]),
			red: f.depth == redDepth && redDepth > 0,
		}
		if f.p == 0 {
			u.root = mid
		} else if f.left {
			u.ifs[f.p].l = mid
		} else {
			u.ifs[f.p].r = mid
		}
		if f.lo < mid {
			st = append(st, buildFrame[S]{f.lo, mid - 1, mid, f.depth + 1, true})
		}
		if mid < f.hi {
			st = append(st, buildFrame[S]{mid + 1, f.hi, mid, f.depth + 1, false})
		}
	}
	return nil
}

// find the slot holding k, 0 if k isn't in the tree.
func (u *OSTree[K, S]) find(k K) S {
	for i := u.root; i != 0; {
		if c := u.cmp(k, *u.key(i)); c < 0 {
			i = u.ifs[i].l
		} else if c > 0 {
			i = u.ifs[i].r
		} else {
			return i
		}
	}
	return 0
}

// Insert one occurrence of k. Returns true if the tree gained an element; false with a nil error means k
// was present and duplicates are ignored. On error the tree is unchanged.
func (u *OSTree[K, S]) Insert(k K) (bool, error) {
	if u.dead {
		return false, ErrDestroyed
	}
	var p S
	c := 0
	for i := u.root; i != 0; {
		if c = u.cmp(k, *u.key(i)); c == 0 {
			if u.dups == IgnoreDuplicates {
				return false, nil
			}
			if u.ifs[u.root].sz == ^S(0) {
				return false, errors.WithMessagef(ErrSizeOverflow, "%d elements", u.ifs[u.root].sz)
			}
			u.ifs[i].n++
			u.updatePath(i)
			u.check()
			return true, nil
		}
		p = i
		if c < 0 {
			i = u.ifs[i].l
		} else {
			i = u.ifs[i].r
		}
	}
	if u.ifs[u.root].sz == ^S(0) {
		return false, errors.WithMessagef(ErrSizeOverflow, "%d elements", u.ifs[u.root].sz)
	}
	z, err := u.alloc(k)
	if err != nil {
		return false, err
	}
	u.ifs[z].p = p
	if p == 0 {
		u.root = z
	} else if c < 0 {
		u.ifs[p].l = z
	} else {
		u.ifs[p].r = z
	}
	u.updatePath(z)
	u.insertFixup(z)
	u.check()
	return true, nil
}

// Delete one occurrence of k. Returns false if k isn't in the tree.
func (u *OSTree[K, S]) Delete(k K) bool {
	i := u.find(k)
	if i == 0 {
		return false
	}
	if n := u.getIf(i); n.n > 1 {
		n.n--
		u.updatePath(i)
	} else {
		u.remove(i)
	}
	u.check()
	return true
}

// DeleteAll occurrences of k, returning how many were removed.
func (u *OSTree[K, S]) DeleteAll(k K) S {
	i := u.find(k)
	if i == 0 {
		return 0
	}
	n := u.ifs[i].n
	u.remove(i)
	u.check()
	return n
}

// Has k in the tree.
func (u *OSTree[K, S]) Has(k K) bool {
	return u.find(k) != 0
}

// Count the occurrences of k.
func (u *OSTree[K, S]) Count(k K) S {
	return u.ifs[u.find(k)].n
}

// Size is the number of elements, counting duplicates.
func (u *OSTree[K, S]) Size() S {
	return u.ifs[u.root].sz
}

func (u *OSTree[K, S]) IsEmpty() bool {
	return u.root == 0
}

// Distinct number of keys, which is also the number of live nodes.
func (u *OSTree[K, S]) Distinct() int {
	return len(u.ifs) - 1 - int(u.pooled)
}

// rankOf the first occurrence of the key in slot i, found by walking up to the root.
func (u *OSTree[K, S]) rankOf(i S) S {
	r := u.ifs[u.ifs[i].l].sz
	for p := u.ifs[i].p; p != 0; i, p = p, u.ifs[p].p {
		if u.ifs[p].r == i {
			r += u.ifs[u.ifs[p].l].sz + u.ifs[p].n
		}
	}
	return r
}

// Rank of the first occurrence of k in ascending order, starting from 0. Returns false if k isn't present.
func (u *OSTree[K, S]) Rank(k K) (S, bool) {
	if i := u.find(k); i != 0 {
		return u.rankOf(i), true
	}
	return 0, false
}

// LowerBound is the number of elements less than k, which is the rank k would have if it were inserted.
func (u *OSTree[K, S]) LowerBound(k K) (r S) {
	for i := u.root; i != 0; {
		if n := u.getIf(i); u.cmp(*u.key(i), k) < 0 {
			r += u.ifs[n.l].sz + n.n
			i = n.r
		} else {
			i = n.l
		}
	}
	return
}

// CountRange of elements e with lo<=e<hi.
func (u *OSTree[K, S]) CountRange(lo, hi K) S {
	if u.cmp(lo, hi) >= 0 {
		return 0
	}
	return u.LowerBound(hi) - u.LowerBound(lo)
}

// Select the element at index i of the ascending order, duplicates expanded. Returns its key and the
// index of the first occurrence of that key, or false if i>=Size().
func (u *OSTree[K, S]) Select(i S) (k K, first S, ok bool) {
	if i >= u.Size() {
		return
	}
	var acc S
	for cur := u.root; cur != 0; {
		n := u.getIf(cur)
		if ls := u.ifs[n.l].sz; i < ls {
			cur = n.l
		} else if i < ls+n.n {
			return *u.key(cur), acc + ls, true
		} else {
			acc += ls + n.n
			i -= ls + n.n
			cur = n.r
		}
	}
	return
}

// Min key, its index is always 0.
func (u *OSTree[K, S]) Min() (k K, i S, ok bool) {
	if u.root == 0 {
		return
	}
	return *u.key(u.minimum(u.root)), 0, true
}

// Max key and the index of its first occurrence.
func (u *OSTree[K, S]) Max() (k K, i S, ok bool) {
	if u.root == 0 {
		return
	}
	m := u.maximum(u.root)
	return *u.key(m), u.Size() - u.ifs[m].n, true
}

// neighbour finds the closest slot below (or above) z. With inclusive a key equal to z qualifies.
func (u *OSTree[K, S]) neighbour(z K, below, inclusive bool) (cand S) {
	for i := u.root; i != 0; {
		c := u.cmp(*u.key(i), z)
		if below {
			if c < 0 || inclusive && c == 0 {
				cand, i = i, u.ifs[i].r
			} else {
				i = u.ifs[i].l
			}
		} else {
			if c > 0 || inclusive && c == 0 {
				cand, i = i, u.ifs[i].l
			} else {
				i = u.ifs[i].r
			}
		}
	}
	return
}

func (u *OSTree[K, S]) result(i S) (k K, r S, ok bool) {
	if i == 0 {
		return
	}
	return *u.key(i), u.rankOf(i), true
}

// Predecessor is the greatest key strictly less than z, with the index of its first occurrence.
func (u *OSTree[K, S]) Predecessor(z K) (K, S, bool) {
	return u.result(u.neighbour(z, true, false))
}

// Successor is the smallest key strictly greater than z, with the index of its first occurrence.
func (u *OSTree[K, S]) Successor(z K) (K, S, bool) {
	return u.result(u.neighbour(z, false, false))
}

// Floor is the greatest key less than or equal to z, with the index of its first occurrence.
func (u *OSTree[K, S]) Floor(z K) (K, S, bool) {
	return u.result(u.neighbour(z, true, true))
}

// Ceiling is the smallest key greater than or equal to z, with the index of its first occurrence.
func (u *OSTree[K, S]) Ceiling(z K) (K, S, bool) {
	return u.result(u.neighbour(z, false, true))
}

// InOrder calls f with every distinct key and its multiplicity in ascending order until f returns false.
// f mustn't modify the tree.
func (u *OSTree[K, S]) InOrder(f func(k K, n S) bool) {
	if u.root == 0 {
		return
	}
	for i := u.minimum(u.root); i != 0; i = u.next(i) {
		if !f(*u.key(i), u.ifs[i].n) {
			return
		}
	}
}

// Keys in ascending order with duplicates repeated.
func (u *OSTree[K, S]) Keys() []K {
	ks := make([]K, 0, u.Size())
	u.InOrder(func(k K, n S) bool {
		for j := S(0); j < n; j++ {
			ks = append(ks, k)
		}
		return true
	})
	return ks
}

// NodeBytes is the storage accounted to the Allocator for every node slot.
func (u *OSTree[K, S]) NodeBytes() uintptr {
	return u.nb
}

// Clear removes every element, returning all node storage, pooled slots included, to the Allocator. The
// tree stays usable and keeps its arena capacity.
func (u *OSTree[K, S]) Clear() {
	u.teardown()
}

// Compact returns the pooled slots to the Allocator and trims the arena to the live nodes. The contents and
// shape of the tree don't change but slots are renumbered.
func (u *OSTree[K, S]) Compact() {
	u.compact()
	u.check()
}

// Destroy releases all node storage. It must be called once; afterwards Insert fails with ErrDestroyed and
// the tree reads as empty.
func (u *OSTree[K, S]) Destroy() error {
	if u.dead {
		return ErrDestroyed
	}
	u.teardown()
	u.ifs, u.ks = make([]info[S], 1), nil
	u.dead = true
	return nil
}
