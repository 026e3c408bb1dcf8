package Trees

import (
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"

	Go_OSTree "github.com/g-m-twostay/go-ostree"
	"github.com/g-m-twostay/go-ostree/Queues"
)

// info is the structural part of a node in the arena.
// ifs[0] is the nil sentinel: size 0, black, and never written. For a slot on the free list l is the next free slot.
type info[S constraints.Unsigned] struct {
	l, r, p S // children and parent, 0 if absent.
	sz, n   S // sz=ifs[l].sz+ifs[r].sz+n, n>=1 is the multiplicity of the key.
	red     bool
}

// base is the node arena shared by the tree operations. Nodes are addressed by their index in ifs; ks[i-1] is the key of ifs[i].
type base[K any, S constraints.Unsigned] struct {
	root, free S // free is the head of the linked list of pooled slots, threaded through info.l.
	pooled     S // number of slots on the free list.
	ifs        []info[S]
	ks         []K
	pool       bool
	a          Allocator
	nb         uintptr // bytes accounted per node slot.
}

func (u *base[K, S]) init(cfg Config) {
	hint := max(cfg.Hint, 0)
	u.ifs = make([]info[S], 1, hint+1)
	u.ks = make([]K, 0, hint)
	u.pool = cfg.Pooling
	if u.a = cfg.Allocator; u.a == nil {
		u.a = Unbounded
	}
	u.nb = unsafe.Sizeof(info[S]{}) + unsafe.Sizeof(*new(K))
}

func (u *base[K, S]) getIf(i S) *info[S] {
	return &u.ifs[i]
}

func (u *base[K, S]) key(i S) *K {
	return &u.ks[i-1]
}

// updateSize recomputes the size of i from its children. O(1).
func (u *base[K, S]) updateSize(i S) {
	n := u.getIf(i)
	n.sz = u.ifs[n.l].sz + u.ifs[n.r].sz + n.n
}

// updatePath recomputes sizes from i up to the root.
func (u *base[K, S]) updatePath(i S) {
	for ; i != 0; i = u.ifs[i].p {
		u.updateSize(i)
	}
}

// replaceChild makes n take the place of o under p. p==0 means o was the root.
func (u *base[K, S]) replaceChild(p, o, n S) {
	if p == 0 {
		u.root = n
	} else if u.ifs[p].l == o {
		u.ifs[p].l = n
	} else {
		u.ifs[p].r = n
	}
}

// transplant the subtree rooted at n into the position of o. o's own links are left as they were.
func (u *base[K, S]) transplant(o, n S) {
	p := u.ifs[o].p
	u.replaceChild(p, o, n)
	if n != 0 {
		u.ifs[n].p = p
	}
}

func (u *base[K, S]) rotateLeft(x S) {
	xn := u.getIf(x)
	y := xn.r
	yn := u.getIf(y)

	xn.r = yn.l
	if yn.l != 0 {
		u.ifs[yn.l].p = x
	}
	yn.p = xn.p
	u.replaceChild(xn.p, x, y)
	yn.l, xn.p = x, y
	u.updateSize(x)
	u.updateSize(y)
}

func (u *base[K, S]) rotateRight(y S) {
	yn := u.getIf(y)
	x := yn.l
	xn := u.getIf(x)

	yn.l = xn.r
	if xn.r != 0 {
		u.ifs[xn.r].p = y
	}
	xn.p = yn.p
	u.replaceChild(yn.p, y, x)
	xn.r, yn.p = y, x
	u.updateSize(y)
	u.updateSize(x)
}

func (u *base[K, S]) minimum(i S) S {
	for u.ifs[i].l != 0 {
		i = u.ifs[i].l
	}
	return i
}

func (u *base[K, S]) maximum(i S) S {
	for u.ifs[i].r != 0 {
		i = u.ifs[i].r
	}
	return i
}

// next returns the in-order successor slot of i, 0 if i is the last.
func (u *base[K, S]) next(i S) S {
	if r := u.ifs[i].r; r != 0 {
		return u.minimum(r)
	}
	p := u.ifs[i].p
	for p != 0 && u.ifs[p].r == i {
		i, p = p, u.ifs[p].p
	}
	return p
}

// addFree slot a once.
func (u *base[K, S]) addFree(a S) {
	u.ifs[a] = info[S]{l: u.free}
	u.ks[a-1] = *new(K)
	u.free = a
	u.pooled++
}

// popFree slot once. Returns 0 when there's no free slot.
func (u *base[K, S]) popFree() S {
	b := u.free
	if b != 0 {
		u.free = u.ifs[b].l
		u.pooled--
	}
	return b
}

// alloc a red leaf slot holding one occurrence of k. Pooled slots are reused first.
func (u *base[K, S]) alloc(k K) (S, error) {
	fresh := info[S]{sz: 1, n: 1, red: true}
	if i := u.popFree(); i != 0 {
		u.ifs[i], u.ks[i-1] = fresh, k
		return i, nil
	}
	if err := u.a.Alloc(u.nb); err != nil {
		return 0, errors.WithMessagef(ErrAllocation, "%d bytes: %v", u.nb, err)
	}
	u.ifs = append(u.ifs, fresh)
	u.ks = append(u.ks, k)
	return S(len(u.ifs) - 1), nil
}

// release slot i, which must already be unlinked from the tree. Without pooling the last slot is moved into
// i so the arena stays dense, and the storage is freed right away.
func (u *base[K, S]) release(i S) {
	if u.pool {
		u.addFree(i)
		return
	}
	last := S(len(u.ifs) - 1)
	if i != last {
		u.move(last, i)
	}
	u.ks[last-1] = *new(K)
	u.ifs, u.ks = u.ifs[:last], u.ks[:last-1]
	u.a.Free(u.nb)
}

// move the live node in slot from into the unused slot to and fix every link pointing at it.
func (u *base[K, S]) move(from, to S) {
	n := u.ifs[from]
	u.ifs[to], u.ks[to-1] = n, u.ks[from-1]
	u.replaceChild(n.p, from, to)
	if n.l != 0 {
		u.ifs[n.l].p = to
	}
	if n.r != 0 {
		u.ifs[n.r].p = to
	}
}

// teardown frees every live slot, breadth first from the root, then drains the free list.
// The arena keeps its capacity.
func (u *base[K, S]) teardown() {
	if u.root != 0 {
		q := Queues.MakeArrayQueue[S](64)
		for q.Push(u.root); !q.Empty(); {
			i, _ := q.Pop()
			n := u.ifs[i]
			if n.l != 0 {
				q.Push(n.l)
			}
			if n.r != 0 {
				q.Push(n.r)
			}
			u.a.Free(u.nb)
		}
	}
	for u.popFree() != 0 {
		u.a.Free(u.nb)
	}
	clear(u.ks)
	u.ifs, u.ks = u.ifs[:1], u.ks[:0]
	u.root = 0
}

// compact moves live nodes from the tail of the arena into pooled holes, frees the pooled storage and
// shrinks the arena to exactly the live nodes.
func (u *base[K, S]) compact() {
	live := len(u.ifs) - 1 - int(u.pooled)
	if u.pooled > 0 {
		holes := Go_OSTree.NewBitArray(len(u.ifs))
		for i := u.free; i != 0; i = u.ifs[i].l {
			holes.Up(int(i))
		}
		for lo, hi := S(1), S(len(u.ifs)-1); ; lo, hi = lo+1, hi-1 {
			for lo < hi && !holes.Get(int(lo)) {
				lo++
			}
			for lo < hi && holes.Get(int(hi)) {
				hi--
			}
			if lo >= hi {
				break
			}
			u.move(hi, lo)
		}
		for range int(u.pooled) {
			u.a.Free(u.nb)
		}
		u.free, u.pooled = 0, 0
	}
	ifs := make([]info[S], live+1)
	copy(ifs, u.ifs)
	ks := make([]K, live)
	copy(ks, u.ks)
	u.ifs, u.ks = ifs, ks
}
