package bench

import (
	"github.com/google/btree"
	"golang.org/x/exp/constraints"

	"github.com/g-m-twostay/go-ostree/Trees"
	"github.com/g-m-twostay/go-ostree/internal/config"
)

// subject is the ordered container a workload drives.
type subject interface {
	Insert(k int) error
	Delete(k int) bool
	Has(k int) bool
	Successor(k int) (int, bool)
	Predecessor(k int) (int, bool)
	Len() int
	Close() error
}

// selecter is a subject that supports order statistics.
type selecter interface {
	Select(i int) (int, bool)
}

type osTree[S constraints.Unsigned] struct {
	t *Trees.OSTree[int, S]
}

func (o osTree[S]) Insert(k int) error {
	_, err := o.t.Insert(k)
	return err
}

func (o osTree[S]) Delete(k int) bool { return o.t.Delete(k) }
func (o osTree[S]) Has(k int) bool    { return o.t.Has(k) }
func (o osTree[S]) Len() int          { return int(o.t.Size()) }
func (o osTree[S]) Close() error      { return o.t.Destroy() }

func (o osTree[S]) NodeBytes() uintptr { return o.t.NodeBytes() }

func (o osTree[S]) Successor(k int) (int, bool) {
	s, _, ok := o.t.Successor(k)
	return s, ok
}

func (o osTree[S]) Predecessor(k int) (int, bool) {
	p, _, ok := o.t.Predecessor(k)
	return p, ok
}

func (o osTree[S]) Select(i int) (int, bool) {
	k, _, ok := o.t.Select(S(i))
	return k, ok
}

// bTree is the google/btree baseline. It has no allocator hook so its allocation columns stay 0.
type bTree struct {
	t *btree.BTreeG[int]
}

const bTreeDegree = 32

func (b bTree) Insert(k int) error {
	b.t.ReplaceOrInsert(k)
	return nil
}

func (b bTree) Delete(k int) bool {
	_, ok := b.t.Delete(k)
	return ok
}

func (b bTree) Has(k int) bool { return b.t.Has(k) }
func (b bTree) Len() int       { return b.t.Len() }

func (b bTree) Close() error {
	b.t.Clear(false)
	return nil
}

func (b bTree) Successor(k int) (s int, ok bool) {
	b.t.AscendGreaterOrEqual(k+1, func(i int) bool {
		s, ok = i, true
		return false
	})
	return
}

func (b bTree) Predecessor(k int) (p int, ok bool) {
	b.t.DescendLessOrEqual(k-1, func(i int) bool {
		p, ok = i, true
		return false
	})
	return
}

// Variant is a container configuration that every workload is run against.
type Variant struct {
	Name string
	open func(alloc Trees.Allocator, width string, hint int) subject
}

func openTree[S constraints.Unsigned](cfg Trees.Config) subject {
	return osTree[S]{Trees.New[int, S](cfg)}
}

func treeVariant(name string, pooling bool) Variant {
	return Variant{name, func(alloc Trees.Allocator, width string, hint int) subject {
		cfg := Trees.Config{Pooling: pooling, Hint: hint, Allocator: alloc}
		if width == config.WidthWide {
			return openTree[Trees.Wide](cfg)
		}
		return openTree[Trees.Compact](cfg)
	}}
}

// Variants in output order.
var Variants = []Variant{
	treeVariant("freelist", true),
	treeVariant("no_freelist", false),
	{"btree", func(Trees.Allocator, string, int) subject {
		return bTree{btree.NewOrderedG[int](bTreeDegree)}
	}},
}
