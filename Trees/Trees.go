package Trees

import "golang.org/x/exp/constraints"

// OrderedMultiset is an ordered collection of keys that may repeat, supporting order statistics.
// Indexes and ranks start from 0 and count every occurrence, so the elements form a sorted sequence
// e[0]<=e[1]<=...<=e[Size()-1]. The index reported along with a key is always the index of the first
// occurrence of that key.
// Receivers that have a bool as the last return value report with it whether the other return values are
// defined. For example, calling Min on an empty collection returns (k, 0, false) and k shouldn't be used.
// Implementations aren't expected to be safe for concurrent use.
type OrderedMultiset[K any, S constraints.Unsigned] interface {
	//Insert one occurrence of k. Returns whether an element was added, or an error, in which case the
	//collection is unchanged.
	Insert(k K) (bool, error)
	//Delete one occurrence of k. Returns false if k isn't present.
	Delete(k K) bool
	//Has k at least once.
	Has(k K) bool
	//Count the occurrences of k.
	Count(k K) S
	//Size counting duplicates.
	Size() S
	IsEmpty() bool
	//Min key; its index is 0.
	Min() (K, S, bool)
	//Max key and its index.
	Max() (K, S, bool)
	//Predecessor is the greatest key <z.
	Predecessor(z K) (K, S, bool)
	//Successor is the smallest key >z.
	Successor(z K) (K, S, bool)
	//Floor is the greatest key <=z.
	Floor(z K) (K, S, bool)
	//Ceiling is the smallest key >=z.
	Ceiling(z K) (K, S, bool)
	//Select the element at index i. 0<=i<Size().
	Select(i S) (K, S, bool)
	//Rank of k, which must be present.
	Rank(k K) (S, bool)
	//InOrder calls f on every distinct key and its count in ascending order until f returns false.
	InOrder(f func(K, S) bool)
}

var _ OrderedMultiset[int, Compact] = (*OSTree[int, Compact])(nil)
