package bench

import (
	"math/rand"

	"github.com/pkg/errors"
)

// ErrUnsupported is returned by a workload that needs an operation its subject lacks.
var ErrUnsupported = errors.New("workload not supported by variant")

// input of one run. keys holds 2n distinct keys in random order; the first n are the ones a prefilled subject
// holds, the rest are absent.
type input struct {
	keys []int
	n    int
	rg   *rand.Rand
}

func newInput(n int, seed int64) *input {
	rg := rand.New(rand.NewSource(seed))
	return &input{keys: rg.Perm(2 * n), n: n, rg: rg}
}

func (in *input) present() []int { return in.keys[:in.n] }

// any key, present or not.
func (in *input) probe() int { return in.keys[in.rg.Intn(len(in.keys))] }

// Workload is a timed sequence of operations on a subject.
type Workload struct {
	Name string
	// Prefill with the present keys before timing starts.
	Prefill bool
	// run returns the number of operations performed.
	run func(s subject, in *input) (int, error)
}

func insertBuild(s subject, in *input) (int, error) {
	for _, k := range in.present() {
		if err := s.Insert(k); err != nil {
			return 0, err
		}
	}
	return in.n, nil
}

func deleteToEmpty(s subject, in *input) (int, error) {
	ks := in.present()
	in.rg.Shuffle(len(ks), func(i, j int) { ks[i], ks[j] = ks[j], ks[i] })
	for _, k := range ks {
		if !s.Delete(k) {
			return 0, errors.Errorf("key %d not deleted", k)
		}
	}
	if s.Len() != 0 {
		return 0, errors.Errorf("%d elements left", s.Len())
	}
	return in.n, nil
}

var sink int

func search(s subject, in *input) (int, error) {
	for range in.n {
		if s.Has(in.probe()) {
			sink++
		}
	}
	return in.n, nil
}

func selectAt(s subject, in *input) (int, error) {
	sel, ok := s.(selecter)
	if !ok {
		return 0, ErrUnsupported
	}
	for range in.n {
		k, ok := sel.Select(in.rg.Intn(in.n))
		if !ok {
			return 0, errors.New("select out of range")
		}
		sink += k
	}
	return in.n, nil
}

func successor(s subject, in *input) (int, error) {
	for range in.n {
		k, _ := s.Successor(in.probe())
		sink += k
	}
	return in.n, nil
}

func predecessor(s subject, in *input) (int, error) {
	for range in.n {
		k, _ := s.Predecessor(in.probe())
		sink += k
	}
	return in.n, nil
}

// churnDeleteInsert replaces every present key with an absent one, one pair at a time, so the size stays
// around n.
func churnDeleteInsert(s subject, in *input) (int, error) {
	for i, k := range in.present() {
		if !s.Delete(k) {
			return 0, errors.Errorf("key %d not deleted", k)
		}
		if err := s.Insert(in.keys[in.n+i]); err != nil {
			return 0, err
		}
	}
	return 2 * in.n, nil
}

// Workloads in output order.
var Workloads = []Workload{
	{"insert_build", false, insertBuild},
	{"delete_to_empty", true, deleteToEmpty},
	{"search", true, search},
	{"select", true, selectAt},
	{"successor", true, successor},
	{"predecessor", true, predecessor},
	{"churn_delete_insert", true, churnDeleteInsert},
}
