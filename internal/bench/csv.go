package bench

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// Header of the CSV written by WriteCSV.
var Header = []string{
	"test", "config", "n", "sample", "ops", "ns_per_op", "ops_per_sec",
	"alloc_calls", "free_calls", "total_alloc_bytes", "peak_bytes", "expected_node_bytes",
}

func (r *Result) record() []string {
	u := func(v uint64) string { return strconv.FormatUint(v, 10) }
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
	return []string{
		r.Workload, r.Variant, strconv.Itoa(r.N), strconv.Itoa(r.Sample), strconv.Itoa(r.Ops),
		f(r.NsPerOp()), f(r.OpsPerSec()),
		u(r.AllocCalls), u(r.FreeCalls), u(r.TotalAllocBytes), u(r.PeakBytes), u(r.ExpectedNodeBytes),
	}
}

// WriteCSV writes the header followed by one row per result.
func WriteCSV(w io.Writer, rs []Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return errors.Wrap(err, "write csv header")
	}
	for i := range rs {
		if err := cw.Write(rs[i].record()); err != nil {
			return errors.Wrap(err, "write csv row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}
