// Package bench runs the tree workloads under each variant and records their speed and allocator traffic.
package bench

import (
	"context"
	"slices"
	"strconv"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/phuslu/log"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/g-m-twostay/go-ostree/Trees"
	"github.com/g-m-twostay/go-ostree/internal/config"
)

// ErrUnknown is returned for a workload or variant name that doesn't exist.
var ErrUnknown = errors.New("unknown name")

// Plan is the cross product of workloads, variants and sizes to run, each Repeat times.
type Plan struct {
	Workloads []Workload
	Variants  []Variant
	Sizes     []int
	Repeat    int
	Seed      int64
	Width     string
}

func pick[T any](all []T, names []string, name func(T) string, what string) ([]T, error) {
	if len(names) == 0 {
		return all, nil
	}
	ts := make([]T, 0, len(names))
	for _, n := range names {
		i := slices.IndexFunc(all, func(t T) bool { return name(t) == n })
		if i < 0 {
			return nil, errors.WithMessagef(ErrUnknown, "%s %q", what, n)
		}
		ts = append(ts, all[i])
	}
	return ts, nil
}

// NewPlan resolves the names in cfg. Empty name lists select everything.
func NewPlan(cfg *config.Config) (*Plan, error) {
	ws, err := pick(Workloads, cfg.Workloads, func(w Workload) string { return w.Name }, "workload")
	if err != nil {
		return nil, err
	}
	vs, err := pick(Variants, cfg.Variants, func(v Variant) string { return v.Name }, "variant")
	if err != nil {
		return nil, err
	}
	return &Plan{ws, vs, cfg.Sizes, cfg.Repeat, cfg.Seed, cfg.Width}, nil
}

// Result of one timed run.
type Result struct {
	Workload string
	Variant  string
	N        int
	Sample   int
	Ops      int
	Elapsed  time.Duration
	// allocator traffic during the timed part
	AllocCalls      uint64
	FreeCalls       uint64
	TotalAllocBytes uint64
	PeakBytes       uint64
	// n times the bytes accounted per node
	ExpectedNodeBytes uint64
}

func (r *Result) NsPerOp() float64 {
	if r.Ops == 0 {
		return 0
	}
	return float64(r.Elapsed.Nanoseconds()) / float64(r.Ops)
}

func (r *Result) OpsPerSec() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Ops) / r.Elapsed.Seconds()
}

// Runner executes plans. It isn't safe for concurrent use.
type Runner struct {
	log   *log.Logger
	clock clock.Clock
	reg   *prometheus.Registry
	nsOp  *prometheus.GaugeVec
	calls *prometheus.GaugeVec
	peak  *prometheus.GaugeVec
}

var labels = []string{"workload", "variant", "n"}

// NewRunner with its own metric registry.
func NewRunner(logger *log.Logger, clk clock.Clock) *Runner {
	r := &Runner{
		log:   logger,
		clock: clk,
		reg:   prometheus.NewRegistry(),
		nsOp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ostbench_ns_per_op",
			Help: "Nanoseconds per operation of the last sample",
		}, labels),
		calls: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ostbench_alloc_calls",
			Help: "Node allocations during the last sample",
		}, labels),
		peak: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ostbench_peak_bytes",
			Help: "Peak live node bytes during the last sample",
		}, labels),
	}
	r.reg.MustRegister(r.nsOp, r.calls, r.peak)
	return r
}

// Registry holding the gauges of the finished runs.
func (r *Runner) Registry() *prometheus.Registry {
	return r.reg
}

// WriteMetrics to a textfile in the Prometheus exposition format.
func (r *Runner) WriteMetrics(path string) error {
	return errors.Wrap(prometheus.WriteToTextfile(path, r.reg), "write metrics")
}

// Run every combination in p. Unsupported combinations are skipped. On cancellation the results so far are
// returned along with the context's error.
func (r *Runner) Run(ctx context.Context, p *Plan) ([]Result, error) {
	rs := make([]Result, 0, len(p.Workloads)*len(p.Variants)*len(p.Sizes)*p.Repeat)
	for _, w := range p.Workloads {
		for _, v := range p.Variants {
			for _, n := range p.Sizes {
				for s := range p.Repeat {
					if err := ctx.Err(); err != nil {
						return rs, err
					}
					res, err := r.once(w, v, n, s, p)
					if errors.Is(err, ErrUnsupported) {
						r.log.Debug().Str("workload", w.Name).Str("variant", v.Name).Msg("skipped")
						break
					}
					if err != nil {
						return rs, errors.WithMessagef(err, "%s/%s n=%d", w.Name, v.Name, n)
					}
					rs = append(rs, res)
				}
			}
		}
	}
	return rs, nil
}

func (r *Runner) once(w Workload, v Variant, n, sample int, p *Plan) (Result, error) {
	in := newInput(n, p.Seed+int64(sample))
	alloc := new(Trees.MeteredAllocator)
	sub := v.open(alloc, p.Width, n)
	defer sub.Close()
	var nodeBytes uintptr
	if t, ok := sub.(interface{ NodeBytes() uintptr }); ok {
		nodeBytes = t.NodeBytes()
	}

	if w.Prefill {
		if _, err := insertBuild(sub, in); err != nil {
			return Result{}, errors.WithMessage(err, "prefill")
		}
		alloc.Reset()
	}
	start := r.clock.Now()
	ops, err := w.run(sub, in)
	elapsed := r.clock.Since(start)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Workload:          w.Name,
		Variant:           v.Name,
		N:                 n,
		Sample:            sample,
		Ops:               ops,
		Elapsed:           elapsed,
		AllocCalls:        alloc.AllocCalls,
		FreeCalls:         alloc.FreeCalls,
		TotalAllocBytes:   alloc.TotalBytes,
		PeakBytes:         uint64(alloc.PeakBytes),
		ExpectedNodeBytes: uint64(n) * uint64(nodeBytes),
	}
	lv := prometheus.Labels{"workload": w.Name, "variant": v.Name, "n": strconv.Itoa(n)}
	r.nsOp.With(lv).Set(res.NsPerOp())
	r.calls.With(lv).Set(float64(res.AllocCalls))
	r.peak.With(lv).Set(float64(res.PeakBytes))
	r.log.Info().
		Str("workload", w.Name).
		Str("variant", v.Name).
		Int("n", n).
		Int("sample", sample).
		Float64("ns_per_op", res.NsPerOp()).
		Uint64("alloc_calls", res.AllocCalls).
		Msg("sample done")
	return res, nil
}
