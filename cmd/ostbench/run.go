package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/benbjohnson/clock"
	"github.com/phuslu/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/g-m-twostay/go-ostree/internal/bench"
	"github.com/g-m-twostay/go-ostree/internal/config"
)

func newRunCommand() *cobra.Command {
	v := viper.New()
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the benchmark plan",
		Long: `Run every selected workload against every selected variant and size.
Settings come from flags, OSTBENCH_* environment variables, and .ostbench.yaml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadWith(v, configPath)
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return run(ctx, cfg, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "config file (default .ostbench.yaml in CWD or $HOME)")
	f.IntSlice("sizes", config.DefaultSizes, "element counts")
	f.StringSlice("workloads", nil, "workloads to run (default all)")
	f.StringSlice("variants", nil, "variants to run: freelist, no_freelist, btree (default all)")
	f.Int("repeat", config.DefaultRepeat, "samples per combination")
	f.Int64("seed", config.DefaultSeed, "seed of the key permutations")
	f.String("width", config.DefaultWidth, "size type of the tree: compact or wide")
	f.String("csv", config.DefaultCSV, `CSV output file, "-" for stdout`)
	f.String("metrics", "", "Prometheus textfile to write")
	f.Bool("debug", false, "enable debug logging")

	for key, flag := range map[string]string{
		"sizes": "sizes", "workloads": "workloads", "variants": "variants", "repeat": "repeat",
		"seed": "seed", "width": "width", "output.csv": "csv", "output.metrics": "metrics", "debug": "debug",
	} {
		// only fails for a nil flag
		_ = v.BindPFlag(key, f.Lookup(flag))
	}
	return cmd
}

func run(ctx context.Context, cfg *config.Config, stdout io.Writer) error {
	if cfg.Debug {
		log.DefaultLogger.Level = log.DebugLevel
		log.Debug().Msg("Debug logging enabled")
	}
	plan, err := bench.NewPlan(cfg)
	if err != nil {
		return err
	}
	log.Info().
		Int("workloads", len(plan.Workloads)).
		Int("variants", len(plan.Variants)).
		Ints("sizes", plan.Sizes).
		Str("width", plan.Width).
		Msg("starting")

	r := bench.NewRunner(&log.DefaultLogger, clock.New())
	rs, err := r.Run(ctx, plan)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if err != nil {
		log.Warn().Int("samples", len(rs)).Msg("interrupted, writing partial results")
	}

	if cfg.Output.CSV != "" {
		if err := writeCSV(cfg.Output.CSV, stdout, rs); err != nil {
			return err
		}
	}
	if cfg.Output.Metrics != "" {
		if err := r.WriteMetrics(cfg.Output.Metrics); err != nil {
			return err
		}
	}
	log.Info().Int("samples", len(rs)).Msg("done")
	return nil
}

func writeCSV(path string, stdout io.Writer, rs []bench.Result) error {
	if path == "-" {
		return bench.WriteCSV(stdout, rs)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create csv")
	}
	if err := bench.WriteCSV(f, rs); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "close csv")
}
