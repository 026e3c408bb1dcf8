// Package main provides ostbench, which benchmarks the order statistic tree against its variants and a B-tree.
package main

import (
	"fmt"
	"os"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	log.DefaultLogger = log.Logger{
		Caller:     1,
		TimeFormat: "2006-01-02 15:04:05",
		Writer:     &log.IOWriter{Writer: os.Stderr},
	}

	rootCmd := &cobra.Command{
		Use:   "ostbench",
		Short: "Order statistic tree benchmarks",
		Long: `ostbench times the tree workloads with and without node pooling and writes
one CSV row per sample, with the allocator traffic of each.

Commands:
  run       Run the benchmark plan`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ostbench %s\n", version)
		},
	}
}
