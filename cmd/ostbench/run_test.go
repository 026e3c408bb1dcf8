package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/g-m-twostay/go-ostree/internal/bench"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRunCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRunCommand_CSVToStdout(t *testing.T) {
	out, err := execute(t, "--sizes", "16", "--repeat", "1", "--workloads", "search,select", "--variants", "freelist")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(bench.Header, ","), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "search,freelist,16,0,16,"))
	assert.True(t, strings.HasPrefix(lines[2], "select,freelist,16,0,16,"))
}

func TestRunCommand_Files(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "bench.csv")
	promPath := filepath.Join(dir, "bench.prom")
	_, err := execute(t, "--sizes", "8", "--repeat", "1", "--workloads", "insert_build", "--width", "wide",
		"--csv", csvPath, "--metrics", promPath)
	require.NoError(t, err)

	body, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(body)), "\n"), 4)
	prom, err := os.ReadFile(promPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "ostbench_ns_per_op")
}

func TestRunCommand_Rejects(t *testing.T) {
	_, err := execute(t, "--workloads", "sort")
	require.ErrorIs(t, err, bench.ErrUnknown)

	_, err = execute(t, "--width", "medium")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "width")

	_, err = execute(t, "extra")
	require.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := versionCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "ostbench dev\n", out.String())
}
