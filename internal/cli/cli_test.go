package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `simulation:
  window_years: 1
  contribution_amount: 1000
portfolios:
  - name: Equity
    instruments:
      - source: fixed
        start: "2020-01-01"
        end: "2021-03-01"
        annual_return: 10
        allocation: 100
  - name: mix
    instruments:
      - source: fixed
        start: "2020-01-01"
        end: "2021-03-01"
        annual_return: 10
        allocation: 50
      - name: cash
        file: cash.csv
        allocation: 50
`

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cash.csv"), []byte("date,price\n2020-01-01,10\n2021-03-01,10\n"), 0o644))
	path := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSimulateAndRuns(t *testing.T) {
	t.Parallel()
	cfg := writeConfig(t)
	dir := t.TempDir()
	db := filepath.Join(dir, "runs.sqlite")

	out, err := run(t, "simulate", "-c", cfg, "-o", filepath.Join(dir, "out", "results.csv"), "--db", db, "--label", "smoke")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Equity")
	assert.Contains(t, out, "mix")
	assert.Contains(t, out, "Saved run ")

	// 2021-01-01 .. 2021-03-01
	for _, name := range []string{"results-equity.csv", "results-mix.csv"} {
		raw, err := os.ReadFile(filepath.Join(dir, "out", name))
		require.NoError(t, err, name)
		lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
		assert.Len(t, lines, 61, name)
		assert.True(t, strings.HasPrefix(lines[0], "anchor,start,xirr_percent"), name)
	}

	out, err = run(t, "runs", "list", "--db", db)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "smoke")
	id := strings.Fields(lines[1])[0]

	out, err = run(t, "runs", "show", id, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "run "+id)
	assert.Contains(t, out, "mix")

	out, err = run(t, "runs", "delete", id, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted run")

	_, err = run(t, "runs", "show", id, "--db", db)
	assert.Error(t, err)
}

func TestWindow(t *testing.T) {
	t.Parallel()
	cfg := writeConfig(t)
	ledger := filepath.Join(t.TempDir(), "ledger.csv")

	out, err := run(t, "window", "-c", cfg, "-p", "mix", "-d", "2021-02-01", "-o", ledger)
	require.NoError(t, err, out)
	assert.Contains(t, out, "window 2020-02-01 .. 2021-02-01")
	assert.Contains(t, out, "invested 12000.00")

	raw, err := os.ReadFile(ledger)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "date,instrument,kind"))
	assert.Contains(t, string(raw), ",mark,")

	_, err = run(t, "window", "-c", cfg, "-d", "2020-06-01")
	assert.Error(t, err)
	_, err = run(t, "window", "-c", cfg, "-p", "nope", "-d", "2021-02-01")
	assert.Error(t, err)
	_, err = run(t, "window", "-c", cfg)
	assert.Error(t, err)
}

func TestRank(t *testing.T) {
	t.Parallel()
	out, err := run(t, "rank", "-c", writeConfig(t))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "1"))
	assert.Contains(t, lines[1], "Equity")
}

func TestVersionAndModes(t *testing.T) {
	t.Parallel()
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "portfolio-sim dev")

	out, err = run(t, "modes")
	require.NoError(t, err)
	assert.Contains(t, out, "sip:")
	assert.Contains(t, out, "lumpsum:")
	assert.Contains(t, out, "rebalance_threshold")
}

func TestOutputPath(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "r.csv", outputPath("r.csv", "x", false))
	assert.Equal(t, "out/r-nifty-50.csv", outputPath("out/r.csv", "Nifty 50", true))
}
