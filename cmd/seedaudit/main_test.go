package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/permahub/seedaudit/internal/config"
	"github.com/permahub/seedaudit/internal/logger"
	"github.com/permahub/seedaudit/internal/report"
	"github.com/permahub/seedaudit/internal/types"
)

const locationSeedA = `INSERT INTO wiki_locations (name, slug, description) VALUES ('Green Farm', 'green-farm', 'Organic vegetables grown near Funchal');`
const locationSeedB = `INSERT INTO wiki_locations (name, slug, description) VALUES ('Green Farm Madeira', 'green-farm', 'Terraced banana plantation');`

// workspace is a temp directory holding seed files and a config file
type workspace struct {
	dir        string
	configPath string
	reportPath string
	historyDB  string
	seeds      []string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	dir := t.TempDir()
	ws := &workspace{
		dir:        dir,
		configPath: filepath.Join(dir, config.DefaultPath),
		reportPath: filepath.Join(dir, "report.json"),
		historyDB:  filepath.Join(dir, "history", "runs.db"),
	}
	for name, content := range map[string]string{"A.sql": locationSeedA, "B.sql": locationSeedB} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	ws.seeds = []string{filepath.Join(dir, "A.sql"), filepath.Join(dir, "B.sql")}

	cfg := fmt.Sprintf("seed_files:\n  - %s\n  - %s\nreport_path: %s\nhistory_db: %s\n",
		ws.seeds[0], ws.seeds[1], ws.reportPath, ws.historyDB)
	require.NoError(t, os.WriteFile(ws.configPath, []byte(cfg), 0644))
	return ws
}

// execute runs the command line and returns the exit code, stdout and stderr
func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	prevNoColor := color.NoColor
	color.NoColor = true

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	logger.SetOutput(&stderr)
	t.Cleanup(func() {
		color.NoColor = prevNoColor
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		logger.SetOutput(os.Stderr)
		logger.SetVerbose(false)
		verbose = false
		configPath = config.DefaultPath
		reportPath = ""
		baselinePath = ""
		noHistory = false
		historyLimit = 10
		initForce = false
	})

	code := run(args, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestAnalyze_WritesReportAndHistory(t *testing.T) {
	ws := newWorkspace(t)

	code, out, stderr := execute(t, "analyze", "--config", ws.configPath)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "DUPLICATE SLUGS (1)")
	assert.Contains(t, out, "Report written to "+ws.reportPath)
	assert.Contains(t, out, "recorded")

	r, err := report.LoadJSON(ws.reportPath)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Kind(types.KindLocation).Summary.DuplicateSlugs)

	code, out, stderr = execute(t, "history", "--config", ws.configPath)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "items 2")
	assert.Contains(t, out, "slugs 1")
}

func TestRoot_RunsAnalyzeWithArgs(t *testing.T) {
	ws := newWorkspace(t)
	custom := filepath.Join(ws.dir, "out", "custom.json")

	code, out, stderr := execute(t, "--config", ws.configPath, "--no-history", "--report", custom, ws.seeds[0])
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "No duplicate slugs found")

	_, err := os.Stat(custom)
	require.NoError(t, err)
	_, err = os.Stat(ws.historyDB)
	assert.True(t, errors.Is(err, os.ErrNotExist), "--no-history must not create the database")
}

func TestAnalyze_Baseline(t *testing.T) {
	ws := newWorkspace(t)

	code, _, stderr := execute(t, "analyze", "--config", ws.configPath, "--no-history", ws.seeds[0])
	require.Equal(t, 0, code, stderr)
	baseline := filepath.Join(ws.dir, "baseline.json")
	require.NoError(t, os.Rename(ws.reportPath, baseline))

	code, out, stderr := execute(t, "analyze", "--config", ws.configPath, "--no-history", "--baseline", baseline)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "Changes since baseline "+baseline)
	assert.Contains(t, out, `+ duplicate slug "green-farm" (A.sql, B.sql)`)
}

func TestAnalyze_MissingSeedFileIsNotFatal(t *testing.T) {
	ws := newWorkspace(t)
	missing := filepath.Join(ws.dir, "nope.sql")

	code, out, stderr := execute(t, "analyze", "--config", ws.configPath, "--no-history", missing, ws.seeds[0])
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "File not found: "+missing)
	assert.Contains(t, stderr, "[WARN] File not found: "+missing)
}

func TestAnalyze_FatalErrors(t *testing.T) {
	ws := newWorkspace(t)

	code, _, stderr := execute(t, "analyze", "--config", ws.configPath, "--no-history", ws.dir)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Fatal error: reading seed file")

	bad := filepath.Join(ws.dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("thresholds:\n  critical: 7\n"), 0644))
	code, _, stderr = execute(t, "analyze", "--config", bad, "--no-history")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Fatal error:")
	assert.Contains(t, stderr, "critical")
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.DefaultPath)

	code, out, stderr := execute(t, "init", "--config", path)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "Wrote "+path)

	code, _, stderr = execute(t, "init", "--config", path)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "already exists")

	code, _, stderr = execute(t, "init", "--config", path, "--force")
	assert.Equal(t, 0, code, stderr)
}

func TestVerify(t *testing.T) {
	ws := newWorkspace(t)

	code, out, stderr := execute(t, "verify", "--config", ws.configPath)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "LOCATIONS (2)")
	assert.Contains(t, out, "[FAIL] Green Farm (green-farm)")
	assert.Contains(t, out, "Description missing or too short (min 100 chars)")
	assert.Contains(t, out, "Passing: 0/2")
}

func TestHistory_UnknownRun(t *testing.T) {
	ws := newWorkspace(t)
	code, _, stderr := execute(t, "history", "--config", ws.configPath, "no-such-run")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "run not found")
}

func TestPrintFatal(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	root := errors.New("permission denied")
	err := fmt.Errorf("writing report: %w", fmt.Errorf("open report.json: %w", root))

	var quiet bytes.Buffer
	printFatal(&quiet, err, false)
	assert.Equal(t, "Fatal error: writing report: open report.json: permission denied\n", quiet.String())

	var loud bytes.Buffer
	printFatal(&loud, err, true)
	assert.Contains(t, loud.String(), "  caused by: open report.json: permission denied\n")
	assert.Contains(t, loud.String(), "  caused by: permission denied\n")
}

func TestSeedPaths(t *testing.T) {
	cfg := config.DefaultConfig()
	assert.Equal(t, cfg.SeedFiles, seedPaths(cfg, nil))
	assert.Equal(t, []string{"x.sql"}, seedPaths(cfg, []string{"x.sql"}))
}
