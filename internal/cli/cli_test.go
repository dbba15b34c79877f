//-------------------------------------------------------------------------
//
// pgEdge Care ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetFlags() {
	cfgFile, oltpDriver, oltpConn, olapDriver, olapConn, logLevel, logFormat = "", "", "", "", "", "", ""
	initDropExisting, initNoSeed, initScale, initSeed = false, false, 0, 0
	runNoHistory = false
	statusRuns = 5
	serveListen, serveSchedule = "", ""
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := Execute()
	return out.String(), err
}

// sqliteArgs returns global flags pointing at two fresh SQLite files.
func sqliteArgs(t *testing.T) []string {
	dir := t.TempDir()
	return []string{
		"--oltp-driver", "sqlite", "--oltp", filepath.Join(dir, "care.db"),
		"--olap-driver", "sqlite", "--olap", filepath.Join(dir, "care_olap.db"),
		"--log-level", "error",
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "pgedge-careetl "), out)
}

func TestEntitiesCommand(t *testing.T) {
	out, err := execute(t, "entities")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 23)
	assert.True(t, strings.HasPrefix(lines[0], "ENTITY"))
	assert.True(t, strings.HasPrefix(lines[1], "Employee "))

	var damage string
	for _, l := range lines {
		if strings.HasPrefix(l, "FactDamageReport ") {
			damage = l
		}
	}
	assert.Contains(t, damage, "fact_damage_report")
	assert.Contains(t, damage, "synthetic")
}

func TestInitRunStatus(t *testing.T) {
	global := sqliteArgs(t)

	_, err := execute(t, append([]string{"init", "--seed", "11"}, global...)...)
	require.NoError(t, err)

	out, err := execute(t, append([]string{"run"}, global...)...)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Clearing table FactAttendance...\n"), out)
	assert.Contains(t, out, "DimEmployee loaded successfully. 20 records inserted.\n")
	assert.True(t, strings.HasSuffix(out, "ETL process completed successfully.\n"), out)

	out, err = execute(t, append([]string{"status"}, global...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "OLTP tables:")
	assert.Contains(t, out, "OLAP tables:")
	assert.Regexp(t, `DimEmployee\s+dim_employee\s+20`, out)
	assert.Contains(t, out, "Completed")
}

func TestInitIsRepeatable(t *testing.T) {
	global := sqliteArgs(t)

	_, err := execute(t, append([]string{"init", "--seed", "3"}, global...)...)
	require.NoError(t, err)
	_, err = execute(t, append([]string{"init", "--seed", "3"}, global...)...)
	require.NoError(t, err)

	out, err := execute(t, append([]string{"status", "--runs", "1"}, global...)...)
	require.NoError(t, err)
	assert.Regexp(t, `Employee\s+employee\s+20\n`, out)
	assert.Contains(t, out, "none")

	_, err = execute(t, append([]string{"init", "--drop-existing", "--no-seed"}, global...)...)
	require.NoError(t, err)
	out, err = execute(t, append([]string{"status"}, global...)...)
	require.NoError(t, err)
	assert.Regexp(t, `Employee\s+employee\s+0\n`, out)
}

func TestRunWithoutHistory(t *testing.T) {
	global := sqliteArgs(t)

	_, err := execute(t, append([]string{"init", "--seed", "5"}, global...)...)
	require.NoError(t, err)
	_, err = execute(t, append([]string{"run", "--no-history"}, global...)...)
	require.NoError(t, err)

	out, err := execute(t, append([]string{"status"}, global...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Recent runs:\n  none")
}

func TestRunFailsWithoutSchema(t *testing.T) {
	global := sqliteArgs(t)

	out, err := execute(t, append([]string{"run"}, global...)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ETL process failed at DimEmployee")
	assert.True(t, strings.HasSuffix(out, "ETL process failed at DimEmployee.\n"), out)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pgedge-careetl.yaml")
	content := fmt.Sprintf(`log_level: error
oltp:
  driver: sqlite
  connection: %s
olap:
  driver: sqlite
  connection: %s
init:
  scale: 2
`, filepath.Join(dir, "care.db"), filepath.Join(dir, "care_olap.db"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, err := execute(t, "init", "--config", path, "--seed", "1")
	require.NoError(t, err)

	out, err := execute(t, "status", "--config", path)
	require.NoError(t, err)
	assert.Regexp(t, `Employee\s+employee\s+40\n`, out)
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "missing oltp connection",
			args: []string{"run", "--olap", "x"},
			want: "oltp connection string is required",
		},
		{
			name: "unknown driver",
			args: []string{"run", "--oltp-driver", "oracle", "--oltp", "x", "--olap", "y"},
			want: "oltp driver must be one of",
		},
		{
			name: "unknown log format",
			args: []string{"run", "--oltp", "x", "--olap", "y", "--log-format", "xml"},
			want: "log format must be console or json",
		},
		{
			name: "short schedule",
			args: []string{"serve", "--oltp", "x", "--olap", "y", "--schedule", "10s"},
			want: "schedule must be at least 1m",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if err == nil {
				t.Fatalf("Expected error containing %q, got nil", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %q", tt.want, err.Error())
			}
		})
	}
}
