package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFixture = `teams:
  - {number: 3, name: Hawks}
  - {number: 1, name: Falcons}
  - {number: 2, name: Eagles}
users:
  - {id: 1, name: Ada, team: 1}
  - {id: 2, name: Grace, team: 1}
  - {id: 3, name: Linus, team: 2}
`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "finch.toml")
	content := "db_url = \"sqlite://" + filepath.ToSlash(filepath.Join(dir, "finch.db")) + "\"\n" +
		"[logging]\nlevel = \"error\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		configFlag = ""
		verbosity = 0
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestMigrateCommand(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := execute(t, "migrate", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Schema version: 2")
}

func TestSeedCommand(t *testing.T) {
	cfgPath := writeTestConfig(t)
	fixture := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(fixture, []byte(testFixture), 0o644))

	out, err := execute(t, "seed", fixture, "--config", cfgPath)
	require.NoError(t, err)

	assert.Contains(t, out, "Seeded 3 teams and 3 users")
	assert.Contains(t, out, "team 1: 2 members")
	assert.Contains(t, out, "team 2: 1 members")
	assert.Less(t, strings.Index(out, "team 1:"), strings.Index(out, "team 2:"))
}

func TestSeedCommandMissingFixture(t *testing.T) {
	cfgPath := writeTestConfig(t)

	_, err := execute(t, "seed", filepath.Join(t.TempDir(), "missing.yaml"), "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open fixture")
}

func TestConfigShowCommand(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := execute(t, "config", "show", "--config", cfgPath)
	require.NoError(t, err)

	assert.Contains(t, out, "# "+cfgPath)
	assert.Contains(t, out, "db_url")
	assert.Contains(t, out, "[pagination]")
}

func TestConfigShowMasksDatabasePassword(t *testing.T) {
	cfgPath := writeTestConfig(t)
	t.Setenv("FINCH_DB_URL", "postgres://finch:hunter2@db:5432/finch")

	out, err := execute(t, "config", "show", "--config", cfgPath)
	require.NoError(t, err)

	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, "postgres://finch:xxxxx@db:5432/finch")
}

func TestConfigPathCommand(t *testing.T) {
	out, err := execute(t, "config", "path", "--config", "/etc/finch.toml")
	require.NoError(t, err)
	assert.Equal(t, "/etc/finch.toml\n", out)
}

func TestRunRequiresDatabaseURL(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "finch.toml")
	t.Setenv("FINCH_DB_URL", "")

	_, err := execute(t, "run", t.TempDir(), "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db_url")
}
