package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestSimulateAndDump(t *testing.T) {
	dir := t.TempDir()
	pebbleDir := filepath.Join(dir, "pebble")
	fileDir := filepath.Join(dir, "flash")

	stdout, stderr, err := run(t, "simulate",
		"--events", "60", "--flush-every", "7", "--no-clock",
		"--pebble-dir", pebbleDir, "--file-dir", fileDir)
	require.NoError(t, err)
	assert.Contains(t, stderr, "admitted=60")

	displayed := strings.Split(strings.TrimSuffix(stdout, "\r\n"), "\r\n")
	assert.Len(t, displayed, 60)
	for _, line := range displayed {
		assert.True(t, strings.HasPrefix(line, "["), line)
	}

	fileOut, _, err := run(t, "dump", "--file", filepath.Join(fileDir, "ringlog.log"))
	require.NoError(t, err)
	require.NotEmpty(t, fileOut)

	pebbleOut, _, err := run(t, "dump", "--pebble-dir", pebbleDir)
	require.NoError(t, err)
	assert.Equal(t, fileOut, pebbleOut)
	for _, line := range strings.SplitAfter(strings.TrimSuffix(pebbleOut, "\r\n"), "\r\n") {
		assert.True(t, strings.HasPrefix(line, "[ERROR]") || strings.HasPrefix(line, "[CRITICAL]"), line)
	}

	criticalOut, _, err := run(t, "dump", "--pebble-dir", pebbleDir, "--filter", `level == "CRITICAL"`)
	require.NoError(t, err)
	assert.NotContains(t, criticalOut, "[ERROR]")
	assert.Less(t, len(criticalOut), len(pebbleOut))
}

func TestSimulateHonoursConfigFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "ringlog.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("capacity: 4\ndefault_level: none\n"), 0644))

	stdout, stderr, err := run(t, "simulate", "--config", configPath, "--events", "20", "--no-clock")
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "admitted=0 filtered=20")
}

func TestDumpRequiresSource(t *testing.T) {
	_, _, err := run(t, "dump")
	assert.Error(t, err)

	_, _, err = run(t, "dump", "--file", "a", "--pebble-dir", "b")
	assert.Error(t, err)

	_, _, err = run(t, "dump", "--pebble-dir", t.TempDir(), "--filter", "severity +")
	assert.Error(t, err)
}

func TestConfigCommand(t *testing.T) {
	t.Setenv("RINGLOG_CAPACITY", "33")

	stdout, _, err := run(t, "config")
	require.NoError(t, err)
	assert.Contains(t, stdout, "capacity: 33")
	assert.Contains(t, stdout, "max_message_length: 64")
	assert.Contains(t, stdout, "default_level: DEBUG")
}
