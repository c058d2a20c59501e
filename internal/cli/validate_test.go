package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeValidate(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()

	stdout := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: format})
	cmd.SetOut(stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), err
}

func TestValidate_AllValid(t *testing.T) {
	out, err := executeValidate(t, "text", "testdata/traces")

	require.NoError(t, err)
	assert.Contains(t, out, "✓ trace #0 (1 steps)")
	assert.Contains(t, out, "✓ trace #1 (1 steps)")
	assert.Contains(t, out, "Validate Summary: 3 valid, 0 invalid, 3 total")
}

func TestValidate_InvalidFixtures(t *testing.T) {
	out, err := executeValidate(t, "text", "testdata/invalid")

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✓ trace #0 (1 steps)")
	assert.Contains(t, out, "✗ trace #1\n  testdata/invalid/out1.itf.json: step 1: MissingArgument: mbt::nondetPicks.amount: not picked")
	assert.Contains(t, out, "✗ trace #2\n")
	assert.Contains(t, out, "Validate Summary: 1 valid, 2 invalid, 3 total")
}

func TestValidate_JSON(t *testing.T) {
	out, err := executeValidate(t, "json", "testdata/invalid")

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string         `json:"status"`
		Data   ValidateResult `json:"data"`
		Error  *CLIError      `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInvalidFixture, resp.Error.Code)

	require.Len(t, resp.Data.Fixtures, 3)
	kinds := make([]string, 0, 3)
	for _, v := range resp.Data.Fixtures {
		kinds = append(kinds, v.Kind)
	}
	assert.Equal(t, []string{"", "MissingArgument", "MalformedFixture"}, kinds)
	assert.True(t, resp.Data.Fixtures[0].Valid)
	assert.Equal(t, 1, resp.Data.Fixtures[0].Steps)
}

func TestValidate_MaxBound(t *testing.T) {
	out, err := executeValidate(t, "text", "testdata/invalid", "--max", "1")

	require.NoError(t, err)
	assert.Contains(t, out, "Validate Summary: 1 valid, 0 invalid, 1 total")
}

func TestValidate_MissingDirectory(t *testing.T) {
	_, err := executeValidate(t, "text", "testdata/absent")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

// gapDir holds fixtures 0 and 2 of testdata/traces, leaving index 1 empty.
func gapDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	for _, name := range []string{"out0.itf.json", "out2.itf.json"} {
		data, err := os.ReadFile(filepath.Join("testdata", "traces", name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}
	return dir
}

func TestValidate_MissingIndex(t *testing.T) {
	dir := gapDir(t)

	out, err := executeValidate(t, "text", dir)

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ trace #1\n")
	assert.Contains(t, out, "file does not exist")
	assert.Contains(t, out, "Validate Summary: 2 valid, 1 invalid, 3 total")
}
