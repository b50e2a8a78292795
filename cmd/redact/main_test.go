package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinical-redact-go/internal/dataset"
)

func writeCorpus(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "in.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	w := csv.NewWriter(f)
	require.NoError(t, w.WriteAll([][]string{
		{"conversation", "id"},
		{"Doctor: Hi John Smith\nPatient: I have a headache\nDoctor: Since when?\nPatient: Two days", "1"},
		{"Patient: hello", "2"},
		{"Doctor: Good morning, Mr. Davis.\n\nPatient: My knee hurts.", "3"},
	}))
	require.NoError(t, f.Close())
	return path
}

func readCorpus(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for _, k := range []string{"OPENAI_API_KEY", "LLM_API_KEY", "ORACLE_PROVIDER", "USE_MOCK_LLM", "PROMPT_VARIANT", "PROMPT_FILE", "METRICS_ADDR", "ENVIRONMENT"} {
		t.Setenv(k, "")
	}
	for k, v := range kv {
		t.Setenv(k, v)
	}
}

func TestRunWithMockOracle(t *testing.T) {
	setEnv(t, map[string]string{"USE_MOCK_LLM": "true"})
	dir := t.TempDir()
	in := writeCorpus(t, dir)
	out := filepath.Join(dir, "nested", "out.csv")

	var logs bytes.Buffer
	code := run(context.Background(), []string{"-in", in, "-out", out, "-env", filepath.Join(dir, "none.env")}, io.Discard, &logs)
	require.Equal(t, exitOK, code, logs.String())

	rows := readCorpus(t, out)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"conversation", "id"}, rows[0])
	assert.Equal(t, "Doctor: Hi xxx\nPatient: I have a headache\nDoctor: Since when?\nPatient: Two days", rows[1][0])
	assert.Equal(t, []string{"Patient: hello", "2"}, rows[2])
	assert.Equal(t, "Doctor: Good morning, Mr. xxx.\nPatient: My knee hurts.", rows[3][0])
	assert.Contains(t, logs.String(), "saved to "+out)
}

func TestRunWithLimit(t *testing.T) {
	setEnv(t, nil)
	dir := t.TempDir()
	in := writeCorpus(t, dir)
	out := filepath.Join(dir, "out.csv")

	var logs bytes.Buffer
	require.Equal(t, exitOK, run(context.Background(), []string{"-dry-run", "-in", in, "-out", out, "1"}, io.Discard, &logs), logs.String())
	rows := readCorpus(t, out)
	require.Len(t, rows, 2)
	assert.Equal(t, "1", rows[1][1])

	require.Equal(t, exitOK, run(context.Background(), []string{"-dry-run", "-in", in, "-out", out, "0"}, io.Discard, &logs))
	assert.Len(t, readCorpus(t, out), 1)
}

func TestRunUsageErrors(t *testing.T) {
	setEnv(t, nil)
	for _, args := range [][]string{
		{"ten"},
		{"-5"},
		{"1", "2"},
		{"-no-such-flag"},
	} {
		var out bytes.Buffer
		assert.Equal(t, exitUsage, run(context.Background(), args, io.Discard, &out), "args %q", args)
		assert.Contains(t, out.String(), "usage: redact")
	}
	var out bytes.Buffer
	assert.Equal(t, exitOK, run(context.Background(), []string{"-h"}, io.Discard, &out))
}

func TestRunSetupErrors(t *testing.T) {
	dir := t.TempDir()
	in := writeCorpus(t, dir)
	out := filepath.Join(dir, "out.csv")
	noEnv := filepath.Join(dir, "none.env")

	t.Run("missing credential", func(t *testing.T) {
		setEnv(t, nil)
		var logs bytes.Buffer
		assert.Equal(t, exitFail, run(context.Background(), []string{"-env", noEnv, "-in", in, "-out", out}, io.Discard, &logs))
		assert.Contains(t, logs.String(), "OPENAI_API_KEY not found")
		_, err := os.Stat(out)
		assert.True(t, os.IsNotExist(err), "no output before setup succeeds")
	})

	t.Run("missing input", func(t *testing.T) {
		setEnv(t, map[string]string{"OPENAI_API_KEY": "sk-test"})
		var logs bytes.Buffer
		assert.Equal(t, exitFail, run(context.Background(), []string{"-env", noEnv, "-in", filepath.Join(dir, "absent.csv"), "-out", out}, io.Discard, &logs))
		assert.Contains(t, logs.String(), "input not found")
	})

	t.Run("unknown prompt", func(t *testing.T) {
		setEnv(t, nil)
		var logs bytes.Buffer
		assert.Equal(t, exitFail, run(context.Background(), []string{"-dry-run", "-prompt", "pirate", "-in", in, "-out", out}, io.Discard, &logs))
	})
}

func TestRunOracleFailuresDoNotChangeExitCode(t *testing.T) {
	// Nothing listens on this port, so every oracle call fails.
	setEnv(t, map[string]string{
		"OPENAI_API_KEY":  "sk-test",
		"LLM_GATEWAY_URL": "http://127.0.0.1:1/v1/chat/completions",
		"ORACLE_TIMEOUT":  "1s",
	})
	dir := t.TempDir()
	in := writeCorpus(t, dir)
	out := filepath.Join(dir, "out.csv")

	var logs bytes.Buffer
	require.Equal(t, exitOK, run(context.Background(), []string{"-env", filepath.Join(dir, "none.env"), "-in", in, "-out", out}, io.Discard, &logs))

	rows := readCorpus(t, out)
	require.Len(t, rows, 4)
	assert.Equal(t, "Doctor: Hi John Smith\nPatient: I have a headache\nDoctor: Since when?\nPatient: Two days", rows[1][0])
	assert.Equal(t, "Doctor: Good morning, Mr. Davis.\nPatient: My knee hurts.", rows[3][0])
	assert.Contains(t, logs.String(), "rewrite failed")
}

func TestRunSummary(t *testing.T) {
	setEnv(t, nil)
	dir := t.TempDir()
	in := writeCorpus(t, dir)

	t.Setenv("LOG_LEVEL", "debug")

	var out, logs bytes.Buffer
	require.Equal(t, exitOK, run(context.Background(), []string{"-summary", "-in", in}, &out, &logs), logs.String())

	var s dataset.Summary
	require.NoError(t, json.Unmarshal(out.Bytes(), &s), "stdout holds only the report: %q", out.String())
	assert.Equal(t, 3, s.TotalRecords)
	assert.Equal(t, 2, s.HeadOnlyDialogues)
	assert.Equal(t, 1, s.BlankLinesDropped)
	assert.Contains(t, logs.String(), "dataset summarization complete")
}

func TestRunMissingColumnKeepsPreviousOutput(t *testing.T) {
	setEnv(t, nil)
	dir := t.TempDir()
	in := writeCorpus(t, dir)
	out := filepath.Join(dir, "out.csv")
	require.NoError(t, os.WriteFile(out, []byte("conversation\nearlier run\n"), 0o644))

	var logs bytes.Buffer
	code := run(context.Background(), []string{"-dry-run", "-column", "dialogue", "-in", in, "-out", out}, io.Discard, &logs)
	assert.Equal(t, exitFail, code)
	assert.Contains(t, logs.String(), "conversation column not found")

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "conversation\nearlier run\n", string(b))
}
