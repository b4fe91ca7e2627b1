package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalogue(t *testing.T, baseURL string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
workers:
  - id: citation_manager_agent
    display_name: Citation Manager
    base_url: `+baseURL+`
    keywords: [citation]
    required_params: [style]
`), 0o600))
	t.Setenv("WORKER_CATALOGUE", path)
	t.Setenv("ASSIST_WORKER_ID", "")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestWorkersCommand(t *testing.T) {
	writeCatalogue(t, "http://localhost:5011")

	out, err := run(t, "workers")

	require.NoError(t, err)
	assert.Contains(t, out, "citation_manager_agent")
	assert.Contains(t, out, "UNKNOWN")
}

func TestHealthCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer srv.Close()
	writeCatalogue(t, srv.URL)

	out, err := run(t, "health", "citation_manager_agent")

	require.NoError(t, err)
	assert.Contains(t, out, "HEALTHY")

	_, err = run(t, "health", "nope")
	assert.Error(t, err)
}

func TestClassifyCommand(t *testing.T) {
	writeCatalogue(t, "http://localhost:5011")

	out, err := run(t, "classify", "format", "a", "citation")

	require.NoError(t, err)
	var decision map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decision))
	assert.Equal(t, "citation_manager_agent", decision["agent_id"])
}

func TestSubmitCommandAsksForMissingParam(t *testing.T) {
	writeCatalogue(t, "http://localhost:5011")
	submitState, submitParams, submitUser = "", nil, ""

	out, err := run(t, "submit", "format", "a", "citation")

	require.NoError(t, err)
	var outcome map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &outcome))
	assert.Equal(t, "AWAITING_CLARIFICATION", outcome["stage"])
	assert.Equal(t, []interface{}{"style"}, outcome["missing"])
	assert.NotEmpty(t, outcome["conversationState"])
}

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"style=APA", " max_results = 5 ", "note=a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"style": "APA", "max_results": "5", "note": "a=b"}, params)

	_, err = parseParams([]string{"novalue"})
	assert.Error(t, err)
	_, err = parseParams([]string{"=x"})
	assert.Error(t, err)
}
