package cli_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/evyataryagoni/wataxrate/internal/cli"
	"github.com/evyataryagoni/wataxrate/internal/lookup"
	"github.com/evyataryagoni/wataxrate/internal/models"
	"github.com/evyataryagoni/wataxrate/internal/service"
	"github.com/evyataryagoni/wataxrate/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const (
	seattleXML  = `<response loccode="1726" localrate="0.036" rate="0.101" code="0"><rate name="SEATTLE" code="1726" staterate="0.065" localrate="0.036" /></response>`
	notFoundXML = `<response loccode="-1" localrate="-1" rate="-1" code="6" />`
)

// dorServer answers every request with status and body and counts hits
func dorServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/xml")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

// noHistory keeps commands off any audit log configured in the environment
func noHistory(t *testing.T) {
	t.Helper()
	t.Setenv("AUDIT_LOG_TYPE", "none")
}

// unsetEnv clears keys for the test; the cleanup also drops anything .env sets
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "taxrate dev")
}

func TestGetCommand_Text(t *testing.T) {
	noHistory(t)
	srv, hits := dorServer(t, http.StatusOK, seattleXML)

	out, err := run(t, "get", "400 Broad St", "Seattle", "98109", "--base-url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "400 Broad St, Seattle 98109")
	assert.Contains(t, out, "10.10%")
	assert.Contains(t, out, "SEATTLE (1726)")
	assert.EqualValues(t, 1, hits.Load())
}

func TestGetCommand_JSON(t *testing.T) {
	noHistory(t)
	srv, _ := dorServer(t, http.StatusOK, seattleXML)

	out, err := run(t, "get", "400 Broad St", "Seattle", "98109", "--base-url", srv.URL, "-o", "json")
	require.NoError(t, err)

	var info models.TaxInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, 0.101, info.Rate)
	assert.Equal(t, "1726", info.LocationCode)
	require.NotNil(t, info.Jurisdiction)
	assert.Equal(t, 0.065, info.Jurisdiction.StateRate)
}

func TestGetCommand_YAML(t *testing.T) {
	noHistory(t)
	srv, _ := dorServer(t, http.StatusOK, seattleXML)

	out, err := run(t, "get", "400 Broad St", "Seattle", "98109", "--base-url", srv.URL, "-o", "yaml")
	require.NoError(t, err)

	var info models.TaxInfo
	require.NoError(t, yaml.Unmarshal([]byte(out), &info))
	assert.Equal(t, 0.101, info.Rate)
	assert.Equal(t, models.CodeAddressFound, info.ResultCode)
}

func TestGetCommand_AddressNotFound(t *testing.T) {
	noHistory(t)
	srv, hits := dorServer(t, http.StatusOK, notFoundXML)

	_, err := run(t, "get", "1 Nowhere Rd", "Seattle", "98109", "--base-url", srv.URL)
	require.Error(t, err)
	assert.True(t, lookup.IsRemoteRejected(err))
	assert.EqualValues(t, 1, hits.Load(), "code 6 is not retried")
}

func TestGetCommand_RetriesExhausted(t *testing.T) {
	noHistory(t)
	srv, hits := dorServer(t, http.StatusInternalServerError, "down")

	_, err := run(t, "get", "400 Broad St", "Seattle", "98109",
		"--base-url", srv.URL, "--retries", "2", "--backoff", "1ms")
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrNoMoreRetries))
	assert.EqualValues(t, 2, hits.Load())
}

func TestGetCommand_InvalidInput(t *testing.T) {
	noHistory(t)
	srv, hits := dorServer(t, http.StatusOK, seattleXML)

	tests := []struct {
		name string
		args []string
	}{
		{"too few args", []string{"get", "400 Broad St", "Seattle"}},
		{"unknown format", []string{"get", "400 Broad St", "Seattle", "98109", "--base-url", srv.URL, "-o", "xml"}},
		{"relative base url", []string{"get", "400 Broad St", "Seattle", "98109", "--base-url", "/webapi"}},
		{"blank city", []string{"get", "400 Broad St", "  ", "98109", "--base-url", srv.URL}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.Error(t, err)
		})
	}
	assert.EqualValues(t, 0, hits.Load())
}

func TestGetThenHistory_CSV(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "lookups.csv")
	t.Setenv("AUDIT_LOG_TYPE", "csv")
	t.Setenv("AUDIT_LOG_PATH", csvPath)
	srv, _ := dorServer(t, http.StatusOK, seattleXML)

	_, err := run(t, "get", "400 Broad St", "Seattle", "98109", "--base-url", srv.URL)
	require.NoError(t, err)
	_, err = run(t, "get", "400 Broad St", "Seattle", "98109", "--base-url", srv.URL, "--no-record")
	require.NoError(t, err)

	out, err := run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "Recent lookups (1)")
	assert.Contains(t, out, "400 Broad St, Seattle 98109")

	out, err = run(t, "history", "-o", "json")
	require.NoError(t, err)
	var resp models.RecentLookupsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, models.OutcomeSuccess, resp.Lookups[0].Outcome)
	assert.Equal(t, 0.101, resp.Lookups[0].Rate)
}

func TestHistoryCommand_Empty(t *testing.T) {
	noHistory(t)

	out, err := run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No lookups recorded.")
}

func TestHistoryCommand_UnknownType(t *testing.T) {
	noHistory(t)

	_, err := run(t, "history", "--type", "postgres")
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrUnknownAuditLog))
}

func TestGetCommand_DefaultsFromDotEnv(t *testing.T) {
	unsetEnv(t, "DOR_BASE_URL", "AUDIT_LOG_TYPE")
	srv, hits := dorServer(t, http.StatusOK, seattleXML)

	dir := t.TempDir()
	env := "DOR_BASE_URL=" + srv.URL + "\nAUDIT_LOG_TYPE=none\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o644))
	chdir(t, dir)

	out, err := run(t, "get", "400 Broad St", "Seattle", "98109")
	require.NoError(t, err)
	assert.Contains(t, out, "10.10%")
	assert.EqualValues(t, 1, hits.Load())
}

func TestGetCommand_DORTimeout(t *testing.T) {
	noHistory(t)
	t.Setenv("DOR_TIMEOUT_MS", "50")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	start := time.Now()
	_, err := run(t, "get", "400 Broad St", "Seattle", "98109",
		"--base-url", srv.URL, "--retries", "1", "--timeout", "5s")
	require.Error(t, err)
	assert.True(t, lookup.IsNetwork(err), "expected network error, got %v", err)
	assert.Less(t, time.Since(start), time.Second)
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatalf("restore wd: %v", err)
		}
	})
}
