package background

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mxnstrexgl/cyberdark/internal/settings"
	"github.com/mxnstrexgl/cyberdark/internal/store"
)

// setupAPI wires a control API over a real file store.
func setupAPI(t *testing.T) (*httptest.Server, *store.FileStore) {
	t.Helper()
	st := openTestStore(t)
	require.NoError(t, st.SetEnabled(context.Background(), true))

	cache, err := NewCache(context.Background(), st)
	require.NoError(t, err)
	t.Cleanup(cache.Close)

	ts := httptest.NewServer(NewAPI(st, cache, "test").Router())
	t.Cleanup(ts.Close)
	return ts, st
}

func getBody(t *testing.T, ts *httptest.Server, path string, wantStatus int) []byte {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, wantStatus, resp.StatusCode)
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return buf.Bytes()
}

func send(t *testing.T, ts *httptest.Server, method, path string, body []byte) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestHealthAndStatus(t *testing.T) {
	ts, _ := setupAPI(t)

	body := getBody(t, ts, "/healthz", http.StatusOK)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	var status StatusResponse
	require.NoError(t, json.Unmarshal(getBody(t, ts, "/v1/status", http.StatusOK), &status))
	assert.Equal(t, "test", status.Version)
	assert.True(t, status.Enabled)
	assert.True(t, status.InSchedule)
	assert.Zero(t, status.BlacklistSize)
}

func TestStateEndpoint(t *testing.T) {
	ts, st := setupAPI(t)

	record, err := st.Settings(context.Background())
	require.NoError(t, err)
	record.Blacklist = []string{"blocked.example"}
	require.NoError(t, st.SaveSettings(context.Background(), record))

	var state StateResponse
	require.NoError(t, json.Unmarshal(
		getBody(t, ts, "/v1/state?hostname=app.blocked.example", http.StatusOK), &state))
	assert.True(t, state.Enabled)
	assert.True(t, state.Blacklisted)

	require.NoError(t, json.Unmarshal(
		getBody(t, ts, "/v1/state?hostname=news.site", http.StatusOK), &state))
	assert.True(t, state.Enabled)
	assert.False(t, state.Blacklisted)

	resp := send(t, ts, http.MethodGet, "/v1/state?hostname=not%20a%20domain", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSettingsRoundTrip(t *testing.T) {
	ts, _ := setupAPI(t)

	var record settings.Settings
	require.NoError(t, json.Unmarshal(getBody(t, ts, "/v1/settings", http.StatusOK), &record))
	assert.Equal(t, settings.Defaults().BackgroundColor, record.BackgroundColor)

	// Hostile values come back normalized, not echoed.
	payload := []byte(`{"accentColor":"#ABCDEF","fontSize":99,"colorBlindMode":true}`)
	resp := send(t, ts, http.MethodPut, "/v1/settings", payload)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var saved settings.Settings
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&saved))
	assert.Equal(t, "#abcdef", saved.AccentColor)
	assert.Equal(t, settings.FontSizeMax, saved.FontSize)
	assert.Equal(t, settings.ColorBlindProtanopia, saved.ColorBlindMode)

	resp = send(t, ts, http.MethodPut, "/v1/settings", []byte("{not json"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEnabledEndpoint(t *testing.T) {
	ts, _ := setupAPI(t)

	resp := send(t, ts, http.MethodPut, "/v1/enabled", []byte(`{"enabled":false}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload EnabledPayload
	require.NoError(t, json.Unmarshal(getBody(t, ts, "/v1/enabled", http.StatusOK), &payload))
	assert.False(t, payload.Enabled)
}

func TestExportImportCycle(t *testing.T) {
	ts, st := setupAPI(t)

	record, err := st.Settings(context.Background())
	require.NoError(t, err)
	record.AccentColor = "#ff8800"
	require.NoError(t, st.SaveSettings(context.Background(), record))

	exported := getBody(t, ts, "/v1/export", http.StatusOK)
	assert.Contains(t, string(exported), `"checksum"`)

	// Reset, then import the envelope back.
	resp := send(t, ts, http.MethodPut, "/v1/settings", []byte(`{}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = send(t, ts, http.MethodPost, "/v1/import", exported)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var final settings.Settings
	require.NoError(t, json.Unmarshal(getBody(t, ts, "/v1/settings", http.StatusOK), &final))
	assert.Equal(t, "#ff8800", final.AccentColor)

	// A tampered envelope is rejected with the integrity error.
	tampered := bytes.Replace(exported, []byte("#ff8800"), []byte("#ff8801"), 1)
	resp = send(t, ts, http.MethodPost, "/v1/import", tampered)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestQuotaSurfacesBeforeWrite(t *testing.T) {
	ts, st := setupAPI(t)

	blacklist := make([]string, 0, 900)
	for i := 0; i < 900; i++ {
		blacklist = append(blacklist, fmt.Sprintf("padding%04d.example.com", i))
	}
	payload, err := json.Marshal(map[string]any{"blacklist": blacklist})
	require.NoError(t, err)

	resp := send(t, ts, http.MethodPut, "/v1/settings", payload)
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	var apiErr struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&apiErr))
	assert.True(t, strings.Contains(apiErr.Error, "quota"))

	record, err := st.Settings(context.Background())
	require.NoError(t, err)
	assert.Empty(t, record.Blacklist)
}
