package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler(t *testing.T) {
	r := newTestReporter(newMemCache(), 0)
	r.SetState(StateReady)
	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	var st Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, StateReady, st.State)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestFormatStatus(t *testing.T) {
	st := newTestReporter(newMemCache(), 0).Snapshot()
	st.State = StateReady
	st.Discord = "**OK**"

	out := FormatStatus(st, "`Not Configured`")
	assert.Contains(t, out, "is ready")
	assert.Contains(t, out, "💻 CPU: `12.50%`")
	assert.Contains(t, out, "🏠 Cache: `Not Configured`")
}
