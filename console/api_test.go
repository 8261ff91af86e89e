package console

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T) (*Session, *mux.Router) {
	t.Helper()
	session := newTestSession(t)
	router := mux.NewRouter()
	NewPlotAPI(session).RegisterRoutes(router)
	return session, router
}

func doJSON(t *testing.T, router *mux.Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, path, strings.NewReader(body))
	require.NoError(t, err)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListSignals(t *testing.T) {
	session, router := newTestAPI(t)

	w := doJSON(t, router, "GET", "/api/signals", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp SignalsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, session.ID, resp.SessionID)
	assert.Equal(t, int64(30000), resp.WindowMs)
	require.Len(t, resp.Signals, 2)
	assert.Equal(t, "temperature", resp.Signals[0].Name)
	assert.Equal(t, "numeric", resp.Signals[0].Kind)
	assert.Empty(t, resp.Signals[0].Labels)
	assert.Equal(t, "device_status", resp.Signals[1].Name)
	assert.Equal(t, "enum", resp.Signals[1].Kind)
	assert.Equal(t, map[int]string{0: "OFF", 1: "RUN"}, resp.Signals[1].Labels)
}

func TestReplaceThenGetData(t *testing.T) {
	_, router := newTestAPI(t)

	w := doJSON(t, router, "POST", "/api/data/replace",
		`{"signals": {"temperature": [[10, 2.5], [0, 1.5]]}}`)
	require.Equal(t, http.StatusOK, w.Code)

	var mut MutationResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&mut))
	assert.Equal(t, "ok", mut.Status)
	assert.Equal(t, 2, mut.Stats.Points)

	w = doJSON(t, router, "GET", "/api/data", "")
	require.Equal(t, http.StatusOK, w.Code)

	var data DataResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&data))
	assert.Equal(t, [][2]float64{{0, 1.5}, {10, 2.5}}, data.Signals["temperature"])
	assert.Empty(t, data.Signals["device_status"])
}

func TestAppendRejectsUnknownSignalWithoutSideEffects(t *testing.T) {
	session, router := newTestAPI(t)

	w := doJSON(t, router, "POST", "/api/data/replace",
		`{"signals": {"temperature": [[0, 1.0]]}}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "POST", "/api/data/append",
		`{"signals": {"temperature": [[10, 2.0]], "bogus": [[10, 3.0]]}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "bogus")

	data := session.BufferedData()
	assert.Len(t, data["temperature"], 1)
}

func TestReplaceRejectsNonIntegralTimestamp(t *testing.T) {
	session, router := newTestAPI(t)

	w := doJSON(t, router, "POST", "/api/data/replace",
		`{"signals": {"temperature": [[0.5, 1.0]]}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "non-integral timestamp")
	assert.Empty(t, session.BufferedData()["temperature"])
}

func TestMutationRejectsMalformedBody(t *testing.T) {
	_, router := newTestAPI(t)

	w := doJSON(t, router, "POST", "/api/data/append", `{"signals": `)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClearData(t *testing.T) {
	_, router := newTestAPI(t)

	w := doJSON(t, router, "POST", "/api/data/replace",
		`{"signals": {"temperature": [[0, 1.0]], "device_status": [[0, 1]]}}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "POST", "/api/data/clear", "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, "GET", "/api/data", "")
	var data DataResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&data))
	assert.Empty(t, data.Signals["temperature"])
	assert.Empty(t, data.Signals["device_status"])
}

func TestGetConfigBuildsChartDocument(t *testing.T) {
	_, router := newTestAPI(t)

	w := doJSON(t, router, "POST", "/api/data/replace",
		`{"signals": {"temperature": [[0, 1.0], [10, 2.0]], "device_status": [[0, 0], [10, 1]]}}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "GET", "/api/config", "")
	require.Equal(t, http.StatusOK, w.Code)

	var cfg map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&cfg))

	series, ok := cfg["series"].([]any)
	require.True(t, ok)
	require.Len(t, series, 2)

	yAxes, ok := cfg["yAxis"].([]any)
	require.True(t, ok)
	require.Len(t, yAxes, 2)
	enumAxis := yAxes[1].(map[string]any)
	assert.Equal(t, "category", enumAxis["type"])
	assert.Equal(t, []any{"OFF", "RUN"}, enumAxis["data"])

	// Enum codes travel remapped to category indices on the wire.
	enumSeries := series[1].(map[string]any)
	assert.Equal(t, []any{
		[]any{float64(0), float64(0)},
		[]any{float64(10), float64(1)},
	}, enumSeries["data"])
}

func TestStatsEndpoint(t *testing.T) {
	_, router := newTestAPI(t)

	w := doJSON(t, router, "POST", "/api/data/append",
		`{"signals": {"temperature": [[0, 1.0], [100, 2.0]]}}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "GET", "/api/stats", "")
	require.Equal(t, http.StatusOK, w.Code)

	var stats SessionStats
	require.NoError(t, json.NewDecoder(w.Body).Decode(&stats))
	assert.Equal(t, 2, stats.Signals)
	assert.Equal(t, 2, stats.Points)
	assert.Equal(t, int64(100), stats.SpanMs)
	assert.Equal(t, int64(30000), stats.WindowMs)
}
