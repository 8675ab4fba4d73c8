package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netscale-tools/bgpmap/pkg/graph"
	"github.com/netscale-tools/bgpmap/pkg/layout"
	"github.com/netscale-tools/bgpmap/pkg/observability"
	"github.com/netscale-tools/bgpmap/pkg/pipeline"
	"github.com/netscale-tools/bgpmap/pkg/render"
	"github.com/netscale-tools/bgpmap/pkg/state"
	"github.com/netscale-tools/bgpmap/pkg/topology"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	t.Cleanup(observability.Reset)

	cfg := layout.DefaultConfig()
	cfg.FullIterations = 20
	cfg.RealtimeIterations = 5

	runner, err := pipeline.NewRunner(topology.ExampleDocument(), pipeline.Options{
		Layout: &cfg,
		Logger: log.New(io.Discard),
	})
	require.NoError(t, err)

	store, err := state.NewFileStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	srv := New(runner, store, "test", "file", log.New(io.Discard))
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestHandleLayout(t *testing.T) {
	ts := newTestServer(t)

	var l render.Layout
	resp := getJSON(t, ts.URL+"/api/layout", &l)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, l.Nodes, 17)
	assert.Len(t, l.Edges, 21)
}

func TestHandleTopology(t *testing.T) {
	ts := newTestServer(t)

	var doc topology.Document
	resp := getJSON(t, ts.URL+"/api/topology", &doc)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, doc.Nodes, 9)
	assert.Len(t, doc.Edges, 4)
}

func TestHandleEditAddNode(t *testing.T) {
	ts := newTestServer(t)

	body, err := json.Marshal(map[string]any{
		"kind": "add-node",
		"node": map[string]any{"data": map[string]any{
			"id":         "R6",
			"parent":     "AS100",
			"interfaces": map[string]string{"eth0": "10.16.16.6/24"},
		}},
	})
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/api/edits", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var l render.Layout
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&l))
	assert.Len(t, l.Nodes, 19)

	var events []pipeline.Event
	getJSON(t, ts.URL+"/api/events", &events)
	assert.Len(t, events, 1)
}

func TestHandleEditErrors(t *testing.T) {
	ts := newTestServer(t)

	post := func(body string) int {
		resp, err := http.Post(ts.URL+"/api/edits", "application/json", bytes.NewReader([]byte(body)))
		require.NoError(t, err)
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusBadRequest, post(`not json`))
	assert.Equal(t, http.StatusBadRequest, post(`{"kind":"teleport"}`))
	assert.Equal(t, http.StatusBadRequest, post(`{"kind":"add-node"}`))
	assert.Equal(t, http.StatusBadRequest, post(`{"kind":"remove-edge"}`))
	assert.Equal(t, http.StatusNotFound, post(`{"kind":"remove-edge","edgeId":"R9~eth0~R8~eth0"}`))

	// A structurally invalid document comes back as unprocessable.
	dup := `{"kind":"add-node","node":{"data":{"id":"R1","parent":"AS100"}}}`
	assert.Equal(t, http.StatusUnprocessableEntity, post(dup))
}

func TestHandleReplay(t *testing.T) {
	ts := newTestServer(t)

	var l render.Layout
	resp := getJSON(t, ts.URL+"/api/replay/0", &l)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, l.Nodes, 17)

	resp = getJSON(t, ts.URL+"/api/replay/5", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	resp = getJSON(t, ts.URL+"/api/replay/x", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleState(t *testing.T) {
	ts := newTestServer(t)

	// Empty state comes back initialized, not 404.
	var v state.ViewState
	resp := getJSON(t, ts.URL+"/api/state", &v)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotNil(t, v.Positions)

	v.Positions["R1"] = graph.Position{X: 1, Y: 2}

	put := func(body []byte) int {
		req, err := http.NewRequest(http.MethodPut, ts.URL+"/api/state", bytes.NewReader(body))
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode
	}

	body, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, put(body))

	var got state.ViewState
	getJSON(t, ts.URL+"/api/state", &got)
	assert.Equal(t, 1.0, got.Positions["R1"].X)

	// Invalid colors are rejected before storage.
	bad := `{"positions":{},"lockedNodes":{},"colors":{"nodes":{"R1":"red"},"edges":{}}}`
	assert.Equal(t, http.StatusUnprocessableEntity, put([]byte(bad)))
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	getJSON(t, ts.URL+"/api/layout", nil)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "bgpmap_layout_nodes 17")
}
