package server_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlessandroCarella/treescope/explanation"
	"github.com/AlessandroCarella/treescope/internal/server"
)

const payloadJSON = `{
  "decisionTreeVisualizationData": [
    {"node_id": 0, "is_leaf": false, "feature_name": "age", "threshold": 30.5, "left_child": 1, "right_child": 2},
    {"node_id": 1, "is_leaf": true, "class_label": "<=50K"},
    {"node_id": 2, "is_leaf": false, "feature_name": "sex_male", "threshold": 0.5, "left_child": 3, "right_child": 4},
    {"node_id": 3, "is_leaf": true, "class_label": "<=50K"},
    {"node_id": 4, "is_leaf": true, "class_label": ">50K"}
  ],
  "scatterPlotVisualizationData": {
    "transformedData": [[0.1, 0.2], [0.5, -0.3]],
    "originalData": [
      {"age": 25, "sex_male": 0},
      {"age": 45, "sex_male": 1}
    ],
    "targets": ["<=50K", ">50K"]
  },
  "encodedInstance": {"age": 45, "sex_male": 1},
  "featureMappingInfo": {
    "originalFeatureNames": ["age", "sex"],
    "encodedFeatureNames": ["age", "sex_female", "sex_male"],
    "datasetDescriptor": {
      "numeric": {"age": {"index": 0}},
      "categorical": {"sex": {"index": 1, "distinct_values": ["male", "female"]}}
    }
  }
}`

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return server.New(explanation.NewMemorySessionStore()).SetupRoutes()
}

func postJSON(t *testing.T, router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func getJSON(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func explain(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := postJSON(t, router, "/api/explain", payloadJSON)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionID)
	return resp.SessionID
}

func TestHealth(t *testing.T) {
	w := getJSON(t, newRouter(t), "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestExplainAndState(t *testing.T) {
	router := newRouter(t)
	id := explain(t, router)

	w := getJSON(t, router, "/api/state")
	require.Equal(t, http.StatusOK, w.Code)
	var state struct {
		SessionID     string           `json:"session_id"`
		Selected      *int             `json:"selected"`
		InstancePaths map[string][]int `json:"instance_paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, id, state.SessionID)
	assert.Nil(t, state.Selected)
	for kind, path := range state.InstancePaths {
		assert.Equal(t, []int{0, 2, 4}, path, "kind %s", kind)
	}
}

func TestExplainRejectsInvalidPayload(t *testing.T) {
	w := postJSON(t, newRouter(t), "/api/explain", `{"decisionTreeVisualizationData": []}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSelect(t *testing.T) {
	router := newRouter(t)
	explain(t, router)

	w := postJSON(t, router, "/api/select", `{"node_id": 4, "source": "classic"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var state struct {
		Selected *int `json:"selected"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	require.NotNil(t, state.Selected)
	assert.Equal(t, 4, *state.Selected)

	// Re-clicking the selected node deselects it.
	w = postJSON(t, router, "/api/select", `{"node_id": 4, "source": "classic"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Nil(t, state.Selected)
}

func TestSelectUnknownNode(t *testing.T) {
	router := newRouter(t)
	explain(t, router)
	w := postJSON(t, router, "/api/select", `{"node_id": 42, "source": "classic"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSelectWithoutSession(t *testing.T) {
	w := postJSON(t, newRouter(t), "/api/select", `{"node_id": 0, "source": "classic"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestInstance(t *testing.T) {
	router := newRouter(t)
	explain(t, router)

	w := postJSON(t, router, "/api/instance", `{"age": 22}`)
	require.Equal(t, http.StatusOK, w.Code)
	var state struct {
		InstancePaths map[string][]int `json:"instance_paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	for kind, path := range state.InstancePaths {
		assert.Equal(t, []int{0, 1}, path, "kind %s", kind)
	}
}

func TestReset(t *testing.T) {
	router := newRouter(t)
	explain(t, router)
	postJSON(t, router, "/api/select", `{"node_id": 2, "source": "blocks"}`)

	w := postJSON(t, router, "/api/reset", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = getJSON(t, router, "/api/state")
	var state struct {
		Selected      *int             `json:"selected"`
		InstancePaths map[string][]int `json:"instance_paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Nil(t, state.Selected)
	for kind, path := range state.InstancePaths {
		assert.Empty(t, path, "kind %s", kind)
	}
}

// Instance updates, selections and state reads all touch the per-kind
// tree states of the current session from different requests, so they
// must be able to run in parallel without corrupting each other.
func TestConcurrentInstanceSelectionAndState(t *testing.T) {
	router := newRouter(t)
	id := explain(t, router)

	const rounds = 50
	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			body := fmt.Sprintf(`{"age": %d, "sex_male": 1}`, 20+i%30)
			w := postJSON(t, router, "/api/instance", body)
			assert.Equal(t, http.StatusOK, w.Code)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			body := fmt.Sprintf(`{"node_id": %d, "source": "classic"}`, []int{2, 4}[i%2])
			w := postJSON(t, router, "/api/select", body)
			assert.Equal(t, http.StatusOK, w.Code)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			w := getJSON(t, router, "/api/state")
			assert.Equal(t, http.StatusOK, w.Code)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			w := getJSON(t, router, "/api/explanations/"+id)
			assert.Equal(t, http.StatusOK, w.Code)
		}
	}()
	wg.Wait()

	// Whichever update landed last, every layout still reports a
	// well-formed path anchored at the root.
	w := getJSON(t, router, "/api/state")
	require.Equal(t, http.StatusOK, w.Code)
	var state struct {
		InstancePaths map[string][]int `json:"instance_paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	require.Len(t, state.InstancePaths, 3)
	for kind, path := range state.InstancePaths {
		require.NotEmpty(t, path, "kind %s", kind)
		assert.Equal(t, 0, path[0], "kind %s", kind)
	}
}

func TestGetExplanation(t *testing.T) {
	router := newRouter(t)
	id := explain(t, router)

	w := getJSON(t, router, "/api/explanations/"+id)
	require.Equal(t, http.StatusOK, w.Code)
	var e explanation.Explanation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	assert.Len(t, e.TreeNodes, 5)

	w = getJSON(t, router, "/api/explanations/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// readEvent reads websocket events until one of the wanted type
// arrives, failing the test when the connection stalls.
func readEvent(t *testing.T, conn *websocket.Conn, wanted string) *server.ViewEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		ev := &server.ViewEvent{}
		require.NoError(t, conn.ReadJSON(ev))
		if ev.Type == wanted {
			return ev
		}
	}
}

func TestWebSocketViewReceivesHighlights(t *testing.T) {
	router := newRouter(t)
	explain(t, router)

	ts := httptest.NewServer(router)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "register", "kind": "classic"}))

	// Registration applies the explained instance's path right away.
	ev := readEvent(t, conn, server.EventInstancePath)
	assert.Equal(t, []int{0, 2, 4}, ev.Path)

	// A selection elsewhere reaches this view as highlight events.
	w := postJSON(t, router, "/api/select", `{"node_id": 1, "source": "blocks"}`)
	require.Equal(t, http.StatusOK, w.Code)
	ev = readEvent(t, conn, server.EventHighlightNode)
	require.NotNil(t, ev.NodeID)
	assert.Contains(t, []int{0, 1}, *ev.NodeID)
}

func TestWebSocketScatterView(t *testing.T) {
	router := newRouter(t)
	explain(t, router)

	ts := httptest.NewServer(router)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "register", "kind": "scatter"}))

	// Registration applies reset styling with dataset membership.
	ev := readEvent(t, conn, server.EventResetPts)
	assert.Equal(t, []bool{true, true}, ev.DatasetMembership)

	w := postJSON(t, router, "/api/select", `{"node_id": 4, "source": "classic"}`)
	require.Equal(t, http.StatusOK, w.Code)
	ev = readEvent(t, conn, server.EventHighlightPts)
	assert.Equal(t, []int{1}, ev.Indexes)
}
