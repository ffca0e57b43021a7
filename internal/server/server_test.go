package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supportbot/internal/config"
	"supportbot/internal/domain"
	"supportbot/internal/logger"
	"supportbot/internal/metrics"
	"supportbot/internal/service"
)

type fakeService struct {
	reply      domain.Reply
	err        error
	gotSession string
	gotMessage string
	gotHistory []domain.Turn
	cleared    []string
	view       service.MetricsView
}

func (f *fakeService) Chat(_ context.Context, sessionID, message string, history []domain.Turn) (domain.Reply, error) {
	f.gotSession, f.gotMessage, f.gotHistory = sessionID, message, history
	return f.reply, f.err
}

func (f *fakeService) Clear(_ context.Context, sessionID string) error {
	f.cleared = append(f.cleared, sessionID)
	return f.err
}

func (f *fakeService) Overview() string { return "all agents" }

func (f *fakeService) Metrics(_ context.Context, _ string) (service.MetricsView, error) {
	return f.view, f.err
}

func newTestServer(t *testing.T, svc ChatService, maxHistory int) (*httptest.Server, *prometheus.Registry) {
	t.Helper()
	cfg := config.Default()
	cfg.Agent.MaxHistory = maxHistory
	reg := prometheus.NewRegistry()
	srv := httptest.NewServer(New(*cfg, svc, reg, logger.NewTestLogger(t)).Handler())
	t.Cleanup(srv.Close)
	return srv, reg
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	resp, err := http.Post(url, "application/json", &buf)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestChat_MintsSessionAndAppendsHistory(t *testing.T) {
	svc := &fakeService{reply: domain.Reply{Text: "Hi there!", Source: domain.SourcePattern, Intent: "greetings"}}
	srv, _ := newTestServer(t, svc, 10)

	resp := postJSON(t, srv.URL+"/api/chat", map[string]interface{}{"message": "hello"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got chatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	_, err := uuid.Parse(got.SessionID)
	assert.NoError(t, err)
	assert.Equal(t, got.SessionID, svc.gotSession)
	assert.Equal(t, "hello", svc.gotMessage)
	assert.Equal(t, "Hi there!", got.Text)
	assert.Equal(t, domain.SourcePattern, got.Source)
	assert.Equal(t, []domain.Turn{
		{Role: domain.RoleUser, Content: "hello"},
		{Role: domain.RoleAssistant, Content: "Hi there!"},
	}, got.History)
}

func TestChat_TrimsHistory(t *testing.T) {
	svc := &fakeService{reply: domain.Reply{Text: "ok"}}
	srv, _ := newTestServer(t, svc, 1)

	var history []domain.Turn
	for i := 0; i < 3; i++ {
		history = append(history,
			domain.Turn{Role: domain.RoleUser, Content: fmt.Sprintf("q%d", i)},
			domain.Turn{Role: domain.RoleAssistant, Content: fmt.Sprintf("a%d", i)},
		)
	}
	resp := postJSON(t, srv.URL+"/api/chat", chatRequest{SessionID: "s1", Message: "next", History: history})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, history[4:], svc.gotHistory)
	var got chatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "s1", got.SessionID)
	require.Len(t, got.History, 2)
	assert.Equal(t, "next", got.History[0].Content)
	assert.Equal(t, "ok", got.History[1].Content)
}

func TestChat_BadRequests(t *testing.T) {
	srv, _ := newTestServer(t, &fakeService{}, 10)

	resp, err := http.Post(srv.URL+"/api/chat", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var e errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	assert.Equal(t, "invalid JSON body", e.Error)

	resp2, err := http.Post(srv.URL+"/", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp2.StatusCode)
}

func TestChat_ServiceError(t *testing.T) {
	srv, _ := newTestServer(t, &fakeService{err: errors.New("redis down")}, 10)

	resp := postJSON(t, srv.URL+"/api/chat", chatRequest{SessionID: "s1", Message: "hello"})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var e errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	assert.Equal(t, "chat failed", e.Error)
}

func TestClear(t *testing.T) {
	svc := &fakeService{}
	srv, _ := newTestServer(t, svc, 10)

	resp := postJSON(t, srv.URL+"/api/clear", sessionRequest{SessionID: "s1"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"s1"}, svc.cleared)

	resp = postJSON(t, srv.URL+"/api/clear", sessionRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestOverviewAndMetrics(t *testing.T) {
	svc := &fakeService{view: service.MetricsView{
		Counters:        metrics.Counters{TotalQueries: 3, LLMFallbacks: 1},
		AgentsDiscussed: 2,
	}}
	srv, _ := newTestServer(t, svc, 10)

	resp, err := http.Get(srv.URL + "/api/overview")
	require.NoError(t, err)
	defer resp.Body.Close()
	var ov map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ov))
	assert.Equal(t, "all agents", ov["overview"])

	resp2, err := http.Get(srv.URL + "/api/metrics?session_id=s1")
	require.NoError(t, err)
	defer resp2.Body.Close()
	var m map[string]interface{}
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&m))
	assert.EqualValues(t, 3, m["total_queries"])
	assert.EqualValues(t, 1, m["llm_fallbacks"])
	assert.EqualValues(t, 2, m["agents_discussed"])
	assert.Contains(t, m["markdown"], "- Total queries: 3")
}

func TestHealthPrometheusAndIndex(t *testing.T) {
	srv, reg := newTestServer(t, &fakeService{}, 10)
	metrics.NewRecorder(reg).Query()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp2.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp2.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "supportbot_queries_total 1")

	resp3, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp3.Body.Close()
	assert.Equal(t, http.StatusOK, resp3.StatusCode)
	buf.Reset()
	_, err = buf.ReadFrom(resp3.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Thoughtful AI Support")
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	s := New(*cfg, &fakeService{}, prometheus.NewRegistry(), logger.NewTestLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()
	assert.NoError(t, <-done)
}
