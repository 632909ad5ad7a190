package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"caselens/internal/analysis"
	"caselens/internal/config"
	"caselens/internal/engine"
	"caselens/internal/pipeline"
)

func TestMain(m *testing.M) {
	// opencensus starts a worker at init via the genai dependency.
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

type stubEngine struct {
	out   *analysis.EngineOutput
	err   error
	calls int
}

func (s *stubEngine) Analyze(context.Context, string) (*analysis.EngineOutput, error) {
	s.calls++
	return s.out, s.err
}

func (s *stubEngine) Model() string { return "stub-model" }

func newTestServer(t *testing.T, eng engine.Client) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	srv := httptest.NewServer(New(&cfg, pipeline.New(eng, nil), nil).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func postAnalyze(t *testing.T, srv *httptest.Server, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := srv.Client().Post(srv.URL+"/v1/analyze", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func TestAnalyzeEndpointScenarioB(t *testing.T) {
	eng := &stubEngine{out: &analysis.EngineOutput{
		RiskScore: 75,
		RiskLevel: analysis.RiskHigh,
		Signals:   []analysis.Signal{{Name: "over_cap_refund", EvidenceQuote: "gave them a quarter back", Weight: 0.9}},
	}}
	srv := newTestServer(t, eng)

	resp, body := postAnalyze(t, srv, `{
		"rawNotes": "Agent refunded a quarter of the booking to stop a chargeback threat.",
		"issueType": "chargeback threat",
		"bookingTotal": 100,
		"refundedAmount": 25
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res analysis.Result
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, 25.0, res.Policy["refund_percent"])
	assert.Equal(t, true, res.Policy["soft_cap_exceeded"])
	assert.Equal(t, true, res.Policy["hard_cap_exceeded"])
	assert.Equal(t, "stub-model", res.Meta["model"])
	require.Len(t, res.Signals, 1)
	assert.Equal(t, 1, eng.calls)
}

func TestAnalyzeEndpointValidationError(t *testing.T) {
	eng := &stubEngine{out: &analysis.EngineOutput{}}
	srv := newTestServer(t, eng)

	resp, body := postAnalyze(t, srv, `{"rawNotes": "short", "issueType": "x"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var envelope map[string]string
	require.NoError(t, json.Unmarshal(body, &envelope))
	assert.Contains(t, envelope["error"], "rawNotes")
	assert.Equal(t, 0, eng.calls, "invalid requests must never invoke the engine")
}

func TestAnalyzeEndpointBadJSON(t *testing.T) {
	srv := newTestServer(t, &stubEngine{})
	resp, body := postAnalyze(t, srv, `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "error")
}

func TestAnalyzeEndpointEngineFailure(t *testing.T) {
	eng := &stubEngine{err: engine.ErrMalformedOutput}
	srv := newTestServer(t, eng)

	resp, body := postAnalyze(t, srv, `{
		"rawNotes": "Notes that are definitely long enough to validate.",
		"issueType": "dispute"
	}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var envelope map[string]string
	require.NoError(t, json.Unmarshal(body, &envelope))
	assert.Contains(t, envelope["error"], "malformed")
}

func TestAnalyzeEndpointNoPartialResultOnFailure(t *testing.T) {
	eng := &stubEngine{err: engine.ErrEmptyOutput}
	srv := newTestServer(t, eng)

	_, body := postAnalyze(t, srv, `{
		"rawNotes": "Notes that are definitely long enough to validate.",
		"issueType": "dispute",
		"bookingTotal": 560,
		"refundedAmount": 85.06
	}`)
	// Only the error envelope, never a partial result with policy facts.
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &raw))
	assert.Len(t, raw, 1)
	_, hasErr := raw["error"]
	assert.True(t, hasErr)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &stubEngine{})
	resp, err := srv.Client().Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, &stubEngine{})
	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/v1/analyze", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://desk.example.com")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
