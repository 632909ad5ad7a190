package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caselens/internal/analysis"
)

func TestAnalyzeSuccess(t *testing.T) {
	var gotPath, gotContentType string
	var gotReq analysis.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(analysis.Result{
			RiskScore: 40,
			RiskLevel: analysis.RiskMedium,
			Policy:    map[string]any{"soft_cap_exceeded": false, "hard_cap_exceeded": false},
		})
	}))
	defer srv.Close()

	total := 300.0
	res, err := New(srv.URL + "/").Analyze(context.Background(), &analysis.Request{
		RawNotes:     "customer upset about a slow refund turnaround",
		IssueType:    "delayed refund",
		BookingTotal: &total,
	})
	require.NoError(t, err)

	assert.Equal(t, "/v1/analyze", gotPath)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "delayed refund", gotReq.IssueType)
	require.NotNil(t, gotReq.BookingTotal)
	assert.Equal(t, 300.0, *gotReq.BookingTotal)

	assert.Equal(t, analysis.RiskMedium, res.RiskLevel)
	assert.Equal(t, false, res.Policy["hard_cap_exceeded"])
}

func TestAnalyzeErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"error": "reasoning engine returned no output"})
	}))
	defer srv.Close()

	_, err := New(srv.URL).Analyze(context.Background(), &analysis.Request{
		RawNotes:  "long enough notes for the request",
		IssueType: "dispute",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reasoning engine returned no output")
}

func TestAnalyzeNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Analyze(context.Background(), &analysis.Request{
		RawNotes:  "long enough notes for the request",
		IssueType: "dispute",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestAnalyzeServerUnreachable(t *testing.T) {
	_, err := New("http://127.0.0.1:1").Analyze(context.Background(), &analysis.Request{
		RawNotes:  "long enough notes for the request",
		IssueType: "dispute",
	})
	assert.Error(t, err)
}
