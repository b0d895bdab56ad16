// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestVoteRecorded(t *testing.T) {
	newBefore := testutil.ToFloat64(votesTotal.WithLabelValues("new"))
	changedBefore := testutil.ToFloat64(votesTotal.WithLabelValues("changed"))

	VoteRecorded(false)
	VoteRecorded(true)
	VoteRecorded(true)

	if got := testutil.ToFloat64(votesTotal.WithLabelValues("new")) - newBefore; got != 1 {
		t.Errorf("new votes delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(votesTotal.WithLabelValues("changed")) - changedBefore; got != 2 {
		t.Errorf("changed votes delta = %v, want 2", got)
	}
}

func TestHandlerExposesCounters(t *testing.T) {
	ObserveRequest("GET /polls/", "GET", http.StatusOK, 5*time.Millisecond)
	VoteRejected(ReasonNoChoice)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	body := w.Body.String()
	for _, name := range []string{
		"polls_http_requests_total",
		"polls_http_request_duration_seconds",
		"polls_rejected_votes_total",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("Expected metrics output to contain %s", name)
		}
	}
}
