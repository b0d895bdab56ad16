// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-polls/testutil"
)

func TestHealthEndpoint(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	mux := NewRouter(db, testutil.GetTestConfig())

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootRedirects(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	mux := NewRouter(db, testutil.GetTestConfig())

	for _, path := range []string{"/", "/polls"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest("GET", path, nil))

			if w.Code/100 != 3 {
				t.Fatalf("Expected redirect, got %d", w.Code)
			}
			if loc := w.Header().Get("Location"); loc != "/polls/" {
				t.Errorf("Expected Location /polls/, got %q", loc)
			}
		})
	}
}

func TestRouteExistence(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	mux := NewRouter(db, testutil.GetTestConfig())

	// 303 and 404 are valid handler responses here, only 405 means no route
	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/metrics"},
		{"GET", "/polls/"},
		{"GET", "/polls/test-id/"},
		{"POST", "/polls/test-id/vote/"},
		{"GET", "/polls/test-id/results/"},
		{"GET", "/api/polls/test-id/results"},
		{"GET", "/accounts/login/"},
		{"POST", "/accounts/login/"},
		{"POST", "/accounts/logout/"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code == http.StatusMethodNotAllowed {
				t.Errorf("Route %s %s returned 405, expected route handler to exist", tc.method, tc.path)
			}
		})
	}
}

func TestSpecificMethodRouting(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	mux := NewRouter(db, testutil.GetTestConfig())

	testCases := []struct {
		name   string
		method string
		path   string
	}{
		{"POST to health endpoint", "POST", "/health"},
		{"GET vote endpoint", "GET", "/polls/test-id/vote/"},
		{"POST results page", "POST", "/polls/test-id/results/"},
		{"GET logout", "GET", "/accounts/logout/"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected 405 for %s %s, got %d", tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestDetailRequiresLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	qID := testutil.CreateTestQuestion(t, db, "Routed?", time.Now().Add(-time.Hour), nil)
	mux := NewRouter(db, cfg)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/polls/"+qID+"/", nil))
	if w.Code != http.StatusSeeOther {
		t.Fatalf("Expected 303 for anonymous detail, got %d", w.Code)
	}

	user := testutil.CreateTestUser(t, db, "router")
	req := httptest.NewRequest("GET", "/polls/"+qID+"/", nil)
	req.AddCookie(testutil.SessionCookie(t, cfg, user))
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), "Routed?") {
		t.Errorf("Expected question text in body")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	mux := NewRouter(db, testutil.GetTestConfig())

	// Generate at least one observed request
	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/polls/", nil))

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	testutil.AssertStatus(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), "polls_http_requests_total") {
		t.Error("Expected request counter in metrics output")
	}
}
