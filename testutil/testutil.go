// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-polls/auth"
	"github.com/danielhkuo/quickly-polls/cliparse"
	"github.com/danielhkuo/quickly-polls/db"
	"github.com/danielhkuo/quickly-polls/middleware"
	"github.com/danielhkuo/quickly-polls/models"
	"github.com/danielhkuo/quickly-polls/store"
)

// TestPassword is the password given to every user made by CreateTestUser
const TestPassword = "test-password-123"

// SetupTestDB creates a fresh SQLite database file with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.OpenSQLite(filepath.Join(t.TempDir(), "polls.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.CreateSchema(conn); err != nil {
		conn.Close()
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3318,
		DatabaseURL:   "file:test.db",
		DatabaseType:  cliparse.DatabaseSQLite,
		SessionSecret: "test-session-secret",
		SessionTTL:    time.Hour,
	}
}

// CreateTestQuestion stores a question published at pubDate and returns its ID
func CreateTestQuestion(t *testing.T, conn *sql.DB, text string, pubDate time.Time, endDate *time.Time) string {
	t.Helper()

	q, err := store.New(conn).CreateQuestion(context.Background(), text, pubDate, endDate)
	if err != nil {
		t.Fatalf("Failed to create test question: %v", err)
	}
	return q.ID
}

// AddTestChoice adds a choice to a question and returns the choice ID
func AddTestChoice(t *testing.T, conn *sql.DB, questionID, text string) string {
	t.Helper()

	c, err := store.New(conn).AddChoice(context.Background(), questionID, text)
	if err != nil {
		t.Fatalf("Failed to create test choice: %v", err)
	}
	return c.ID
}

// CreateTestUser creates an account whose password is TestPassword
func CreateTestUser(t *testing.T, conn *sql.DB, username string) models.User {
	t.Helper()

	hash, err := auth.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user, err := store.New(conn).CreateUser(context.Background(), username, hash, false, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// CastTestVote records a vote directly in the store
func CastTestVote(t *testing.T, conn *sql.DB, userID, questionID, choiceID string) {
	t.Helper()

	_, _, err := store.New(conn).CastVote(context.Background(), store.CastVoteParams{
		UserID:     userID,
		QuestionID: questionID,
		ChoiceID:   choiceID,
		Now:        time.Now(),
	})
	if err != nil {
		t.Fatalf("Failed to cast test vote: %v", err)
	}
}

// TestSessions builds the session layer with the test configuration
func TestSessions(conn *sql.DB, cfg cliparse.Config) *middleware.Sessions {
	return middleware.NewSessions(store.New(conn), cfg.SessionSecret, cfg.SessionTTL, cfg.SecureCookies)
}

// SessionCookie returns a valid session cookie for the user
func SessionCookie(t *testing.T, cfg cliparse.Config, user models.User) *http.Cookie {
	t.Helper()

	token, err := auth.IssueSession(user.ID, user.Username, cfg.SessionSecret, cfg.SessionTTL, time.Now())
	if err != nil {
		t.Fatalf("Failed to issue session: %v", err)
	}
	return &http.Cookie{Name: middleware.SessionCookie, Value: token}
}

// CountVotes returns the number of vote rows for a question
func CountVotes(t *testing.T, conn *sql.DB, questionID string) int {
	t.Helper()

	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM vote WHERE question_id = $1`, questionID).Scan(&n); err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	return n
}

// MakeRequest creates an HTTP test request, with optional form body and cookie
func MakeRequest(method, path string, form url.Values, cookie *http.Cookie) *http.Request {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	if cookie != nil {
		req.AddCookie(cookie)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertRedirect checks for a redirect to the expected location
func AssertRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	if w.Code != http.StatusSeeOther && w.Code != http.StatusFound {
		t.Errorf("Expected redirect, got %d. Body: %s", w.Code, w.Body.String())
		return
	}
	if got := w.Header().Get("Location"); got != location {
		t.Errorf("Expected redirect to %q, got %q", location, got)
	}
}

// FindCookie returns the named cookie set on the response, or nil
func FindCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
