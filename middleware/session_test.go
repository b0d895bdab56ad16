// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-polls/models"
	"github.com/danielhkuo/quickly-polls/store"
)

type fakeUsers map[string]models.User

func (f fakeUsers) GetUser(_ context.Context, id string) (models.User, error) {
	u, ok := f[id]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return u, nil
}

func cookieFrom(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestSessions(t *testing.T) {
	alice := models.User{ID: "u1", Username: "alice"}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := now
	sessions := NewSessions(fakeUsers{"u1": alice}, "secret", time.Hour, true).
		WithClock(func() time.Time { return clock })

	start := httptest.NewRecorder()
	if err := sessions.Start(start, alice); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	cookie := cookieFrom(start, SessionCookie)
	if cookie == nil {
		t.Fatal("Expected session cookie")
	}
	if !cookie.HttpOnly || !cookie.Secure || cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("Unexpected cookie attributes: %+v", cookie)
	}

	protected := sessions.RequireLogin(func(w http.ResponseWriter, r *http.Request) {
		user, ok := CurrentUser(r.Context())
		if !ok || user.ID != "u1" {
			t.Errorf("Expected alice in context, got %+v", user)
		}
		w.WriteHeader(http.StatusOK)
	})

	t.Run("valid cookie passes", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/polls/q1/", nil)
		req.AddCookie(cookie)
		w := httptest.NewRecorder()
		protected(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}
	})

	t.Run("anonymous is redirected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/polls/q1/?x=1", nil)
		w := httptest.NewRecorder()
		protected(w, req)
		if w.Code != http.StatusSeeOther {
			t.Fatalf("Expected 303, got %d", w.Code)
		}
		want := LoginPath + "?next=%2Fpolls%2Fq1%2F%3Fx%3D1"
		if got := w.Header().Get("Location"); got != want {
			t.Errorf("Expected Location %q, got %q", want, got)
		}
	})

	t.Run("expired cookie is cleared", func(t *testing.T) {
		clock = now.Add(2 * time.Hour)
		defer func() { clock = now }()

		req := httptest.NewRequest("GET", "/polls/q1/", nil)
		req.AddCookie(cookie)
		w := httptest.NewRecorder()
		protected(w, req)
		if w.Code != http.StatusSeeOther {
			t.Errorf("Expected 303, got %d", w.Code)
		}
		if c := cookieFrom(w, SessionCookie); c == nil || c.MaxAge >= 0 {
			t.Errorf("Expected session cookie to be cleared, got %+v", c)
		}
	})
}

func TestLoadLeavesAnonymousAlone(t *testing.T) {
	sessions := NewSessions(fakeUsers{}, "secret", time.Hour, false)

	called := false
	handler := sessions.Load(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := CurrentUser(r.Context()); ok {
			t.Error("Expected no user")
		}
	})

	req := httptest.NewRequest("GET", "/polls/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "garbage"})
	handler(httptest.NewRecorder(), req)

	if !called {
		t.Error("Expected handler to run for anonymous request")
	}
}

func TestFlash(t *testing.T) {
	for _, secure := range []bool{false, true} {
		t.Run(fmt.Sprintf("secure=%v", secure), func(t *testing.T) {
			w := httptest.NewRecorder()
			SetFlash(w, "Voting is not allowed.", secure)
			cookie := cookieFrom(w, FlashCookie)
			if cookie == nil {
				t.Fatal("Expected flash cookie")
			}
			if cookie.Secure != secure || !cookie.HttpOnly {
				t.Errorf("Unexpected flash cookie attributes: %+v", cookie)
			}

			req := httptest.NewRequest("GET", "/polls/", nil)
			req.AddCookie(cookie)
			w = httptest.NewRecorder()

			if got := PopFlash(w, req, secure); got != "Voting is not allowed." {
				t.Errorf("PopFlash() = %q", got)
			}
			cleared := cookieFrom(w, FlashCookie)
			if cleared == nil || cleared.MaxAge >= 0 {
				t.Fatalf("Expected flash cookie to be cleared, got %+v", cleared)
			}
			if cleared.Secure != secure {
				t.Errorf("Cleared flash cookie Secure = %v, want %v", cleared.Secure, secure)
			}
		})
	}

	// Nothing pending
	if got := PopFlash(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil), false); got != "" {
		t.Errorf("PopFlash() without cookie = %q", got)
	}
}
