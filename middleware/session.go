// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/danielhkuo/quickly-polls/auth"
	"github.com/danielhkuo/quickly-polls/models"
)

const (
	SessionCookie = "session"
	FlashCookie   = "flash"
	LoginPath     = "/accounts/login/"
)

type userKey struct{}

// UserStore is the lookup the session layer needs to resolve a session subject
type UserStore interface {
	GetUser(ctx context.Context, id string) (models.User, error)
}

type Sessions struct {
	users  UserStore
	secret string
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewSessions(users UserStore, secret string, ttl time.Duration, secure bool) *Sessions {
	return &Sessions{users: users, secret: secret, ttl: ttl, secure: secure, now: time.Now}
}

// WithClock replaces the clock used to validate session expiry
func (s *Sessions) WithClock(now func() time.Time) *Sessions {
	s.now = now
	return s
}

// Load resolves the session cookie, if any, to a user stored in the request
// context. Invalid or stale cookies are cleared and the request continues
// anonymously.
func (s *Sessions) Load(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookie)
		if err != nil || cookie.Value == "" {
			next(w, r)
			return
		}

		claims, err := auth.ParseSession(cookie.Value, s.secret, s.now())
		if err != nil {
			s.End(w)
			next(w, r)
			return
		}

		user, err := s.users.GetUser(r.Context(), claims.Subject)
		if err != nil {
			slog.Warn("session user not found", "user_id", claims.Subject, "error", err)
			s.End(w)
			next(w, r)
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), userKey{}, user)))
	}
}

// RequireLogin redirects anonymous requests to the login page, remembering
// where they were headed
func (s *Sessions) RequireLogin(next http.HandlerFunc) http.HandlerFunc {
	return s.Load(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r.Context()); !ok {
			target := LoginPath + "?next=" + url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
		next(w, r)
	})
}

// Start issues a session cookie for the user
func (s *Sessions) Start(w http.ResponseWriter, user models.User) error {
	now := s.now()
	token, err := auth.IssueSession(user.ID, user.Username, s.secret, s.ttl, now)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  now.Add(s.ttl),
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// End clears the session cookie
func (s *Sessions) End(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// CurrentUser returns the user attached by Load
func CurrentUser(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userKey{}).(models.User)
	return user, ok
}

// Secure reports whether cookies are issued with the Secure attribute
func (s *Sessions) Secure() bool {
	return s.secure
}

// SetFlash stores a one-shot message shown on the next rendered page.
// secure should match the session cookie policy.
func SetFlash(w http.ResponseWriter, message string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookie,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(message)),
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlash returns the pending flash message, if any, and clears it
func PopFlash(w http.ResponseWriter, r *http.Request, secure bool) string {
	cookie, err := r.Cookie(FlashCookie)
	if errors.Is(err, http.ErrNoCookie) {
		return ""
	}

	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})

	if err != nil {
		return ""
	}
	msg, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return ""
	}
	return string(msg)
}
