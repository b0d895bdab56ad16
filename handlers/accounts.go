// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/quickly-polls/auth"
	"github.com/danielhkuo/quickly-polls/middleware"
	"github.com/danielhkuo/quickly-polls/models"
	"github.com/danielhkuo/quickly-polls/render"
	"github.com/danielhkuo/quickly-polls/store"
)

type AccountHandler struct {
	store    *store.Store
	sessions *middleware.Sessions
}

func NewAccountHandler(db *sql.DB, sessions *middleware.Sessions) *AccountHandler {
	return &AccountHandler{store: store.New(db), sessions: sessions}
}

// LoginForm handles GET /accounts/login/
func (h *AccountHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	render.HTML(w, http.StatusOK, render.PageLogin, render.LoginData{
		Page: pageFor(w, r, h.sessions.Secure()),
		Next: safeNext(r.URL.Query().Get("next")),
	})
}

// Login handles POST /accounts/login/
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	next := safeNext(r.PostFormValue("next"))

	fail := func() {
		render.HTML(w, http.StatusOK, render.PageLogin, render.LoginData{
			Page:     pageFor(w, r, h.sessions.Secure()),
			Next:     next,
			Username: username,
			Error:    models.MsgBadCredentials,
		})
	}

	if username == "" || password == "" {
		fail()
		return
	}

	user, err := h.store.GetUserByUsername(r.Context(), username)
	if errors.Is(err, store.ErrNotFound) {
		fail()
		return
	}
	if err != nil {
		slog.Error("failed to query user", "error", err)
		render.Error(w, http.StatusInternalServerError, pageFor(w, r, h.sessions.Secure()), "Database error")
		return
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		slog.Info("login failed", "username", username)
		fail()
		return
	}

	if err := h.sessions.Start(w, user); err != nil {
		slog.Error("failed to start session", "error", err)
		render.Error(w, http.StatusInternalServerError, pageFor(w, r, h.sessions.Secure()), "Failed to log in")
		return
	}

	slog.Info("user logged in", "user_id", user.ID)
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// Logout handles POST /accounts/logout/
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.End(w)
	http.Redirect(w, r, "/polls/", http.StatusSeeOther)
}

// safeNext keeps post-login redirects on this site
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") ||
		strings.HasPrefix(next, "//") || strings.ContainsAny(next, "\\\r\n") {
		return "/polls/"
	}
	return next
}
