// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/quickly-polls/cliparse"
	"github.com/danielhkuo/quickly-polls/handlers"
	"github.com/danielhkuo/quickly-polls/metrics"
	"github.com/danielhkuo/quickly-polls/middleware"
	"github.com/danielhkuo/quickly-polls/store"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	sessions := middleware.NewSessions(store.New(db), cfg.SessionSecret, cfg.SessionTTL, cfg.SecureCookies)
	return NewRouterWith(handlers.NewPollHandler(db, cfg), handlers.NewAccountHandler(db, sessions), sessions)
}

// NewRouterWith wires already constructed handlers, so tests can swap the clock
func NewRouterWith(pollHandler *handlers.PollHandler, accountHandler *handlers.AccountHandler, sessions *middleware.Sessions) *http.ServeMux {
	mux := http.NewServeMux()

	handle := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, middleware.WithLogging(pattern, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", metrics.Handler())

	// Polls (public)
	mux.Handle("GET /polls", http.RedirectHandler("/polls/", http.StatusMovedPermanently))
	handle("GET /polls/{$}", sessions.Load(pollHandler.Index))
	handle("GET /polls/{id}/results/{$}", sessions.Load(pollHandler.Results))
	handle("GET /api/polls/{id}/results", pollHandler.ResultsJSON)

	// Voting (login required)
	handle("GET /polls/{id}/{$}", sessions.RequireLogin(pollHandler.Detail))
	handle("POST /polls/{id}/vote/{$}", sessions.RequireLogin(pollHandler.Vote))

	// Accounts
	handle("GET /accounts/login/{$}", sessions.Load(accountHandler.LoginForm))
	handle("POST /accounts/login/{$}", sessions.Load(accountHandler.Login))
	handle("POST /accounts/logout/{$}", accountHandler.Logout)

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/polls/", http.StatusFound)
	})

	return mux
}
