// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging and metrics, keyed by route pattern:

	mux.HandleFunc("GET /polls/{$}", middleware.WithLogging("GET /polls/{$}", handler))

Each request gets an X-Request-ID (reused when the client sends one) that
is available to handlers through RequestID. Completion logs include the
status code and duration_ms.

# Sessions

Sessions are signed cookies carrying the user ID:

	sessions := middleware.NewSessions(store.New(db), cfg.SessionSecret, cfg.SessionTTL, cfg.SecureCookies)
	mux.HandleFunc("GET /polls/{id}/{$}", sessions.RequireLogin(handler))

Load attaches the user when a valid cookie is present. RequireLogin also
redirects anonymous requests to LoginPath with a next parameter.

# Flash Messages

One-shot messages survive a single redirect:

	middleware.SetFlash(w, models.MsgVotingClosed, cfg.SecureCookies)
	msg := middleware.PopFlash(w, r, cfg.SecureCookies)

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusNotFound, "Question not found")

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)
*/
package middleware
