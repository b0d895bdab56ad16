// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the polls site.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Operational:

	GET /health  - Liveness probe
	GET /metrics - Prometheus metrics

Polls:

	GET  /polls/                    - Latest published questions
	GET  /polls/{id}/               - Voting form (login required)
	POST /polls/{id}/vote/          - Cast or change a vote (login required)
	GET  /polls/{id}/results/       - Vote tallies
	GET  /api/polls/{id}/results    - Vote tallies as JSON

Accounts:

	GET  /accounts/login/  - Login form
	POST /accounts/login/  - Authenticate and start a session
	POST /accounts/logout/ - End the session

The site root redirects to /polls/.
*/
package router
