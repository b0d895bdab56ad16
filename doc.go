// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Quickly Polls web server.

Quickly Polls is a small polling site: staff publish questions with a set
of choices, logged-in users vote once per question (and may change their
vote), and anyone can see the tallies.

# Starting the Server

By default the database is a local SQLite file:

	DATABASE_URL=polls.db SESSION_SECRET=change-me go run .

Or against PostgreSQL with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -session-secret change-me

Settings may also be placed in a .env file in the working directory.

# Configuration

  - SESSION_SECRET (-session-secret): Key for signing session cookies (required)
  - DATABASE_TYPE (-t): postgres or sqlite (default: sqlite)
  - DATABASE_URL (-d): Connection string or SQLite file path (required)
  - PORT (-p): Server port (default: 3318)
  - SESSION_TTL (-session-ttl): Session lifetime (default: 336h)
  - SECURE_COOKIES (-secure-cookies): Mark cookies Secure
  - IP_HASH_SALT (-ip-hash-salt): Key for voter IP hashes (default: derived from SESSION_SECRET)

# Administration

Questions, choices and users are managed with the pollctl command:

	go run ./cmd/pollctl --help

# Architecture

  - handlers: HTTP request handlers (polls, accounts)
  - router: Route definitions using Go 1.22+ routing
  - middleware: Logging, sessions, flash messages, JSON helpers
  - render: HTML templates
  - store: Database queries
  - models: Domain types and voting rules
  - auth: Passwords, session tokens, IDs
  - metrics: Prometheus collectors
  - db: Connection and schema creation
  - cliparse: Configuration parsing
*/
package main
