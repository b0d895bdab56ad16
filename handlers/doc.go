// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the polls site.

# Handler Types

  - PollHandler: index, voting form, vote submission, results
  - AccountHandler: login and logout

Handlers are created via constructor functions:

	pollHandler := handlers.NewPollHandler(db, cfg)
	accountHandler := handlers.NewAccountHandler(db, sessions)

# Voting Flow

A logged-in user opens a published question, picks one choice, and posts
it to the vote endpoint. The first vote inserts a row. Later votes on the
same question replace the choice on that row, so each user holds at most
one vote per question. After a successful vote the browser is redirected
to the results page.

Questions outside their voting window redirect back to the index with a
flash message. Questions that do not exist or are not yet published are
reported as 404.
*/
package handlers
