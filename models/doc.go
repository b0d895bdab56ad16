// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the domain and response types shared by the store,
handlers and templates.

# Domain Types

  - Question: A poll prompt with a publish date and optional end date
  - Choice: One selectable option under a question
  - Vote: A user's current selection for a question (one per user per question)
  - User: An account that can log in and vote

Vote counts are never stored on Choice. ChoiceResult pairs a choice with a
count computed by the store at read time.

# Voting Window

Question carries the time predicates used by the handlers. Each takes the
current instant explicitly so callers and tests control the clock:

	q.IsPublished(now)          // now >= PubDate
	q.CanVote(now)              // PubDate <= now <= EndDate (EndDate optional)
	q.WasPublishedRecently(now) // now-24h <= PubDate <= now

All boundaries are inclusive.

# Response Types

ResultsResponse is returned by the JSON results endpoint; ErrorResponse is
the JSON error body.
*/
package models
