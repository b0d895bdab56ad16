// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-polls/testutil"
)

// TestConcurrentVotesSameUser verifies that a burst of submissions from one
// user leaves exactly one vote row behind
func TestConcurrentVotesSameUser(t *testing.T) {
	env := setupTestEnv(t)
	user, cookie := env.login(t, "alice")

	qID := testutil.CreateTestQuestion(t, env.db, "Race?", time.Now().Add(-day), nil)
	choices := []string{
		testutil.AddTestChoice(t, env.db, qID, "A"),
		testutil.AddTestChoice(t, env.db, qID, "B"),
		testutil.AddTestChoice(t, env.db, qID, "C"),
	}

	numRequests := 12
	var redirects atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numRequests; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			form := url.Values{"choice": {choices[idx%len(choices)]}}
			w := env.do(testutil.MakeRequest("POST", "/polls/"+qID+"/vote/", form, cookie))
			if w.Code == http.StatusSeeOther {
				redirects.Add(1)
			}
		}(i)
	}

	wg.Wait()

	if int(redirects.Load()) != numRequests {
		t.Errorf("Expected %d successful submissions, got %d", numRequests, redirects.Load())
	}

	var rows int
	err := env.db.QueryRow(`SELECT COUNT(*) FROM vote WHERE user_id = $1 AND question_id = $2`, user.ID, qID).Scan(&rows)
	if err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	if rows != 1 {
		t.Errorf("Expected 1 vote row, got %d", rows)
	}
}

// TestConcurrentVotesManyUsers verifies that simultaneous votes from
// different users are all counted
func TestConcurrentVotesManyUsers(t *testing.T) {
	env := setupTestEnv(t)

	qID := testutil.CreateTestQuestion(t, env.db, "Crowd?", time.Now().Add(-day), nil)
	choice := testutil.AddTestChoice(t, env.db, qID, "Yes")

	numVoters := 8
	cookies := make([]*http.Cookie, numVoters)
	for i := 0; i < numVoters; i++ {
		_, cookies[i] = env.login(t, "voter"+string(rune('a'+i)))
	}

	var wg sync.WaitGroup
	for i := 0; i < numVoters; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			env.do(testutil.MakeRequest("POST", "/polls/"+qID+"/vote/", url.Values{"choice": {choice}}, cookies[idx]))
		}(i)
	}
	wg.Wait()

	if n := testutil.CountVotes(t, env.db, qID); n != numVoters {
		t.Errorf("Expected %d votes, got %d", numVoters, n)
	}
}
