// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/quickly-polls/auth"
	"github.com/danielhkuo/quickly-polls/cliparse"
	"github.com/danielhkuo/quickly-polls/metrics"
	"github.com/danielhkuo/quickly-polls/middleware"
	"github.com/danielhkuo/quickly-polls/models"
	"github.com/danielhkuo/quickly-polls/render"
	"github.com/danielhkuo/quickly-polls/store"
)

// ipHashLabel derives the IP hash key from the session secret when no
// explicit salt is configured
const ipHashLabel = "quickly-polls/vote-ip-hash"

type PollHandler struct {
	store  *store.Store
	cfg    cliparse.Config
	ipSalt string
	now    func() time.Time
}

func NewPollHandler(db *sql.DB, cfg cliparse.Config) *PollHandler {
	return &PollHandler{store: store.New(db), cfg: cfg, ipSalt: ipHashSalt(cfg), now: time.Now}
}

func ipHashSalt(cfg cliparse.Config) string {
	if cfg.IPHashSalt != "" {
		return cfg.IPHashSalt
	}
	return auth.DeriveKey(cfg.SessionSecret, ipHashLabel)
}

// WithClock replaces the handler's notion of the current time
func (h *PollHandler) WithClock(now func() time.Time) *PollHandler {
	h.now = now
	return h
}

// Index handles GET /polls/
// Lists the latest published questions
func (h *PollHandler) Index(w http.ResponseWriter, r *http.Request) {
	now := h.now()

	questions, err := h.store.LatestPublished(r.Context(), now, models.IndexLimit)
	if err != nil {
		slog.Error("failed to list questions", "error", err)
		render.Error(w, http.StatusInternalServerError, pageFor(w, r, h.cfg.SecureCookies), "Database error")
		return
	}

	entries := make([]render.IndexEntry, 0, len(questions))
	for _, q := range questions {
		entries = append(entries, render.IndexEntry{
			ID:      q.ID,
			Text:    q.Text,
			PubDate: q.PubDate,
			CanVote: q.CanVote(now),
		})
	}

	render.HTML(w, http.StatusOK, render.PageIndex, render.IndexData{
		Page:      pageFor(w, r, h.cfg.SecureCookies),
		Questions: entries,
		Empty:     models.MsgNoPolls,
	})
}

// Detail handles GET /polls/{id}/
// Shows the voting form while voting is open; redirects to the index otherwise
func (h *PollHandler) Detail(w http.ResponseWriter, r *http.Request) {
	now := h.now()

	q, ok := h.loadPublished(w, r, now)
	if !ok {
		return
	}

	if !q.CanVote(now) {
		middleware.SetFlash(w, models.MsgVotingClosed, h.cfg.SecureCookies)
		http.Redirect(w, r, "/polls/", http.StatusSeeOther)
		return
	}

	user, _ := middleware.CurrentUser(r.Context())

	var selected string
	existing, err := h.store.UserVote(r.Context(), user.ID, q.ID)
	switch {
	case err == nil:
		selected = existing.ChoiceID
	case !errors.Is(err, store.ErrNotFound):
		slog.Error("failed to load vote", "error", err, "question_id", q.ID)
		render.Error(w, http.StatusInternalServerError, pageFor(w, r, h.cfg.SecureCookies), "Database error")
		return
	}

	h.renderDetail(w, r, http.StatusOK, q, selected, "")
}

// Vote handles POST /polls/{id}/vote/
// Records or changes the user's vote, then redirects to the results
func (h *PollHandler) Vote(w http.ResponseWriter, r *http.Request) {
	now := h.now()

	q, ok := h.loadPublished(w, r, now)
	if !ok {
		return
	}

	if !q.CanVote(now) {
		metrics.VoteRejected(metrics.ReasonClosed)
		middleware.SetFlash(w, models.MsgVotingClosed, h.cfg.SecureCookies)
		http.Redirect(w, r, "/polls/", http.StatusSeeOther)
		return
	}

	user, _ := middleware.CurrentUser(r.Context())

	choiceID := r.PostFormValue("choice")
	if choiceID == "" {
		metrics.VoteRejected(metrics.ReasonNoChoice)
		h.renderDetail(w, r, http.StatusOK, q, "", models.MsgNoChoice)
		return
	}

	if _, err := h.store.GetChoice(r.Context(), q.ID, choiceID); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Error("failed to resolve choice", "error", err, "question_id", q.ID)
			render.Error(w, http.StatusInternalServerError, pageFor(w, r, h.cfg.SecureCookies), "Database error")
			return
		}
		metrics.VoteRejected(metrics.ReasonNoChoice)
		h.renderDetail(w, r, http.StatusOK, q, "", models.MsgNoChoice)
		return
	}

	vote, changed, err := h.store.CastVote(r.Context(), store.CastVoteParams{
		UserID:     user.ID,
		QuestionID: q.ID,
		ChoiceID:   choiceID,
		IPHash:     auth.HashIP(middleware.GetClientIP(r), h.ipSalt),
		UserAgent:  r.UserAgent(),
		Now:        now,
	})
	if errors.Is(err, store.ErrChoiceMismatch) {
		metrics.VoteRejected(metrics.ReasonNoChoice)
		h.renderDetail(w, r, http.StatusOK, q, "", models.MsgNoChoice)
		return
	}
	if err != nil {
		slog.Error("failed to cast vote", "error", err, "question_id", q.ID, "user_id", user.ID)
		render.Error(w, http.StatusInternalServerError, pageFor(w, r, h.cfg.SecureCookies), "Failed to record vote")
		return
	}

	metrics.VoteRecorded(changed)
	slog.Info("vote cast",
		"request_id", middleware.RequestID(r.Context()),
		"question_id", q.ID,
		"vote_id", vote.ID,
		"user_id", user.ID,
		"changed", changed,
	)

	http.Redirect(w, r, "/polls/"+q.ID+"/results/", http.StatusSeeOther)
}

// Results handles GET /polls/{id}/results/
func (h *PollHandler) Results(w http.ResponseWriter, r *http.Request) {
	now := h.now()

	q, ok := h.loadPublished(w, r, now)
	if !ok {
		return
	}

	choices, total, err := h.store.Results(r.Context(), q.ID)
	if err != nil {
		slog.Error("failed to count votes", "error", err, "question_id", q.ID)
		render.Error(w, http.StatusInternalServerError, pageFor(w, r, h.cfg.SecureCookies), "Database error")
		return
	}

	render.HTML(w, http.StatusOK, render.PageResults, render.ResultsData{
		Page:       pageFor(w, r, h.cfg.SecureCookies),
		Question:   q,
		Choices:    choices,
		TotalVotes: total,
		CanVote:    q.CanVote(now),
	})
}

// ResultsJSON handles GET /api/polls/{id}/results
func (h *PollHandler) ResultsJSON(w http.ResponseWriter, r *http.Request) {
	now := h.now()

	q, err := h.store.GetQuestion(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) || (err == nil && !q.IsPublished(now)) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Question not found")
		return
	}
	if err != nil {
		slog.Error("failed to query question", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	choices, total, err := h.store.Results(r.Context(), q.ID)
	if err != nil {
		slog.Error("failed to count votes", "error", err, "question_id", q.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ResultsResponse{
		Question:   q,
		Choices:    choices,
		TotalVotes: total,
		CanVote:    q.CanVote(now),
	})
}

// loadPublished resolves the {id} path value to a published question.
// Absent and not-yet-published questions both render 404.
func (h *PollHandler) loadPublished(w http.ResponseWriter, r *http.Request, now time.Time) (models.Question, bool) {
	q, err := h.store.GetQuestion(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) || (err == nil && !q.IsPublished(now)) {
		render.Error(w, http.StatusNotFound, pageFor(w, r, h.cfg.SecureCookies), "No question matches the given query.")
		return models.Question{}, false
	}
	if err != nil {
		slog.Error("failed to query question", "error", err)
		render.Error(w, http.StatusInternalServerError, pageFor(w, r, h.cfg.SecureCookies), "Database error")
		return models.Question{}, false
	}
	return q, true
}

func (h *PollHandler) renderDetail(w http.ResponseWriter, r *http.Request, status int, q models.Question, selected, errMsg string) {
	choices, err := h.store.Choices(r.Context(), q.ID)
	if err != nil {
		slog.Error("failed to query choices", "error", err, "question_id", q.ID)
		render.Error(w, http.StatusInternalServerError, pageFor(w, r, h.cfg.SecureCookies), "Database error")
		return
	}

	render.HTML(w, status, render.PageDetail, render.DetailData{
		Page:     pageFor(w, r, h.cfg.SecureCookies),
		Question: q,
		Choices:  choices,
		Selected: selected,
		Error:    errMsg,
	})
}

// pageFor collects the signed-in user and pending flash for the layout
func pageFor(w http.ResponseWriter, r *http.Request, secure bool) render.Page {
	page := render.Page{Flash: middleware.PopFlash(w, r, secure)}
	if user, ok := middleware.CurrentUser(r.Context()); ok {
		page.User = &user
	}
	return page
}
