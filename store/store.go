// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danielhkuo/quickly-polls/auth"
	"github.com/danielhkuo/quickly-polls/models"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrChoiceMismatch = errors.New("choice does not belong to question")
	ErrUsernameTaken  = errors.New("username already taken")
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// ---------- Questions ----------

// CreateQuestion inserts a question and returns it with its new ID
func (s *Store) CreateQuestion(ctx context.Context, text string, pubDate time.Time, endDate *time.Time) (models.Question, error) {
	id, err := auth.GenerateID(16)
	if err != nil {
		return models.Question{}, err
	}

	q := models.Question{ID: id, Text: text, PubDate: pubDate.UTC(), EndDate: utcPtr(endDate)}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO question (id, text, pub_date, end_date)
		VALUES ($1, $2, $3, $4)
	`, q.ID, q.Text, q.PubDate, q.EndDate)
	if err != nil {
		return models.Question{}, fmt.Errorf("failed to insert question: %w", err)
	}
	return q, nil
}

// GetQuestion loads a question by ID
func (s *Store) GetQuestion(ctx context.Context, id string) (models.Question, error) {
	return scanQuestion(s.db.QueryRowContext(ctx, `
		SELECT id, text, pub_date, end_date FROM question WHERE id = $1
	`, id))
}

// LatestPublished returns up to limit questions published at or before now,
// newest first
func (s *Store) LatestPublished(ctx context.Context, now time.Time, limit int) ([]models.Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, pub_date, end_date
		FROM question
		WHERE pub_date <= $1
		ORDER BY pub_date DESC, id
		LIMIT $2
	`, now.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	return scanQuestions(rows)
}

// ListQuestions returns every question, newest publish date first
func (s *Store) ListQuestions(ctx context.Context) ([]models.Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, pub_date, end_date
		FROM question
		ORDER BY pub_date DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	return scanQuestions(rows)
}

// SetEndDate changes or clears (nil) a question's end date
func (s *Store) SetEndDate(ctx context.Context, questionID string, endDate *time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE question SET end_date = $1 WHERE id = $2
	`, utcPtr(endDate), questionID)
	if err != nil {
		return fmt.Errorf("failed to update end date: %w", err)
	}
	return requireRow(res)
}

// ---------- Choices ----------

// AddChoice appends a choice to the end of a question's list
func (s *Store) AddChoice(ctx context.Context, questionID, text string) (models.Choice, error) {
	id, err := auth.GenerateID(12)
	if err != nil {
		return models.Choice{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Choice{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM question WHERE id = $1)
	`, questionID).Scan(&exists)
	if err != nil {
		return models.Choice{}, fmt.Errorf("failed to query question: %w", err)
	}
	if !exists {
		return models.Choice{}, ErrNotFound
	}

	var position int
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(position), 0) + 1 FROM choice WHERE question_id = $1
	`, questionID).Scan(&position)
	if err != nil {
		return models.Choice{}, fmt.Errorf("failed to compute position: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO choice (id, question_id, text, position)
		VALUES ($1, $2, $3, $4)
	`, id, questionID, text, position)
	if err != nil {
		return models.Choice{}, fmt.Errorf("failed to insert choice: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Choice{}, fmt.Errorf("failed to commit choice: %w", err)
	}

	return models.Choice{ID: id, QuestionID: questionID, Text: text, Position: position}, nil
}

// Choices lists a question's choices in display order
func (s *Store) Choices(ctx context.Context, questionID string) ([]models.Choice, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question_id, text, position
		FROM choice
		WHERE question_id = $1
		ORDER BY position, id
	`, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query choices: %w", err)
	}
	defer rows.Close()

	choices := []models.Choice{}
	for rows.Next() {
		var c models.Choice
		if err := rows.Scan(&c.ID, &c.QuestionID, &c.Text, &c.Position); err != nil {
			return nil, fmt.Errorf("failed to scan choice: %w", err)
		}
		choices = append(choices, c)
	}
	return choices, rows.Err()
}

// GetChoice resolves a choice among a question's choices.
// A choice of another question is reported as ErrNotFound.
func (s *Store) GetChoice(ctx context.Context, questionID, choiceID string) (models.Choice, error) {
	var c models.Choice
	err := s.db.QueryRowContext(ctx, `
		SELECT id, question_id, text, position
		FROM choice
		WHERE id = $1 AND question_id = $2
	`, choiceID, questionID).Scan(&c.ID, &c.QuestionID, &c.Text, &c.Position)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Choice{}, ErrNotFound
	}
	if err != nil {
		return models.Choice{}, fmt.Errorf("failed to query choice: %w", err)
	}
	return c, nil
}

// Results counts the current votes for each of a question's choices.
// Counts come from the vote table on every call.
func (s *Store) Results(ctx context.Context, questionID string) ([]models.ChoiceResult, int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.question_id, c.text, c.position, COUNT(v.id)
		FROM choice c
		LEFT JOIN vote v ON v.choice_id = c.id
		WHERE c.question_id = $1
		GROUP BY c.id, c.question_id, c.text, c.position
		ORDER BY c.position, c.id
	`, questionID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	results := []models.ChoiceResult{}
	var total int64
	for rows.Next() {
		var r models.ChoiceResult
		if err := rows.Scan(&r.ID, &r.QuestionID, &r.Text, &r.Position, &r.Votes); err != nil {
			return nil, 0, fmt.Errorf("failed to scan result: %w", err)
		}
		total += r.Votes
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

// ---------- Votes ----------

// UserVote returns the user's current vote on a question, or ErrNotFound
func (s *Store) UserVote(ctx context.Context, userID, questionID string) (models.Vote, error) {
	var v models.Vote
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, question_id, choice_id, cast_at, ip_hash, user_agent
		FROM vote
		WHERE user_id = $1 AND question_id = $2
	`, userID, questionID).Scan(&v.ID, &v.UserID, &v.QuestionID, &v.ChoiceID, &v.CastAt, &v.IPHash, &v.UserAgent)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Vote{}, ErrNotFound
	}
	if err != nil {
		return models.Vote{}, fmt.Errorf("failed to query vote: %w", err)
	}
	return v, nil
}

// CastVoteParams describes a vote submission
type CastVoteParams struct {
	UserID     string
	QuestionID string
	ChoiceID   string
	IPHash     string
	UserAgent  string
	Now        time.Time
}

// CastVote records the user's choice for a question. An earlier vote by the
// same user on the same question is moved to the new choice instead of
// adding a row. Reports whether an existing vote was changed.
func (s *Store) CastVote(ctx context.Context, p CastVoteParams) (vote models.Vote, changed bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Vote{}, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var belongs bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM choice WHERE id = $1 AND question_id = $2)
	`, p.ChoiceID, p.QuestionID).Scan(&belongs)
	if err != nil {
		return models.Vote{}, false, fmt.Errorf("failed to verify choice: %w", err)
	}
	if !belongs {
		return models.Vote{}, false, ErrChoiceMismatch
	}

	// Check if vote already exists
	var existingID string
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM vote WHERE user_id = $1 AND question_id = $2
	`, p.UserID, p.QuestionID).Scan(&existingID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return models.Vote{}, false, fmt.Errorf("failed to query vote: %w", err)
	default:
		changed = true
	}

	voteID := existingID
	if voteID == "" {
		if voteID, err = auth.GenerateID(16); err != nil {
			return models.Vote{}, false, err
		}
	}

	// The unique (user_id, question_id) constraint turns a racing insert
	// into an update of the winner's row
	castAt := p.Now.UTC()
	ipHash := nullString(p.IPHash)
	userAgent := nullString(p.UserAgent)
	err = tx.QueryRowContext(ctx, `
		INSERT INTO vote (id, user_id, question_id, choice_id, cast_at, ip_hash, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, question_id) DO UPDATE
		SET choice_id = excluded.choice_id,
		    cast_at = excluded.cast_at,
		    ip_hash = excluded.ip_hash,
		    user_agent = excluded.user_agent
		RETURNING id
	`, voteID, p.UserID, p.QuestionID, p.ChoiceID, castAt, ipHash, userAgent).Scan(&voteID)
	if err != nil {
		return models.Vote{}, false, fmt.Errorf("failed to upsert vote: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Vote{}, false, fmt.Errorf("failed to commit vote: %w", err)
	}

	return models.Vote{
		ID:         voteID,
		UserID:     p.UserID,
		QuestionID: p.QuestionID,
		ChoiceID:   p.ChoiceID,
		CastAt:     castAt,
		IPHash:     ipHash,
		UserAgent:  userAgent,
	}, changed, nil
}

// ---------- Users ----------

// CreateUser stores a new account with an already hashed password
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string, isStaff bool, now time.Time) (models.User, error) {
	id, err := auth.GenerateID(16)
	if err != nil {
		return models.User{}, err
	}

	u := models.User{ID: id, Username: username, PasswordHash: passwordHash, IsStaff: isStaff, CreatedAt: now.UTC()}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO app_user (id, username, password_hash, is_staff, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, u.ID, u.Username, u.PasswordHash, u.IsStaff, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrUsernameTaken
		}
		return models.User{}, fmt.Errorf("failed to insert user: %w", err)
	}
	return u, nil
}

// GetUser loads a user by ID
func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, is_staff, created_at FROM app_user WHERE id = $1
	`, id))
}

// GetUserByUsername loads a user by login name
func (s *Store) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, is_staff, created_at FROM app_user WHERE username = $1
	`, username))
}

// ---------- helpers ----------

func scanQuestion(row *sql.Row) (models.Question, error) {
	var q models.Question
	var endDate sql.NullTime
	err := row.Scan(&q.ID, &q.Text, &q.PubDate, &endDate)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Question{}, ErrNotFound
	}
	if err != nil {
		return models.Question{}, fmt.Errorf("failed to query question: %w", err)
	}
	q.PubDate = q.PubDate.UTC()
	if endDate.Valid {
		t := endDate.Time.UTC()
		q.EndDate = &t
	}
	return q, nil
}

func scanQuestions(rows *sql.Rows) ([]models.Question, error) {
	questions := []models.Question{}
	for rows.Next() {
		var q models.Question
		var endDate sql.NullTime
		if err := rows.Scan(&q.ID, &q.Text, &q.PubDate, &endDate); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		q.PubDate = q.PubDate.UTC()
		if endDate.Valid {
			t := endDate.Time.UTC()
			q.EndDate = &t
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func scanUser(row *sql.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsStaff, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	return u, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// isUniqueViolation matches the messages of both supported drivers
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
