package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lexiboost/lexiboost/internal/logger"
	"github.com/lexiboost/lexiboost/internal/models"
	"github.com/lexiboost/lexiboost/internal/repository"
)

type sessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository implementation
func NewSessionRepository(db *sql.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, userID int64, date time.Time) (*models.Session, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("creating session: user_id=%d", userID)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO sessions (user_id, session_date) VALUES (?, ?)
`, userID, date.Format("2006-01-02"))
	if err != nil {
		log.Error("failed to insert session: %v", err)
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	log.Debug("session created: id=%d", id)
	return r.Get(ctx, id)
}

func (r *sessionRepository) Get(ctx context.Context, id int64) (*models.Session, error) {
	var s models.Session
	var date string
	err := r.db.QueryRowContext(ctx, `
SELECT id, user_id, session_date, score, total_questions, correct_answers, created_at
FROM sessions
WHERE id = ?
`, id).Scan(&s.ID, &s.UserID, &date, &s.Score, &s.TotalQuestions, &s.CorrectAnswers, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if t, perr := time.Parse("2006-01-02", date); perr == nil {
		s.SessionDate = t
	}
	return &s, nil
}

func (r *sessionRepository) RecordAnswer(ctx context.Context, id int64, correct bool) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	var err error
	if correct {
		_, err = r.db.ExecContext(ctx, `
UPDATE sessions
SET total_questions = total_questions + 1,
    correct_answers = correct_answers + 1,
    score = score + 1
WHERE id = ?
`, id)
	} else {
		_, err = r.db.ExecContext(ctx, `
UPDATE sessions SET total_questions = total_questions + 1 WHERE id = ?
`, id)
	}
	if err != nil {
		log.Error("failed to record answer on session %d: %v", id, err)
	}
	return err
}
