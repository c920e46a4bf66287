package sqlite

import (
	"context"
	"database/sql"

	"github.com/lexiboost/lexiboost/internal/logger"
	"github.com/lexiboost/lexiboost/internal/models"
	"github.com/lexiboost/lexiboost/internal/repository"
)

type attemptRepository struct {
	db *sql.DB
}

// NewAttemptRepository creates a new AttemptRepository implementation
func NewAttemptRepository(db *sql.DB) repository.AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Insert(ctx context.Context, a models.Attempt) error {
	log := logger.FromContext(ctx).WithPrefix("attempt_repo")
	log.Debug("recording attempt: session_id=%d word_id=%d slot=%d correct=%v",
		a.SessionID, a.WordID, a.SlotIndex, a.IsCorrect)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO question_attempts (session_id, word_id, slot_index, question_text, correct_answer, user_answer, is_correct)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, a.SessionID, a.WordID, a.SlotIndex, a.QuestionText, a.CorrectAnswer, a.UserAnswer, a.IsCorrect)
	if err != nil {
		log.Error("failed to insert attempt: %v", err)
	}
	return err
}

func (r *attemptRepository) CountBySession(ctx context.Context, sessionID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM question_attempts WHERE session_id = ?
`, sessionID).Scan(&n)
	return n, err
}

func (r *attemptRepository) WordIDsBySession(ctx context.Context, sessionID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT DISTINCT word_id FROM question_attempts WHERE session_id = ?
`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
