package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/lexiboost/lexiboost/internal/logger"
	"github.com/lexiboost/lexiboost/internal/models"
	"github.com/lexiboost/lexiboost/internal/repository"
)

type progressRepository struct {
	db *sql.DB
}

// NewProgressRepository creates a new ProgressRepository implementation
func NewProgressRepository(db *sql.DB) repository.ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) Get(ctx context.Context, userID, wordID int64) (*models.MasteryRecord, error) {
	var rec models.MasteryRecord
	var lastReviewed sql.NullTime
	err := r.db.QueryRowContext(ctx, `
SELECT id, user_id, word_id, stage_index, next_due_at, consecutive_correct, in_wrongbook, last_reviewed_at
FROM user_words
WHERE user_id = ? AND word_id = ?
`, userID, wordID).Scan(&rec.ID, &rec.UserID, &rec.WordID, &rec.StageIndex, &rec.NextDueAt,
		&rec.ConsecutiveCorrect, &rec.InWrongbook, &lastReviewed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if lastReviewed.Valid {
		rec.LastReviewedAt = &lastReviewed.Time
	}
	return &rec, nil
}

func (r *progressRepository) Upsert(ctx context.Context, rec models.MasteryRecord) error {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("upserting mastery record: user_id=%d word_id=%d stage=%d wrongbook=%v",
		rec.UserID, rec.WordID, rec.StageIndex, rec.InWrongbook)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO user_words (user_id, word_id, stage_index, next_due_at, consecutive_correct, in_wrongbook, last_reviewed_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id, word_id) DO UPDATE SET
    stage_index = excluded.stage_index,
    next_due_at = excluded.next_due_at,
    consecutive_correct = excluded.consecutive_correct,
    in_wrongbook = excluded.in_wrongbook,
    last_reviewed_at = excluded.last_reviewed_at
`, rec.UserID, rec.WordID, rec.StageIndex, rec.NextDueAt, rec.ConsecutiveCorrect, rec.InWrongbook, rec.LastReviewedAt)
	if err != nil {
		log.Error("failed to upsert mastery record: %v", err)
	}
	return err
}

func (r *progressRepository) DueCandidates(ctx context.Context, userID int64, now time.Time, exclude []int64, limit int) ([]models.DueCandidate, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")

	query := sqlBuilder.
		Select("w.id", "w.word", "w.level", "w.created_at",
			"uw.id", "uw.stage_index", "uw.next_due_at", "uw.consecutive_correct", "uw.in_wrongbook", "uw.last_reviewed_at").
		From("user_words uw").
		Join("words w ON w.id = uw.word_id").
		Where(squirrel.Eq{"uw.user_id": userID}).
		Where(squirrel.LtOrEq{"uw.next_due_at": now}).
		Where("TRIM(w.word) <> ''").
		OrderBy("uw.in_wrongbook DESC", "uw.next_due_at ASC", "w.id ASC")
	if len(exclude) > 0 {
		query = query.Where(squirrel.NotEq{"w.id": exclude})
	}
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query due candidates: %v", err)
		return nil, err
	}
	defer rows.Close()

	var candidates []models.DueCandidate
	for rows.Next() {
		var c models.DueCandidate
		var lastReviewed sql.NullTime
		if err := rows.Scan(&c.Word.ID, &c.Word.Word, &c.Word.Level, &c.Word.CreatedAt,
			&c.Record.ID, &c.Record.StageIndex, &c.Record.NextDueAt,
			&c.Record.ConsecutiveCorrect, &c.Record.InWrongbook, &lastReviewed); err != nil {
			return nil, err
		}
		c.Record.UserID = userID
		c.Record.WordID = c.Word.ID
		if lastReviewed.Valid {
			c.Record.LastReviewedAt = &lastReviewed.Time
		}
		candidates = append(candidates, c)
	}
	log.Debug("found %d due candidates for user %d", len(candidates), userID)
	return candidates, rows.Err()
}

func (r *progressRepository) CountDue(ctx context.Context, userID int64, now time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM user_words uw
JOIN words w ON w.id = uw.word_id
WHERE uw.user_id = ? AND uw.next_due_at <= ? AND TRIM(w.word) <> ''
`, userID, now).Scan(&n)
	return n, err
}

func (r *progressRepository) WrongbookCount(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM user_words WHERE user_id = ? AND in_wrongbook = 1
`, userID).Scan(&n)
	return n, err
}

func (r *progressRepository) AddToWrongbook(ctx context.Context, userID, wordID int64, now time.Time) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")

	res, err := r.db.ExecContext(ctx, `
INSERT INTO user_words (user_id, word_id, stage_index, next_due_at, consecutive_correct, in_wrongbook)
VALUES (?, ?, 0, ?, 0, 1)
ON CONFLICT (user_id, word_id) DO NOTHING
`, userID, wordID, now)
	if err != nil {
		log.Error("failed to add word to wrongbook: %v", err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
