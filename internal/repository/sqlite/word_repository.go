package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"

	"github.com/lexiboost/lexiboost/internal/logger"
	"github.com/lexiboost/lexiboost/internal/models"
	"github.com/lexiboost/lexiboost/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

type wordRepository struct {
	db *sql.DB
}

// NewWordRepository creates a new WordRepository implementation
func NewWordRepository(db *sql.DB) repository.WordRepository {
	return &wordRepository{db: db}
}

func (r *wordRepository) Get(ctx context.Context, id int64) (*models.Word, error) {
	var w models.Word
	err := r.db.QueryRowContext(ctx, `
SELECT id, word, level, created_at FROM words WHERE id = ?
`, id).Scan(&w.ID, &w.Word, &w.Level, &w.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *wordRepository) GetOrCreate(ctx context.Context, word string) (*models.Word, error) {
	log := logger.FromContext(ctx).WithPrefix("word_repo")

	var w models.Word
	err := r.db.QueryRowContext(ctx, `
SELECT id, word, level, created_at FROM words WHERE word = ?
`, word).Scan(&w.ID, &w.Word, &w.Level, &w.CreatedAt)
	if err == nil {
		return &w, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	log.Debug("inserting new word: %q", word)
	res, err := r.db.ExecContext(ctx, `INSERT INTO words (word) VALUES (?)`, word)
	if err != nil {
		log.Error("failed to insert word: %v", err)
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *wordRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM words WHERE TRIM(word) <> ''`).Scan(&n)
	return n, err
}

func (r *wordRepository) UnseenWords(ctx context.Context, userID int64, exclude []int64, limit int) ([]models.Word, error) {
	log := logger.FromContext(ctx).WithPrefix("word_repo")

	query := sqlBuilder.
		Select("w.id", "w.word", "w.level", "w.created_at").
		From("words w").
		Where("TRIM(w.word) <> ''").
		Where("w.id NOT IN (SELECT uw.word_id FROM user_words uw WHERE uw.user_id = ?)", userID).
		OrderBy("w.id ASC")
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
		log.Error("failed to query unseen words: %v", err)
		return nil, err
	}
	defer rows.Close()

	var words []models.Word
	for rows.Next() {
		var w models.Word
		if err := rows.Scan(&w.ID, &w.Word, &w.Level, &w.CreatedAt); err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	log.Debug("found %d unseen words for user %d", len(words), userID)
	return words, rows.Err()
}

func (r *wordRepository) CountUnseen(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM words w
WHERE TRIM(w.word) <> ''
  AND w.id NOT IN (SELECT uw.word_id FROM user_words uw WHERE uw.user_id = ?)
`, userID).Scan(&n)
	return n, err
}
