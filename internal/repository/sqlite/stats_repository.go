package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/lexiboost/lexiboost/internal/logger"
	"github.com/lexiboost/lexiboost/internal/models"
	"github.com/lexiboost/lexiboost/internal/repository"
)

type statsRepository struct {
	db *sql.DB
}

// NewStatsRepository creates a new StatsRepository implementation
func NewStatsRepository(db *sql.DB) repository.StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) UserStats(ctx context.Context, userID int64, today time.Time) (*models.UserStats, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("computing stats: user_id=%d", userID)

	var stats models.UserStats

	var dailyScore, dailyQuestions, dailyCorrect sql.NullInt64
	err := r.db.QueryRowContext(ctx, `
SELECT SUM(score), SUM(total_questions), SUM(correct_answers)
FROM sessions
WHERE user_id = ? AND session_date = ?
`, userID, today.Format("2006-01-02")).Scan(&dailyScore, &dailyQuestions, &dailyCorrect)
	if err != nil {
		log.Error("failed to compute daily stats: %v", err)
		return nil, err
	}
	stats.DailyScore = int(dailyScore.Int64)
	stats.DailyQuestions = int(dailyQuestions.Int64)
	stats.DailyCorrect = int(dailyCorrect.Int64)

	var totalScore, totalQuestions, totalCorrect sql.NullInt64
	err = r.db.QueryRowContext(ctx, `
SELECT SUM(score), SUM(total_questions), SUM(correct_answers)
FROM sessions
WHERE user_id = ?
`, userID).Scan(&totalScore, &totalQuestions, &totalCorrect)
	if err != nil {
		log.Error("failed to compute total stats: %v", err)
		return nil, err
	}
	stats.TotalScore = int(totalScore.Int64)
	stats.TotalQuestions = int(totalQuestions.Int64)
	stats.TotalCorrect = int(totalCorrect.Int64)

	err = r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM user_words WHERE user_id = ? AND in_wrongbook = 1
`, userID).Scan(&stats.WrongbookCount)
	if err != nil {
		log.Error("failed to count wrongbook: %v", err)
		return nil, err
	}

	return &stats, nil
}
