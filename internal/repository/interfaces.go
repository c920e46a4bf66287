package repository

import (
	"context"
	"time"

	"github.com/lexiboost/lexiboost/internal/models"
)

// UserRepository handles user data access
type UserRepository interface {
	Create(ctx context.Context, username string) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// WordRepository handles word corpus access
type WordRepository interface {
	Get(ctx context.Context, id int64) (*models.Word, error)
	GetOrCreate(ctx context.Context, word string) (*models.Word, error)
	Count(ctx context.Context) (int, error)
	// UnseenWords returns words with no mastery record for the user, excluding
	// the given word IDs, in stable word-ID order.
	UnseenWords(ctx context.Context, userID int64, exclude []int64, limit int) ([]models.Word, error)
	CountUnseen(ctx context.Context, userID int64) (int, error)
}

// ProgressRepository handles per-user mastery records
type ProgressRepository interface {
	Get(ctx context.Context, userID, wordID int64) (*models.MasteryRecord, error)
	Upsert(ctx context.Context, rec models.MasteryRecord) error
	// DueCandidates returns records due at the given time, excluding the given
	// word IDs, ordered wrongbook-first, then earliest due, then word ID.
	DueCandidates(ctx context.Context, userID int64, now time.Time, exclude []int64, limit int) ([]models.DueCandidate, error)
	CountDue(ctx context.Context, userID int64, now time.Time) (int, error)
	WrongbookCount(ctx context.Context, userID int64) (int, error)
	// AddToWrongbook creates a wrongbook record due immediately if none exists.
	// Returns true when a new record was created.
	AddToWrongbook(ctx context.Context, userID, wordID int64, now time.Time) (bool, error)
}

// SessionRepository handles quiz session rows
type SessionRepository interface {
	Create(ctx context.Context, userID int64, date time.Time) (*models.Session, error)
	Get(ctx context.Context, id int64) (*models.Session, error)
	RecordAnswer(ctx context.Context, id int64, correct bool) error
}

// AttemptRepository handles per-question attempt rows
type AttemptRepository interface {
	Insert(ctx context.Context, attempt models.Attempt) error
	CountBySession(ctx context.Context, sessionID int64) (int, error)
	WordIDsBySession(ctx context.Context, sessionID int64) ([]int64, error)
}

// StatsRepository aggregates user statistics
type StatsRepository interface {
	UserStats(ctx context.Context, userID int64, today time.Time) (*models.UserStats, error)
}
