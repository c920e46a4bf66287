package selector

import (
	"context"
	"time"

	"github.com/lexiboost/lexiboost/internal/logger"
	"github.com/lexiboost/lexiboost/internal/models"
	"github.com/lexiboost/lexiboost/internal/repository"
)

// Reason explains why no word could be selected. The three values drive
// distinct user-facing completion messages and must stay distinct.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonNoWordsInDB       Reason = "no_words_in_db"
	ReasonAllWordsCompleted Reason = "all_words_completed"
	ReasonNoWordsDue        Reason = "no_words_due"
)

const candidateLimit = 50

// Selector picks the next word for a session: due words first (wrongbook
// before graduated, earliest due wins, word ID breaks ties), then never-seen
// words in stable ID order when nothing is due.
type Selector struct {
	words    repository.WordRepository
	progress repository.ProgressRepository
	now      func() time.Time
}

func New(words repository.WordRepository, progress repository.ProgressRepository, now func() time.Time) *Selector {
	if now == nil {
		now = time.Now
	}
	return &Selector{words: words, progress: progress, now: now}
}

// NextWord returns the next word for the user, excluding words already shown
// this session. When the pool is exhausted it returns a nil word and a Reason.
func (s *Selector) NextWord(ctx context.Context, userID int64, exclude []int64) (*models.Word, Reason, error) {
	log := logger.FromContext(ctx).WithPrefix("selector")
	now := s.now()

	due, err := s.progress.DueCandidates(ctx, userID, now, exclude, candidateLimit)
	if err != nil {
		return nil, ReasonNone, err
	}
	if len(due) > 0 {
		w := due[0].Word
		log.Debug("selected due word: id=%d word=%q wrongbook=%v", w.ID, w.Word, due[0].Record.InWrongbook)
		return &w, ReasonNone, nil
	}

	unseen, err := s.words.UnseenWords(ctx, userID, exclude, candidateLimit)
	if err != nil {
		return nil, ReasonNone, err
	}
	if len(unseen) > 0 {
		w := unseen[0]
		log.Debug("selected unseen word: id=%d word=%q", w.ID, w.Word)
		return &w, ReasonNone, nil
	}

	reason, err := s.exhaustionReason(ctx, userID, now, exclude)
	if err != nil {
		return nil, ReasonNone, err
	}
	log.Debug("no word available: reason=%s", reason)
	return nil, reason, nil
}

// exhaustionReason distinguishes an empty corpus, a session that consumed
// everything available, and a corpus where nothing is currently due.
func (s *Selector) exhaustionReason(ctx context.Context, userID int64, now time.Time, exclude []int64) (Reason, error) {
	total, err := s.words.Count(ctx)
	if err != nil {
		return ReasonNone, err
	}
	if total == 0 {
		return ReasonNoWordsInDB, nil
	}

	dueCount, err := s.progress.CountDue(ctx, userID, now)
	if err != nil {
		return ReasonNone, err
	}
	unseenCount, err := s.words.CountUnseen(ctx, userID)
	if err != nil {
		return ReasonNone, err
	}

	// The exclusion-filtered pools were empty, so anything still counted here
	// has already been shown this session. Answered words get rescheduled into
	// the future and vanish from these counts, so a session that consumed the
	// whole corpus is detected by the exclusion set covering it.
	if dueCount+unseenCount > 0 || total <= len(exclude) {
		return ReasonAllWordsCompleted, nil
	}
	return ReasonNoWordsDue, nil
}
