package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/lexiboost/lexiboost/internal/errors"
	"github.com/lexiboost/lexiboost/internal/logger"
	"github.com/lexiboost/lexiboost/internal/models"
	"github.com/lexiboost/lexiboost/internal/preloader"
	"github.com/lexiboost/lexiboost/internal/repository"
	"github.com/lexiboost/lexiboost/internal/selector"
	"github.com/lexiboost/lexiboost/internal/srs"
)

// ReasonMaxQuestions completes a session that hit the configured length even
// though more words may remain due.
const ReasonMaxQuestions = "max_questions_reached"

// QuestionResult is either a served question or a completion notice.
type QuestionResult struct {
	Complete       bool             `json:"session_complete"`
	Reason         string           `json:"reason,omitempty"`
	Message        string           `json:"message,omitempty"`
	QuestionNumber int              `json:"question_number,omitempty"`
	Question       *models.Question `json:"question,omitempty"`
}

type AnswerRequest struct {
	WordID     int64
	UserAnswer string
}

type AnswerResult struct {
	IsCorrect     bool   `json:"is_correct"`
	ScoreChange   int    `json:"score_change"`
	ExplanationEN string `json:"explanation_en"`
	ExplanationZH string `json:"explanation_zh"`
}

// Service drives fixed-length quiz sessions: it pulls words from the
// selector, content from the preloader, and records answers into the
// spaced-repetition ledger.
type Service interface {
	Start(ctx context.Context, userID int64) (*models.Session, error)
	NextQuestion(ctx context.Context, sessionID int64) (*QuestionResult, error)
	SubmitAnswer(ctx context.Context, sessionID int64, req AnswerRequest) (*AnswerResult, error)
	Stop(ctx context.Context, sessionID int64) error
	UserStats(ctx context.Context, userID int64) (*models.UserStats, error)
	EvictIdle(ctx context.Context) int
	RunJanitor(ctx context.Context)
}

// Config tunes the session controller.
type Config struct {
	MaxQuestions int
	IdleTimeout  time.Duration
	// Now is the clock; nil means time.Now. Injected for tests.
	Now func() time.Time
}

type service struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	attempts repository.AttemptRepository
	progress repository.ProgressRepository
	stats    repository.StatsRepository
	sel      *selector.Selector
	pre      *preloader.Preloader

	maxQuestions int
	idleTimeout  time.Duration
	now          func() time.Time

	mu     sync.Mutex
	active map[int64]*activeSession
}

// activeSession is the in-memory state of a running quiz: the lazily built
// slot sequence, the exclusion set, and what has actually been served.
type activeSession struct {
	id     int64
	userID int64
	// slots maps slot index to the word assigned to it.
	slots map[int]models.Word
	// asked maps word ID to its slot, doubling as the exclusion set.
	asked map[int64]int
	// served holds issued questions by word ID; answers are validated and
	// graded against these, never re-derived.
	served       map[int64]*models.Question
	nextIndex    int
	lastActivity time.Time
}

func (a *activeSession) excludeIDs() []int64 {
	ids := make([]int64, 0, len(a.asked))
	for id := range a.asked {
		ids = append(ids, id)
	}
	return ids
}

// NewService creates the session controller.
func NewService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	attempts repository.AttemptRepository,
	progress repository.ProgressRepository,
	stats repository.StatsRepository,
	sel *selector.Selector,
	pre *preloader.Preloader,
	cfg Config,
) Service {
	if cfg.MaxQuestions <= 0 {
		cfg.MaxQuestions = 50
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 30 * time.Minute
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		users:        users,
		sessions:     sessions,
		attempts:     attempts,
		progress:     progress,
		stats:        stats,
		sel:          sel,
		pre:          pre,
		maxQuestions: cfg.MaxQuestions,
		idleTimeout:  cfg.IdleTimeout,
		now:          now,
		active:       make(map[int64]*activeSession),
	}
}

func (s *service) Start(ctx context.Context, userID int64) (*models.Session, error) {
	log := logger.FromContext(ctx)

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if user == nil {
		return nil, apperrors.NewNotFoundError("user", userID)
	}

	sess, err := s.sessions.Create(ctx, userID, s.now())
	if err != nil {
		log.Error("failed to create session: %v", err)
		return nil, apperrors.NewInternalError(err)
	}

	s.mu.Lock()
	s.active[sess.ID] = &activeSession{
		id:           sess.ID,
		userID:       userID,
		slots:        make(map[int]models.Word),
		asked:        make(map[int64]int),
		served:       make(map[int64]*models.Question),
		lastActivity: s.now(),
	}
	s.mu.Unlock()

	log.Info("session started: session_id=%d user_id=%d", sess.ID, userID)
	return sess, nil
}

func (s *service) NextQuestion(ctx context.Context, sessionID int64) (*QuestionResult, error) {
	log := logger.FromContext(ctx)

	act, err := s.resume(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	act.lastActivity = s.now()
	idx := act.nextIndex
	s.mu.Unlock()

	if idx >= s.maxQuestions {
		log.Debug("session %d hit max questions (%d)", sessionID, s.maxQuestions)
		s.finish(sessionID)
		return &QuestionResult{
			Complete: true,
			Reason:   ReasonMaxQuestions,
			Message:  fmt.Sprintf("Session complete! You answered %d questions.", s.maxQuestions),
		}, nil
	}

	word, reason, err := s.assignSlot(ctx, act, idx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if reason != selector.ReasonNone {
		s.finish(sessionID)
		return completion(reason, len(act.asked)), nil
	}

	q := s.pre.GetOrGenerate(ctx, sessionID, idx, *word)

	s.mu.Lock()
	act.served[word.ID] = q
	act.nextIndex = idx + 1
	act.lastActivity = s.now()
	s.mu.Unlock()

	s.prefetchAhead(ctx, act, idx)

	log.Debug("served question %d of session %d: word=%q fallback=%v", idx+1, sessionID, word.Word, q.Fallback)
	return &QuestionResult{
		QuestionNumber: idx + 1,
		Question:       q,
	}, nil
}

// assignSlot lazily binds a word to a slot, so selection reflects real-time
// due status at question time rather than session start.
func (s *service) assignSlot(ctx context.Context, act *activeSession, idx int) (*models.Word, selector.Reason, error) {
	s.mu.Lock()
	if w, ok := act.slots[idx]; ok {
		s.mu.Unlock()
		return &w, selector.ReasonNone, nil
	}
	exclude := act.excludeIDs()
	s.mu.Unlock()

	word, reason, err := s.sel.NextWord(ctx, act.userID, exclude)
	if err != nil || reason != selector.ReasonNone {
		return nil, reason, err
	}

	s.mu.Lock()
	act.slots[idx] = *word
	act.asked[word.ID] = idx
	s.mu.Unlock()
	return word, selector.ReasonNone, nil
}

// prefetchAhead warms the next slots so the learner rarely waits on
// generation. Word assignment happens here too, "at or before question time".
func (s *service) prefetchAhead(ctx context.Context, act *activeSession, idx int) {
	for d := 1; d <= s.pre.PrefetchDepth(); d++ {
		slot := idx + d
		if slot >= s.maxQuestions {
			return
		}
		word, reason, err := s.assignSlot(ctx, act, slot)
		if err != nil || reason != selector.ReasonNone {
			return
		}
		s.pre.Prefetch(act.id, slot, *word)
	}
}

func (s *service) SubmitAnswer(ctx context.Context, sessionID int64, req AnswerRequest) (*AnswerResult, error) {
	log := logger.FromContext(ctx)

	act, err := s.resume(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	q, issued := act.served[req.WordID]
	slot, asked := act.asked[req.WordID]
	act.lastActivity = s.now()
	s.mu.Unlock()

	if !issued || !asked {
		return nil, apperrors.NewValidationError("word_id", "question was never issued in this session")
	}

	isCorrect := req.UserAnswer == q.CorrectAnswer.EN
	now := s.now()

	if err := s.attempts.Insert(ctx, models.Attempt{
		SessionID:     sessionID,
		WordID:        req.WordID,
		SlotIndex:     slot,
		QuestionText:  q.QuestionText,
		CorrectAnswer: q.CorrectAnswer.EN,
		UserAnswer:    req.UserAnswer,
		IsCorrect:     isCorrect,
	}); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if err := s.sessions.RecordAnswer(ctx, sessionID, isCorrect); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	// Apply the spaced-repetition transition before returning, so the next
	// selection sees the updated schedule.
	rec, err := s.progress.Get(ctx, act.userID, req.WordID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	base := srs.NewRecord(act.userID, req.WordID, now)
	if rec != nil {
		base = *rec
	}
	updated := srs.Advance(base, isCorrect, now)
	if err := s.progress.Upsert(ctx, updated); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	scoreChange := 0
	if isCorrect {
		scoreChange = 1
	}
	log.Debug("answer recorded: session_id=%d word_id=%d correct=%v", sessionID, req.WordID, isCorrect)

	return &AnswerResult{
		IsCorrect:     isCorrect,
		ScoreChange:   scoreChange,
		ExplanationEN: q.DefinitionEN,
		ExplanationZH: q.DefinitionZH,
	}, nil
}

func (s *service) Stop(ctx context.Context, sessionID int64) error {
	logger.FromContext(ctx).Debug("stopping session %d", sessionID)
	s.finish(sessionID)
	return nil
}

func (s *service) UserStats(ctx context.Context, userID int64) (*models.UserStats, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if user == nil {
		return nil, apperrors.NewNotFoundError("user", userID)
	}

	stats, err := s.stats.UserStats(ctx, userID, s.now())
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return stats, nil
}

// EvictIdle drops sessions with no activity past the idle timeout and evicts
// their cache entries. Returns the number of sessions evicted.
func (s *service) EvictIdle(ctx context.Context) int {
	cutoff := s.now().Add(-s.idleTimeout)

	s.mu.Lock()
	var stale []int64
	for id, act := range s.active {
		if act.lastActivity.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	for _, id := range stale {
		delete(s.active, id)
	}
	s.mu.Unlock()

	for _, id := range stale {
		s.pre.EvictSession(id)
	}
	if len(stale) > 0 {
		logger.FromContext(ctx).Info("evicted %d idle sessions", len(stale))
	}
	return len(stale)
}

// RunJanitor periodically evicts idle sessions until the context is done.
func (s *service) RunJanitor(ctx context.Context) {
	interval := s.idleTimeout / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.EvictIdle(ctx)
		}
	}
}

// finish removes a session from the active set and evicts its cache entries.
func (s *service) finish(sessionID int64) {
	s.mu.Lock()
	delete(s.active, sessionID)
	s.mu.Unlock()
	s.pre.EvictSession(sessionID)
}

// resume returns the in-memory state for a session, rebuilding it from the
// store when the session exists but is not tracked (e.g. after a restart).
func (s *service) resume(ctx context.Context, sessionID int64) (*activeSession, error) {
	s.mu.Lock()
	act, ok := s.active[sessionID]
	s.mu.Unlock()
	if ok {
		return act, nil
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if sess == nil {
		return nil, apperrors.NewNotFoundError("session", sessionID)
	}

	askedIDs, err := s.attempts.WordIDsBySession(ctx, sessionID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	count, err := s.attempts.CountBySession(ctx, sessionID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	act = &activeSession{
		id:           sessionID,
		userID:       sess.UserID,
		slots:        make(map[int]models.Word),
		asked:        make(map[int64]int),
		served:       make(map[int64]*models.Question),
		nextIndex:    count,
		lastActivity: s.now(),
	}
	// Slot positions of past attempts are not needed for exclusion.
	for _, id := range askedIDs {
		act.asked[id] = -1
	}

	s.mu.Lock()
	if existing, ok := s.active[sessionID]; ok {
		act = existing
	} else {
		s.active[sessionID] = act
	}
	s.mu.Unlock()

	logger.FromContext(ctx).Debug("resumed session %d: answered=%d", sessionID, count)
	return act, nil
}

func completion(reason selector.Reason, askedCount int) *QuestionResult {
	res := &QuestionResult{Complete: true, Reason: string(reason)}
	switch reason {
	case selector.ReasonNoWordsInDB:
		res.Message = "No words available in the database. Please import vocabulary data."
	case selector.ReasonAllWordsCompleted:
		res.Message = fmt.Sprintf("Congratulations! You have completed all %d available words in this session.", askedCount)
	case selector.ReasonNoWordsDue:
		res.Message = "No more words due for review at this time. Great job!"
	}
	return res
}
