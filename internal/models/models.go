package models

import "time"

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Word levels accepted by the content generator.
const (
	LevelK12      = "k12"
	LevelGeneral  = "general"
	LevelAcademic = "academic"
)

type Word struct {
	ID        int64     `json:"id"`
	Word      string    `json:"word"`
	Level     string    `json:"level"`
	CreatedAt time.Time `json:"created_at"`
}

// MasteryRecord tracks one user's spaced-repetition state for one word.
// StageIndex indexes the review interval ladder and stays within its bounds.
type MasteryRecord struct {
	ID                 int64      `json:"id"`
	UserID             int64      `json:"user_id"`
	WordID             int64      `json:"word_id"`
	StageIndex         int        `json:"stage_index"`
	NextDueAt          time.Time  `json:"next_due_at"`
	ConsecutiveCorrect int        `json:"consecutive_correct"`
	InWrongbook        bool       `json:"in_wrongbook"`
	LastReviewedAt     *time.Time `json:"last_reviewed_at"`
}

// Due reports whether the record is due for review at the given time.
func (r MasteryRecord) Due(now time.Time) bool {
	return !r.NextDueAt.After(now)
}

// DueCandidate pairs a word with its mastery record for selection ordering.
type DueCandidate struct {
	Word   Word
	Record MasteryRecord
}

type Session struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	SessionDate    time.Time `json:"session_date"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	CorrectAnswers int       `json:"correct_answers"`
	CreatedAt      time.Time `json:"created_at"`
}

type Attempt struct {
	ID            int64     `json:"id"`
	SessionID     int64     `json:"session_id"`
	WordID        int64     `json:"word_id"`
	SlotIndex     int       `json:"slot_index"`
	QuestionText  string    `json:"question_text"`
	CorrectAnswer string    `json:"correct_answer"`
	UserAnswer    string    `json:"user_answer"`
	IsCorrect     bool      `json:"is_correct"`
	CreatedAt     time.Time `json:"created_at"`
}

// ChoicePair is a bilingual answer option.
type ChoicePair struct {
	EN string `json:"en"`
	ZH string `json:"zh"`
}

// Question is the fully assembled content served for one quiz slot.
type Question struct {
	WordID        int64        `json:"word_id"`
	Word          string       `json:"target_word"`
	WordZH        string       `json:"target_word_zh"`
	Level         string       `json:"level"`
	Sentence      string       `json:"sentence"`
	QuestionText  string       `json:"question_text"`
	Choices       []ChoicePair `json:"choices_i18n"`
	CorrectAnswer ChoicePair   `json:"correct_answer_i18n"`
	DefinitionEN  string       `json:"definition_en"`
	DefinitionZH  string       `json:"definition_zh"`
	Fallback      bool         `json:"fallback"`
	GeneratedAt   time.Time    `json:"generated_at"`
}

type UserStats struct {
	DailyScore     int `json:"daily_score"`
	DailyQuestions int `json:"daily_questions"`
	DailyCorrect   int `json:"daily_correct"`
	TotalScore     int `json:"total_score"`
	TotalQuestions int `json:"total_questions"`
	TotalCorrect   int `json:"total_correct"`
	WrongbookCount int `json:"wrongbook_count"`
}
