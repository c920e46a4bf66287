package srs

import (
	"time"

	"github.com/lexiboost/lexiboost/internal/models"
)

// Ladder holds the review intervals. A correct answer moves a word one step
// up the ladder; a wrong answer drops it back to the start.
var Ladder = [...]time.Duration{
	0,
	1 * 24 * time.Hour,
	3 * 24 * time.Hour,
	7 * 24 * time.Hour,
	14 * 24 * time.Hour,
}

// MaxStage is the last index of the interval ladder.
const MaxStage = len(Ladder) - 1

// GraduationStreak is the number of consecutive correct answers required to
// move a word out of the wrongbook.
const GraduationStreak = 3

// NewRecord creates the mastery record for a word's first exposure: stage 0,
// due immediately.
func NewRecord(userID, wordID int64, now time.Time) models.MasteryRecord {
	return models.MasteryRecord{
		UserID:    userID,
		WordID:    wordID,
		NextDueAt: now,
	}
}

// Advance applies one answered question to a mastery record.
//
// A wrong answer puts the word in the wrongbook and resets its stage. While in
// the wrongbook, the consecutive-correct counter tracks remediation progress;
// reaching GraduationStreak clears wrongbook membership and advances one stage.
// Outside the wrongbook a correct answer simply climbs the ladder.
func Advance(rec models.MasteryRecord, wasCorrect bool, now time.Time) models.MasteryRecord {
	reviewed := now
	rec.LastReviewedAt = &reviewed

	if !wasCorrect {
		rec.InWrongbook = true
		rec.ConsecutiveCorrect = 0
		rec.StageIndex = 0
		rec.NextDueAt = now.Add(Ladder[0])
		return rec
	}

	if rec.InWrongbook {
		rec.ConsecutiveCorrect++
		if rec.ConsecutiveCorrect >= GraduationStreak {
			rec.InWrongbook = false
			rec.ConsecutiveCorrect = 0
			if rec.StageIndex < MaxStage {
				rec.StageIndex++
			}
		}
	} else if rec.StageIndex < MaxStage {
		rec.StageIndex++
	}

	rec.NextDueAt = now.Add(Ladder[rec.StageIndex])
	return rec
}
