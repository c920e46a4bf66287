package srs_test

import (
	"testing"
	"time"

	"github.com/lexiboost/lexiboost/internal/models"
	"github.com/lexiboost/lexiboost/internal/srs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestAdvance_CorrectClimbsLadder(t *testing.T) {
	rec := srs.NewRecord(1, 42, now)

	rec = srs.Advance(rec, true, now)

	assert.Equal(t, 1, rec.StageIndex)
	assert.False(t, rec.InWrongbook)
	assert.Equal(t, now.Add(24*time.Hour), rec.NextDueAt)
}

func TestAdvance_StageCappedAtLadderEnd(t *testing.T) {
	rec := srs.NewRecord(1, 42, now)

	for i := 0; i < 20; i++ {
		rec = srs.Advance(rec, true, now)
		require.LessOrEqual(t, rec.StageIndex, srs.MaxStage)
		require.GreaterOrEqual(t, rec.StageIndex, 0)
	}

	assert.Equal(t, srs.MaxStage, rec.StageIndex)
	assert.Equal(t, now.Add(14*24*time.Hour), rec.NextDueAt)
}

func TestAdvance_WrongResetsToStart(t *testing.T) {
	rec := srs.NewRecord(1, 42, now)
	rec = srs.Advance(rec, true, now)
	rec = srs.Advance(rec, true, now)
	require.Equal(t, 2, rec.StageIndex)

	rec = srs.Advance(rec, false, now)

	assert.Equal(t, 0, rec.StageIndex)
	assert.True(t, rec.InWrongbook)
	assert.Equal(t, 0, rec.ConsecutiveCorrect)
	assert.Equal(t, now, rec.NextDueAt, "wrongbook words are due again immediately")
}

func TestAdvance_GraduationAfterThreeCorrect(t *testing.T) {
	rec := srs.NewRecord(1, 42, now)
	rec = srs.Advance(rec, false, now)
	require.True(t, rec.InWrongbook)

	rec = srs.Advance(rec, true, now)
	assert.True(t, rec.InWrongbook)
	assert.Equal(t, 1, rec.ConsecutiveCorrect)
	assert.Equal(t, 0, rec.StageIndex, "stage holds until graduation")

	rec = srs.Advance(rec, true, now)
	assert.True(t, rec.InWrongbook)
	assert.Equal(t, 2, rec.ConsecutiveCorrect)

	rec = srs.Advance(rec, true, now)
	assert.False(t, rec.InWrongbook, "third consecutive correct graduates")
	assert.Equal(t, 0, rec.ConsecutiveCorrect)
	assert.Equal(t, 1, rec.StageIndex)
}

func TestAdvance_WrongDuringRemediationResetsStreak(t *testing.T) {
	rec := srs.NewRecord(1, 42, now)
	rec = srs.Advance(rec, false, now)
	rec = srs.Advance(rec, true, now)
	rec = srs.Advance(rec, true, now)
	require.Equal(t, 2, rec.ConsecutiveCorrect)

	rec = srs.Advance(rec, false, now)

	assert.True(t, rec.InWrongbook)
	assert.Equal(t, 0, rec.ConsecutiveCorrect)
	assert.Equal(t, 0, rec.StageIndex)

	// The streak starts over from scratch.
	rec = srs.Advance(rec, true, now)
	rec = srs.Advance(rec, true, now)
	assert.True(t, rec.InWrongbook)
	rec = srs.Advance(rec, true, now)
	assert.False(t, rec.InWrongbook)
}

// "happy" answered incorrectly three times from stage 0, then correctly three
// times: ends graduated at stage 1 with a cleared streak.
func TestAdvance_HappyScenario(t *testing.T) {
	rec := srs.NewRecord(1, 7, now)

	for i := 0; i < 3; i++ {
		rec = srs.Advance(rec, false, now)
	}
	for i := 0; i < 3; i++ {
		rec = srs.Advance(rec, true, now)
	}

	assert.False(t, rec.InWrongbook)
	assert.Equal(t, 1, rec.StageIndex)
	assert.Equal(t, 0, rec.ConsecutiveCorrect)
}

func TestAdvance_StageStaysInBoundsUnderArbitrarySequences(t *testing.T) {
	sequences := [][]bool{
		{true, true, true, true, true, true, true},
		{false, false, false, false},
		{true, false, true, false, true, false},
		{false, true, true, true, false, true, true, true, true},
		{true, true, false, true, true, true, true, true, true, true},
	}

	for _, seq := range sequences {
		rec := srs.NewRecord(1, 1, now)
		for _, correct := range seq {
			rec = srs.Advance(rec, correct, now)
			require.GreaterOrEqual(t, rec.StageIndex, 0)
			require.LessOrEqual(t, rec.StageIndex, srs.MaxStage)
			require.GreaterOrEqual(t, rec.ConsecutiveCorrect, 0)
		}
	}
}

func TestDue(t *testing.T) {
	rec := models.MasteryRecord{NextDueAt: now}

	assert.True(t, rec.Due(now))
	assert.True(t, rec.Due(now.Add(time.Hour)))
	assert.False(t, rec.Due(now.Add(-time.Second)))
}
