package generator_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/lexiboost/lexiboost/internal/generator"
	"github.com/lexiboost/lexiboost/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestFallbackQuestion_WellFormed(t *testing.T) {
	word := models.Word{ID: 3, Word: "serendipity", Level: "general"}

	q := generator.FallbackQuestion(word, now)

	require.NotNil(t, q)
	assert.True(t, q.Fallback)
	assert.Equal(t, int64(3), q.WordID)
	assert.Len(t, q.Choices, 4)
	assert.Contains(t, q.Choices, q.CorrectAnswer)
	assert.Contains(t, q.Sentence, "serendipity")
	assert.NotEmpty(t, q.QuestionText)
	assert.NotEmpty(t, q.DefinitionEN)
}

func TestFallbackQuestion_DeterministicPerWord(t *testing.T) {
	word := models.Word{ID: 3, Word: "serendipity", Level: "general"}

	a := generator.FallbackQuestion(word, now)
	b := generator.FallbackQuestion(word, now)

	assert.Equal(t, a, b)
}

func TestFallbackSentence_UsesPOSTemplates(t *testing.T) {
	verb := generator.FallbackSentence("negotiate", []string{"verb"})
	assert.Contains(t, verb, "'negotiate'")

	noun := generator.FallbackSentence("harbor", []string{"n"})
	assert.Contains(t, noun, "'harbor'")

	plain := generator.FallbackSentence("harbor", nil)
	assert.Contains(t, plain, "'harbor'")
}

func TestBuildQuestion_FourChoicesWithCorrectIncluded(t *testing.T) {
	word := models.Word{ID: 9, Word: "happy", Level: "k12"}
	exp := &generator.Explanation{
		Word:          "happy",
		WordZH:        "快乐",
		DefinitionEN:  "Feeling pleased, joyful, or content",
		DefinitionZH:  "感到高兴、快乐或满足",
		Examples:      []generator.Example{{EN: "She was happy to see us.", ZH: "她见到我们很高兴。"}},
		DistractorsEN: []string{"d1", "d2", "d3"},
		DistractorsZH: []string{"干1", "干2", "干3"},
	}

	q := generator.BuildQuestion(word, exp, now)

	assert.False(t, q.Fallback)
	assert.Len(t, q.Choices, 4)
	assert.Contains(t, q.Choices, q.CorrectAnswer)
	assert.Equal(t, "She was happy to see us.", q.Sentence)
	assert.Equal(t, "Feeling pleased, joyful, or content", q.CorrectAnswer.EN)
}

func TestBuildQuestion_PadsShortDistractorLists(t *testing.T) {
	word := models.Word{ID: 9, Word: "happy", Level: "k12"}
	exp := &generator.Explanation{
		DefinitionEN:  "def en",
		DefinitionZH:  "def zh",
		DistractorsEN: []string{"only one"},
		DistractorsZH: []string{"只有一个"},
	}

	q := generator.BuildQuestion(word, exp, now)

	assert.Len(t, q.Choices, 4)
	assert.Contains(t, q.Sentence, "happy", "missing example falls back to a template")
}

func TestMockGenerator_KnownAndUnknownWords(t *testing.T) {
	g := generator.NewMockGenerator()

	exp, err := g.Generate(context.Background(), "happy", "k12")
	require.NoError(t, err)
	assert.Equal(t, "Feeling pleased, joyful, or content", exp.DefinitionEN)
	assert.Len(t, exp.DistractorsEN, 3)

	exp, err = g.Generate(context.Background(), "zymurgy", "academic")
	require.NoError(t, err)
	assert.True(t, strings.Contains(exp.DefinitionEN, "zymurgy"))
	assert.Len(t, exp.DistractorsEN, 3)
}

func TestNormalizeLevel(t *testing.T) {
	assert.Equal(t, "k12", generator.NormalizeLevel(""))
	assert.Equal(t, "k12", generator.NormalizeLevel("bogus"))
	assert.Equal(t, "general", generator.NormalizeLevel("general"))
	assert.Equal(t, "academic", generator.NormalizeLevel("academic"))
}
