package generator

import (
	"context"

	"github.com/lexiboost/lexiboost/internal/models"
)

// Explanation is the raw content produced for a word: definitions, example
// sentences and distractors, bilingual throughout.
type Explanation struct {
	Word          string    `json:"word"`
	WordZH        string    `json:"word_zh"`
	POS           []string  `json:"pos"`
	DefinitionEN  string    `json:"definition_en"`
	DefinitionZH  string    `json:"definition_zh"`
	Examples      []Example `json:"examples"`
	DistractorsEN []string  `json:"distractors_en"`
	DistractorsZH []string  `json:"distractors_zh"`
}

type Example struct {
	EN string `json:"en"`
	ZH string `json:"zh"`
}

// Generator produces an explanation for a word at a difficulty level. It may
// be slow and may fail; callers own timeouts via the context.
type Generator interface {
	Generate(ctx context.Context, word, level string) (*Explanation, error)
}

// NormalizeLevel maps unknown or empty levels to the default.
func NormalizeLevel(level string) string {
	switch level {
	case models.LevelK12, models.LevelGeneral, models.LevelAcademic:
		return level
	default:
		return models.LevelK12
	}
}
