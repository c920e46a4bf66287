package generator

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/lexiboost/lexiboost/internal/models"
)

const choiceCount = 4

// paddingChoice fills in when fewer than three distractors are available.
var paddingChoice = models.ChoicePair{
	EN: "A general concept or idea",
	ZH: "一般概念或想法",
}

// wordRand returns a rand source seeded by the word alone, so fallback content
// and choice order stay stable for a word across sessions.
func wordRand(word string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(word))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// BuildQuestion assembles a servable question from a generated explanation.
func BuildQuestion(word models.Word, exp *Explanation, now time.Time) *models.Question {
	correct := models.ChoicePair{EN: exp.DefinitionEN, ZH: exp.DefinitionZH}

	choices := []models.ChoicePair{correct}
	for i := 0; i < len(exp.DistractorsEN) && i < len(exp.DistractorsZH) && len(choices) < choiceCount; i++ {
		choices = append(choices, models.ChoicePair{
			EN: exp.DistractorsEN[i],
			ZH: exp.DistractorsZH[i],
		})
	}
	for len(choices) < choiceCount {
		choices = append(choices, paddingChoice)
	}

	rng := wordRand(word.Word)
	rng.Shuffle(len(choices), func(i, j int) {
		choices[i], choices[j] = choices[j], choices[i]
	})

	sentence := ""
	if len(exp.Examples) > 0 {
		sentence = exp.Examples[0].EN
	}
	if sentence == "" {
		sentence = FallbackSentence(word.Word, exp.POS)
	}

	wordZH := exp.WordZH
	if wordZH == "" {
		wordZH = exp.DefinitionZH
	}

	return &models.Question{
		WordID:        word.ID,
		Word:          word.Word,
		WordZH:        wordZH,
		Level:         NormalizeLevel(word.Level),
		Sentence:      sentence,
		QuestionText:  fmt.Sprintf("What does %q mean?", word.Word),
		Choices:       choices,
		CorrectAnswer: correct,
		DefinitionEN:  exp.DefinitionEN,
		DefinitionZH:  exp.DefinitionZH,
		GeneratedAt:   now,
	}
}

// FallbackQuestion synthesizes a servable question from the word alone. It is
// deterministic per word and marked as fallback content; it is what the
// learner sees when generation fails or times out.
func FallbackQuestion(word models.Word, now time.Time) *models.Question {
	correct := models.ChoicePair{
		EN: fmt.Sprintf("A word meaning related to %s", word.Word),
		ZH: fmt.Sprintf("与%s相关的词", word.Word),
	}

	choices := []models.ChoicePair{
		correct,
		{EN: "Something completely different", ZH: "完全不同的东西"},
		{EN: "An unrelated concept", ZH: "不相关的概念"},
		{EN: "A different meaning entirely", ZH: "完全不同的含义"},
	}

	rng := wordRand(word.Word)
	rng.Shuffle(len(choices), func(i, j int) {
		choices[i], choices[j] = choices[j], choices[i]
	})

	wordZH := word.Word
	if len(word.Word) > 2 {
		wordZH = word.Word[:2]
	}

	return &models.Question{
		WordID:        word.ID,
		Word:          word.Word,
		WordZH:        wordZH,
		Level:         NormalizeLevel(word.Level),
		Sentence:      FallbackSentence(word.Word, nil),
		QuestionText:  fmt.Sprintf("What does %q mean?", word.Word),
		Choices:       choices,
		CorrectAnswer: correct,
		DefinitionEN:  correct.EN,
		DefinitionZH:  correct.ZH,
		Fallback:      true,
		GeneratedAt:   now,
	}
}

var sentenceTemplates = map[string][]string{
	"common": {
		"My family likes to talk about '%s'.",
		"We learned about '%s' in class today.",
		"The teacher gave an example with '%s'.",
		"Many people use '%s' every day.",
		"I saw the word '%s' in a book.",
		"This question is about '%s'.",
		"Can you explain what '%s' means?",
		"People often discuss '%s' in daily life.",
	},
	"verb": {
		"People often '%s' after school.",
		"They decided to '%s' together.",
		"Try to '%s' carefully in this task.",
		"Sometimes we need to '%s' to solve problems.",
	},
	"adjective": {
		"It was a very '%s' idea.",
		"The story sounds quite '%s'.",
		"Her answer seems '%s' to me.",
		"That looks rather '%s'.",
	},
	"adverb": {
		"She spoke '%s' to make everything clear.",
		"Please work '%s' to avoid mistakes.",
		"They moved '%s' through the hallway.",
		"He answered '%s' during the test.",
	},
	"noun": {
		"Everyone was talking about '%s'.",
		"The museum had an exhibit about '%s'.",
		"I read an article on '%s' yesterday.",
		"We found more information about '%s'.",
	},
}

// FallbackSentence produces a templated example sentence for a word. The word
// is quoted to sidestep article and inflection issues, and the choice of
// template is seeded by the word so it stays stable across sessions.
func FallbackSentence(word string, posTags []string) string {
	templates := sentenceTemplates["common"]
	for _, pos := range posTags {
		switch pos {
		case "v", "verb":
			templates = sentenceTemplates["verb"]
		case "adj", "adjective":
			templates = sentenceTemplates["adjective"]
		case "adv", "adverb":
			templates = sentenceTemplates["adverb"]
		case "n", "noun":
			templates = sentenceTemplates["noun"]
		default:
			continue
		}
		break
	}

	rng := wordRand(word)
	return fmt.Sprintf(templates[rng.Intn(len(templates))], word)
}
