package generator

import (
	"context"
	"fmt"
)

// MockGenerator produces deterministic canned explanations without any API
// calls. It is the default when no API key is configured, and doubles as the
// offline development mode.
type MockGenerator struct{}

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

type cannedDef struct {
	en, zh, wordZH string
	pos            string
}

var cannedDefs = map[string]cannedDef{
	"apple": {"A round red or green fruit that grows on trees", "一种生长在树上的红色或绿色圆形水果", "苹果", "noun"},
	"book":  {"A written work with pages that you can read", "有页面可以阅读的书面作品", "书", "noun"},
	"happy": {"Feeling pleased, joyful, or content", "感到高兴、快乐或满足", "快乐", "adjective"},
	"run":   {"To move quickly on foot", "用脚快速移动", "跑", "verb"},
	"house": {"A building where people live", "人们居住的建筑物", "房子", "noun"},
}

func (m *MockGenerator) Generate(_ context.Context, word, level string) (*Explanation, error) {
	def, ok := cannedDefs[word]
	if !ok {
		wordZH := word
		if len(word) > 2 {
			wordZH = word[:2]
		}
		def = cannedDef{
			en:     fmt.Sprintf("A word related to %s", word),
			zh:     fmt.Sprintf("与%s相关的词", word),
			wordZH: wordZH,
			pos:    "noun",
		}
	}

	return &Explanation{
		Word:         word,
		WordZH:       def.wordZH,
		POS:          []string{def.pos},
		DefinitionEN: def.en,
		DefinitionZH: def.zh,
		Examples: []Example{
			{EN: fmt.Sprintf("I like the %s.", word), ZH: fmt.Sprintf("我喜欢%s。", word)},
		},
		DistractorsEN: []string{
			"Something completely unrelated to this word",
			"A different concept that is not correct",
			"An incorrect meaning for this term",
		},
		DistractorsZH: []string{
			"与这个词完全无关的东西",
			"不正确的不同概念",
			"这个词的错误含义",
		},
	}, nil
}
