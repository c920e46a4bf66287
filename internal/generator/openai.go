package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/lexiboost/lexiboost/internal/logger"
)

// OpenAIConfig configures the OpenAI-backed generator.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenAIGenerator produces explanations via the OpenAI chat completion API.
// It also works against OpenAI-compatible endpoints via BaseURL.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
	log    *logger.Logger
}

// NewOpenAIGenerator creates an OpenAI-backed Generator.
func NewOpenAIGenerator(cfg OpenAIConfig) (*OpenAIGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		log:    logger.Default().WithPrefix("openai"),
	}, nil
}

const systemPrompt = `You create vocabulary quiz content for English learners.
Given a word and a difficulty level, respond with a single JSON object and
nothing else, using exactly these keys:
{"word": string, "word_zh": string, "pos": [string], "definition_en": string,
"definition_zh": string, "examples": [{"en": string, "zh": string}],
"distractors_en": [string, string, string], "distractors_zh": [string, string, string]}
Definitions must fit the difficulty level. Distractors must be plausible but
clearly wrong definitions for the word, and must align pairwise across
languages.`

func (g *OpenAIGenerator) Generate(ctx context.Context, word, level string) (*Explanation, error) {
	g.log.Debug("generating explanation: word=%q level=%s", word, level)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("word: %s\nlevel: %s", word, NormalizeLevel(level))},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)

	var exp Explanation
	if err := json.Unmarshal([]byte(content), &exp); err != nil {
		return nil, fmt.Errorf("decode explanation: %w", err)
	}
	if err := validate(&exp, word); err != nil {
		return nil, err
	}

	g.log.Debug("explanation generated: word=%q distractors=%d", word, len(exp.DistractorsEN))
	return &exp, nil
}

// validate rejects malformed responses so they are treated uniformly as
// generation errors by the caller.
func validate(exp *Explanation, word string) error {
	if exp.DefinitionEN == "" {
		return fmt.Errorf("explanation for %q missing definition_en", word)
	}
	if exp.Word == "" {
		exp.Word = word
	}
	if len(exp.DistractorsEN) == 0 {
		return fmt.Errorf("explanation for %q missing distractors", word)
	}
	return nil
}
