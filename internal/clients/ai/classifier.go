// Package ai asks an OpenAI-compatible completion endpoint which achievement
// marks finishing a game's main story.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dom/game-insights/internal/clients/throttle"
	openai "github.com/sashabaranov/go-openai"
)

// ErrClassification marks a failed completion request. A response that says
// NONE (or contains no usable text) is a successful none result, not an
// error.
var ErrClassification = errors.New("classification error")

const (
	defaultModel = "gpt-4o-mini"

	// maxGuideRunes bounds how much guide text is appended to the prompt.
	maxGuideRunes = 8000
	// maxOutputTokens bounds the answer; achievement names are short.
	maxOutputTokens = 20
)

const systemPrompt = "You label the single achievement that marks completing the main story/campaign. " +
	"Respond ONLY with that exact achievement name. If no achievement clearly represents " +
	"finishing the main story, reply with NONE. Do not add quotes or any extra text."

// AchievementInput is one achievement as presented to the model.
type AchievementInput struct {
	Name           string
	Description    string
	CompletionRate *float64
}

// Candidate is the model's verdict. None is true when the model explicitly
// answered NONE or produced no usable text; otherwise Name carries the raw
// answer verbatim. Matching Name against stored achievements is the
// caller's responsibility.
type Candidate struct {
	Name string
	None bool
}

type completionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Classifier struct {
	client  completionClient
	model   string
	limiter *throttle.Limiter
}

type Config struct {
	APIKey          string
	Model           string
	RequestInterval time.Duration
}

func NewClassifier(cfg Config) (*Classifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: API key is not configured", ErrClassification)
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &Classifier{
		client:  openai.NewClient(cfg.APIKey),
		model:   model,
		limiter: throttle.NewLimiter(cfg.RequestInterval),
	}, nil
}

// IdentifyMainStoryAchievement prompts the model with the achievement list
// and the first non-empty guide text, pinned to deterministic sampling.
func (c *Classifier) IdentifyMainStoryAchievement(ctx context.Context, gameTitle string, achievements []AchievementInput, guideTexts []string) (Candidate, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Candidate{}, err
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildUserPrompt(gameTitle, achievements, guideTexts)},
		},
		Temperature: 0,
		MaxTokens:   maxOutputTokens,
	})
	if err != nil {
		return Candidate{}, fmt.Errorf("%w: completion request failed: %v", ErrClassification, err)
	}

	if len(resp.Choices) == 0 {
		return Candidate{None: true}, nil
	}
	return ParseResponse(resp.Choices[0].Message.Content), nil
}

// BuildUserPrompt lists each achievement as "- name: description (global
// completion X.XX%)", the rate line only when one is known, and appends the
// first non-empty guide text truncated to the prompt budget.
func BuildUserPrompt(gameTitle string, achievements []AchievementInput, guideTexts []string) string {
	lines := make([]string, 0, len(achievements))
	for _, ach := range achievements {
		desc := ach.Description
		if desc == "" {
			desc = "No description"
		}
		line := fmt.Sprintf("- %s: %s", ach.Name, desc)
		if ach.CompletionRate != nil {
			line += fmt.Sprintf(" (global completion %.2f%%)", *ach.CompletionRate)
		}
		lines = append(lines, line)
	}

	sections := []string{
		"Game title: " + gameTitle,
		"Achievements:",
		strings.Join(lines, "\n"),
	}

	if guide := firstNonEmpty(guideTexts); guide != "" {
		sections = append(sections, "Guide content (first guide only):", truncateRunes(guide, maxGuideRunes))
	}

	return strings.Join(sections, "\n\n")
}

// ParseResponse recovers the structured decision from free-form model
// output: first line only, quotes and whitespace stripped; empty or NONE
// (any case) means no main-story achievement.
func ParseResponse(content string) Candidate {
	line := content
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	line = strings.Trim(line, "\" '")
	if line == "" || strings.EqualFold(line, "NONE") {
		return Candidate{None: true}
	}
	return Candidate{Name: line}
}

func firstNonEmpty(texts []string) string {
	for _, text := range texts {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
