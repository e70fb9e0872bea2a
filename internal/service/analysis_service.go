package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/dom/game-insights/internal/clients/ai"
	"github.com/dom/game-insights/internal/domain"
	"github.com/dom/game-insights/internal/repository"
)

// GuideExtractor resolves a guide URL into text plus a heading count.
type GuideExtractor interface {
	FetchAndParse(ctx context.Context, url string) (text string, sectionCount int, err error)
}

// MainStoryClassifier names the achievement marking main-story completion.
type MainStoryClassifier interface {
	IdentifyMainStoryAchievement(ctx context.Context, gameTitle string, achievements []ai.AchievementInput, guideTexts []string) (ai.Candidate, error)
}

// CompletionTimeSource looks up the main-story hours estimate for a title.
type CompletionTimeSource interface {
	FetchMainStoryHours(ctx context.Context, title string) (float64, error)
}

// AnalysisResult is the ephemeral outcome of one pipeline run. Notes is the
// ordered diagnostic trail accumulated across all stages.
type AnalysisResult struct {
	Game                 *domain.Game
	MainStoryAchievement *domain.Achievement
	MainStoryHours       *float64
	EngagementScore      *float64
	Notes                []string
}

// AnalysisService drives the four-stage engagement pipeline. Stages degrade
// independently: adapter failures become notes, never errors, and every run
// appends exactly one engagement score row. Only persistence failures
// propagate out of Analyze.
//
// The adapters are pooled across invocations, so their rate limiters are
// shared; concurrent Analyze calls on the same game should be serialized by
// the caller because the classification stage rewrites the achievement
// flags in full.
type AnalysisService struct {
	guideRepo   repository.GuideRepository
	achieveRepo repository.AchievementRepository
	timeRepo    repository.CompletionTimeRepository
	scoreRepo   repository.EngagementScoreRepository

	extractor  GuideExtractor
	classifier MainStoryClassifier // nil when no generation API key is configured
	timeSource CompletionTimeSource

	fallbackCompletionRate float64
}

func NewAnalysisService(
	repos *repository.Repositories,
	extractor GuideExtractor,
	classifier MainStoryClassifier,
	timeSource CompletionTimeSource,
	fallbackCompletionRate float64,
) *AnalysisService {
	return &AnalysisService{
		guideRepo:              repos.Guide,
		achieveRepo:            repos.Achievement,
		timeRepo:               repos.CompletionTime,
		scoreRepo:              repos.EngagementScore,
		extractor:              extractor,
		classifier:             classifier,
		timeSource:             timeSource,
		fallbackCompletionRate: fallbackCompletionRate,
	}
}

// Analyze runs the pipeline against an already-loaded game aggregate:
// guide resolution, classification, completion-time lookup, then score
// computation. Each stage commits its own writes so partial progress
// survives a crash or cancellation.
func (s *AnalysisService) Analyze(ctx context.Context, game *domain.Game) (*AnalysisResult, error) {
	var notes []string

	guideTexts, guideNotes, err := s.resolveGuides(ctx, game)
	if err != nil {
		return nil, err
	}
	notes = append(notes, guideNotes...)

	mainStory, aiNotes, err := s.classify(ctx, game, guideTexts)
	if err != nil {
		return nil, err
	}
	notes = append(notes, aiNotes...)

	hours, hltbNotes := s.lookupHours(ctx, game)
	notes = append(notes, hltbNotes...)
	if err := s.timeRepo.Upsert(ctx, game.ID, hours); err != nil {
		return nil, fmt.Errorf("upserting completion time: %w", err)
	}

	score, notes, err := s.recordScore(ctx, game, mainStory, hours, notes)
	if err != nil {
		return nil, err
	}

	return &AnalysisResult{
		Game:                 game,
		MainStoryAchievement: mainStory,
		MainStoryHours:       hours,
		EngagementScore:      score,
		Notes:                notes,
	}, nil
}

// resolveGuides picks the first guide with a URL and produces its text,
// reusing cached parsed content when present so re-analysis never refetches.
func (s *AnalysisService) resolveGuides(ctx context.Context, game *domain.Game) ([]string, []string, error) {
	var texts, notes []string

	var guide *domain.Guide
	for i := range game.Guides {
		if game.Guides[i].URL != nil && *game.Guides[i].URL != "" {
			guide = &game.Guides[i]
			break
		}
	}
	if guide == nil {
		return texts, notes, nil
	}

	if len(guide.ParsedContent) > 0 {
		for _, content := range guide.ParsedContent {
			texts = append(texts, content.Content)
		}
		return texts, notes, nil
	}

	text, sections, err := s.extractor.FetchAndParse(ctx, *guide.URL)
	if err != nil {
		notes = append(notes, fmt.Sprintf("Guide '%s' failed: %v", guide.Title, err))
		return texts, notes, nil
	}

	parsed := &domain.ParsedGuideContent{
		GuideID:      guide.ID,
		Content:      text,
		SectionCount: sections,
	}
	if err := s.guideRepo.SaveParsedContent(ctx, parsed); err != nil {
		return nil, nil, fmt.Errorf("saving parsed guide content: %w", err)
	}
	guide.ParsedContent = append(guide.ParsedContent, *parsed)
	texts = append(texts, text)
	return texts, notes, nil
}

// classify asks the model for the main-story achievement and rewrites the
// flags across the game's achievement list. An unmatched model answer
// clears every flag and degrades to none.
func (s *AnalysisService) classify(ctx context.Context, game *domain.Game, guideTexts []string) (*domain.Achievement, []string, error) {
	var notes []string

	if len(game.Achievements) == 0 {
		notes = append(notes, "No achievements to analyze.")
		return nil, notes, nil
	}
	if s.classifier == nil {
		notes = append(notes, "OpenAI key missing; skipped main story detection.")
		return nil, notes, nil
	}

	inputs := make([]ai.AchievementInput, len(game.Achievements))
	for i, ach := range game.Achievements {
		input := ai.AchievementInput{Name: ach.Name, CompletionRate: ach.CompletionRate}
		if ach.Description != nil {
			input.Description = *ach.Description
		}
		inputs[i] = input
	}

	candidate, err := s.classifier.IdentifyMainStoryAchievement(ctx, game.Title, inputs, guideTexts)
	if err != nil {
		notes = append(notes, err.Error())
		return nil, notes, nil
	}

	if candidate.None {
		notes = append(notes, "No obvious main-story achievement detected.")
		return nil, notes, nil
	}

	if err := s.achieveRepo.SetMainStory(ctx, game.ID, &candidate.Name); err != nil {
		return nil, nil, fmt.Errorf("setting main-story achievement: %w", err)
	}

	var mainStory *domain.Achievement
	for i := range game.Achievements {
		matched := game.Achievements[i].Name == candidate.Name
		game.Achievements[i].IsMainStoryCompletion = matched
		if matched && mainStory == nil {
			mainStory = &game.Achievements[i]
		}
	}
	if mainStory == nil {
		notes = append(notes, "Model suggestion did not match stored achievements.")
	}
	return mainStory, notes, nil
}

func (s *AnalysisService) lookupHours(ctx context.Context, game *domain.Game) (*float64, []string) {
	var notes []string
	hours, err := s.timeSource.FetchMainStoryHours(ctx, game.Title)
	if err != nil {
		notes = append(notes, err.Error())
		return nil, notes
	}
	return &hours, notes
}

// recordScore computes the engagement score when both inputs resolved and
// always appends one score row, even for a degraded zero-score run.
func (s *AnalysisService) recordScore(ctx context.Context, game *domain.Game, mainStory *domain.Achievement, hours *float64, notes []string) (*float64, []string, error) {
	var score *float64

	if mainStory != nil && hours != nil {
		completion := s.fallbackCompletionRate
		if mainStory.CompletionRate != nil {
			completion = *mainStory.CompletionRate
		} else {
			notes = append(notes, fmt.Sprintf(
				"Using fallback %.0f%% completion rate because Steam did not provide one.",
				s.fallbackCompletionRate))
		}
		value := EngagementScoreFormula(*hours, completion)
		score = &value
	} else {
		var missing []string
		if mainStory == nil {
			missing = append(missing, "main-story achievement")
		}
		if hours == nil {
			missing = append(missing, "HLTB main story time")
		}
		notes = append(notes, "Cannot compute engagement score without "+strings.Join(missing, " and "))
	}

	row := &domain.EngagementScore{
		GameID: game.ID,
		Method: ScoreMethod,
	}
	if score != nil {
		row.Score = *score
	}
	if len(notes) > 0 {
		joined := strings.Join(notes, "; ")
		row.Notes = &joined
	}
	if err := s.scoreRepo.Append(ctx, row); err != nil {
		return nil, nil, fmt.Errorf("appending engagement score: %w", err)
	}
	return score, notes, nil
}
