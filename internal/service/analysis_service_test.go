package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dom/game-insights/internal/clients/ai"
	"github.com/dom/game-insights/internal/domain"
	"github.com/dom/game-insights/internal/repository/postgres"
	"github.com/dom/game-insights/internal/service"
	"github.com/dom/game-insights/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExtractor struct {
	text     string
	sections int
	err      error
	calls    int
}

func (s *stubExtractor) FetchAndParse(_ context.Context, _ string) (string, int, error) {
	s.calls++
	return s.text, s.sections, s.err
}

type stubClassifier struct {
	candidate  ai.Candidate
	err        error
	calls      int
	guideTexts []string
}

func (s *stubClassifier) IdentifyMainStoryAchievement(_ context.Context, _ string, _ []ai.AchievementInput, guideTexts []string) (ai.Candidate, error) {
	s.calls++
	s.guideTexts = guideTexts
	return s.candidate, s.err
}

type stubTimeSource struct {
	hours float64
	err   error
}

func (s *stubTimeSource) FetchMainStoryHours(_ context.Context, _ string) (float64, error) {
	return s.hours, s.err
}

func TestAnalysisService_FullPipeline(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	extractor := &stubExtractor{text: "Beat the final boss.", sections: 3}
	classifier := &stubClassifier{candidate: ai.Candidate{Name: "Credits"}}
	timeSource := &stubTimeSource{hours: 8.5}
	svc := service.NewAnalysisService(repos, extractor, classifier, timeSource, 50.0)

	game := testutil.NewGameBuilder().
		WithTitle("Stray Path").
		WithAchievement("First Steps", "Leave the tutorial", testutil.FloatPtr(92.0)).
		WithAchievement("Credits", "Finish the story", testutil.FloatPtr(42.5)).
		WithGuide("Full walkthrough", "https://example.com/guide").
		Build(t, testDB.DB)

	result, err := svc.Analyze(ctx, game)
	require.NoError(t, err)

	require.NotNil(t, result.MainStoryAchievement)
	assert.Equal(t, "Credits", result.MainStoryAchievement.Name)
	require.NotNil(t, result.MainStoryHours)
	assert.InDelta(t, 8.5, *result.MainStoryHours, 1e-9)
	require.NotNil(t, result.EngagementScore)
	assert.InDelta(t, service.EngagementScoreFormula(8.5, 42.5), *result.EngagementScore, 1e-9)
	assert.Empty(t, result.Notes)

	// Classification was persisted, not just reflected in memory.
	achievements, err := repos.Achievement.GetByGameID(ctx, game.ID)
	require.NoError(t, err)
	for _, ach := range achievements {
		assert.Equal(t, ach.Name == "Credits", ach.IsMainStoryCompletion, ach.Name)
	}

	completion, err := repos.CompletionTime.GetByGameID(ctx, game.ID)
	require.NoError(t, err)
	require.NotNil(t, completion)
	require.NotNil(t, completion.MainStoryHours)
	assert.InDelta(t, 8.5, *completion.MainStoryHours, 1e-9)

	scores, err := repos.EngagementScore.GetByGameID(ctx, game.ID)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, service.ScoreMethod, scores[0].Method)
	assert.InDelta(t, *result.EngagementScore, scores[0].Score, 1e-9)

	// The freshly extracted guide text was cached for the next run.
	guides, err := repos.Guide.GetByGameID(ctx, game.ID)
	require.NoError(t, err)
	require.Len(t, guides, 1)
	require.Len(t, guides[0].ParsedContent, 1)
	assert.Equal(t, "Beat the final boss.", guides[0].ParsedContent[0].Content)
	assert.Equal(t, 3, guides[0].ParsedContent[0].SectionCount)
	assert.Equal(t, 1, extractor.calls)
}

func TestAnalysisService_CachedGuideSkipsExtraction(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	extractor := &stubExtractor{text: "should not be used"}
	classifier := &stubClassifier{candidate: ai.Candidate{None: true}}
	svc := service.NewAnalysisService(repos, extractor, classifier, &stubTimeSource{hours: 12}, 50.0)

	game := testutil.NewGameBuilder().
		WithAchievement("Credits", "Finish the story", testutil.FloatPtr(40.0)).
		WithCachedGuide("Walkthrough", "https://example.com/guide", "Previously parsed text.").
		Build(t, testDB.DB)

	_, err := svc.Analyze(ctx, game)
	require.NoError(t, err)

	assert.Equal(t, 0, extractor.calls)
	require.Equal(t, 1, classifier.calls)
	assert.Equal(t, []string{"Previously parsed text."}, classifier.guideTexts)
}

func TestAnalysisService_GuideFailureIsANote(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	extractor := &stubExtractor{err: errors.New("status 404")}
	classifier := &stubClassifier{candidate: ai.Candidate{Name: "Credits"}}
	svc := service.NewAnalysisService(repos, extractor, classifier, &stubTimeSource{hours: 10}, 50.0)

	game := testutil.NewGameBuilder().
		WithAchievement("Credits", "Finish the story", testutil.FloatPtr(50.0)).
		WithGuide("Broken guide", "https://example.com/gone").
		Build(t, testDB.DB)

	result, err := svc.Analyze(ctx, game)
	require.NoError(t, err)

	require.Len(t, result.Notes, 1)
	assert.Contains(t, result.Notes[0], "Guide 'Broken guide' failed")
	// The rest of the pipeline still ran.
	require.NotNil(t, result.EngagementScore)
	assert.Empty(t, classifier.guideTexts)
}

func TestAnalysisService_ClassifierDegradations(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	tests := []struct {
		name       string
		classifier service.MainStoryClassifier
		wantNote   string
	}{
		{
			name:       "classifier error",
			classifier: &stubClassifier{err: errors.New("classification error: rate limited")},
			wantNote:   "rate limited",
		},
		{
			name:       "model answers none",
			classifier: &stubClassifier{candidate: ai.Candidate{None: true}},
			wantNote:   "No obvious main-story achievement detected.",
		},
		{
			name:       "answer matches nothing",
			classifier: &stubClassifier{candidate: ai.Candidate{Name: "Ghost Achievement"}},
			wantNote:   "Model suggestion did not match stored achievements.",
		},
		{
			name:       "no key configured",
			classifier: nil,
			wantNote:   "OpenAI key missing; skipped main story detection.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := service.NewAnalysisService(repos, &stubExtractor{}, tt.classifier, &stubTimeSource{hours: 9}, 50.0)

			game := testutil.NewGameBuilder().
				WithAchievement("Credits", "Finish the story", testutil.FloatPtr(50.0)).
				Build(t, testDB.DB)

			result, err := svc.Analyze(ctx, game)
			require.NoError(t, err)

			assert.Nil(t, result.MainStoryAchievement)
			assert.Nil(t, result.EngagementScore)
			require.NotEmpty(t, result.Notes)
			assert.Contains(t, result.Notes[0], tt.wantNote)
			assert.Contains(t, result.Notes[len(result.Notes)-1],
				"Cannot compute engagement score without main-story achievement")

			// Degraded runs still upsert the completion time and append a
			// zero score row.
			completion, err := repos.CompletionTime.GetByGameID(ctx, game.ID)
			require.NoError(t, err)
			require.NotNil(t, completion)

			scores, err := repos.EngagementScore.GetByGameID(ctx, game.ID)
			require.NoError(t, err)
			require.Len(t, scores, 1)
			assert.Zero(t, scores[0].Score)
			require.NotNil(t, scores[0].Notes)
			assert.Contains(t, *scores[0].Notes, tt.wantNote)
		})
	}
}

func TestAnalysisService_NoAchievements(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	classifier := &stubClassifier{candidate: ai.Candidate{Name: "Credits"}}
	svc := service.NewAnalysisService(repos, &stubExtractor{}, classifier, &stubTimeSource{hours: 9}, 50.0)

	game := testutil.NewGameBuilder().Build(t, testDB.DB)

	result, err := svc.Analyze(ctx, game)
	require.NoError(t, err)

	assert.Equal(t, 0, classifier.calls)
	require.NotEmpty(t, result.Notes)
	assert.Equal(t, "No achievements to analyze.", result.Notes[0])
	assert.Nil(t, result.EngagementScore)
}

func TestAnalysisService_UnmatchedAnswerClearsPreviousFlag(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	game := testutil.NewGameBuilder().
		WithAchievement("Credits", "Finish the story", testutil.FloatPtr(50.0)).
		Build(t, testDB.DB)

	name := "Credits"
	require.NoError(t, repos.Achievement.SetMainStory(ctx, game.ID, &name))

	classifier := &stubClassifier{candidate: ai.Candidate{Name: "Something Else"}}
	svc := service.NewAnalysisService(repos, &stubExtractor{}, classifier, &stubTimeSource{hours: 9}, 50.0)

	result, err := svc.Analyze(ctx, game)
	require.NoError(t, err)
	assert.Nil(t, result.MainStoryAchievement)

	achievements, err := repos.Achievement.GetByGameID(ctx, game.ID)
	require.NoError(t, err)
	require.Len(t, achievements, 1)
	assert.False(t, achievements[0].IsMainStoryCompletion)
}

func TestAnalysisService_FallbackCompletionRate(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	classifier := &stubClassifier{candidate: ai.Candidate{Name: "Credits"}}
	svc := service.NewAnalysisService(repos, &stubExtractor{}, classifier, &stubTimeSource{hours: 10}, 50.0)

	game := testutil.NewGameBuilder().
		WithAchievement("Credits", "Finish the story", nil).
		Build(t, testDB.DB)

	result, err := svc.Analyze(ctx, game)
	require.NoError(t, err)

	require.NotNil(t, result.EngagementScore)
	assert.InDelta(t, service.EngagementScoreFormula(10, 50), *result.EngagementScore, 1e-9)
	require.NotEmpty(t, result.Notes)
	assert.Contains(t, result.Notes[0], "Using fallback 50% completion rate")
}

func TestAnalysisService_HLTBFailure(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	classifier := &stubClassifier{candidate: ai.Candidate{Name: "Credits"}}
	timeSource := &stubTimeSource{err: errors.New("hltb source error: no results")}
	svc := service.NewAnalysisService(repos, &stubExtractor{}, classifier, timeSource, 50.0)

	game := testutil.NewGameBuilder().
		WithAchievement("Credits", "Finish the story", testutil.FloatPtr(50.0)).
		Build(t, testDB.DB)

	result, err := svc.Analyze(ctx, game)
	require.NoError(t, err)

	assert.Nil(t, result.MainStoryHours)
	assert.Nil(t, result.EngagementScore)
	assert.Contains(t, result.Notes[0], "no results")
	assert.Contains(t, result.Notes[len(result.Notes)-1],
		"Cannot compute engagement score without HLTB main story time")

	// The upsert still ran, clearing any estimate.
	completion, err := repos.CompletionTime.GetByGameID(ctx, game.ID)
	require.NoError(t, err)
	require.NotNil(t, completion)
	assert.Nil(t, completion.MainStoryHours)
}

func TestAnalysisService_ScoresAreAppendOnly(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	classifier := &stubClassifier{candidate: ai.Candidate{Name: "Credits"}}
	svc := service.NewAnalysisService(repos, &stubExtractor{}, classifier, &stubTimeSource{hours: 11}, 50.0)

	game := testutil.NewGameBuilder().
		WithAchievement("Credits", "Finish the story", testutil.FloatPtr(60.0)).
		Build(t, testDB.DB)

	for i := 0; i < 3; i++ {
		_, err := svc.Analyze(ctx, game)
		require.NoError(t, err)
	}

	scores, err := repos.EngagementScore.GetByGameID(ctx, game.ID)
	require.NoError(t, err)
	assert.Len(t, scores, 3)

	// The completion time stays a single upserted row per game.
	var count int64
	require.NoError(t, testDB.DB.Model(&domain.CompletionTime{}).
		Where("game_id = ?", game.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
