package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/dom/game-insights/internal/clients/steam"
	"github.com/dom/game-insights/internal/domain"
	"github.com/dom/game-insights/internal/repository"
	"github.com/dom/game-insights/internal/repository/postgres"
	"github.com/dom/game-insights/internal/service"
	"github.com/dom/game-insights/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSteamSource struct {
	schemas   map[int64]*steam.GameSchema
	schemaErr map[int64]error
	guides    map[int64][]steam.Guide
	guidesErr map[int64]error
}

func (f *fakeSteamSource) FetchAchievements(_ context.Context, appID int64) (*steam.GameSchema, error) {
	if err := f.schemaErr[appID]; err != nil {
		return nil, err
	}
	schema, ok := f.schemas[appID]
	if !ok {
		return nil, errors.New("steam source error: no schema")
	}
	return schema, nil
}

func (f *fakeSteamSource) FetchGuides(_ context.Context, appID int64) ([]steam.Guide, error) {
	if err := f.guidesErr[appID]; err != nil {
		return nil, err
	}
	return f.guides[appID], nil
}

func schemaWith(gameName string, names ...string) *steam.GameSchema {
	schema := &steam.GameSchema{GameName: gameName}
	for _, name := range names {
		schema.Achievements = append(schema.Achievements, steam.Achievement{Name: name})
	}
	return schema
}

func TestParseAppIDs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []int64
	}{
		{"comma separated", "620, 367520", []int64{620, 367520}},
		{"newline separated", "620\n367520\r\n105600", []int64{620, 367520, 105600}},
		{"duplicates dropped", "620,620,367520,620", []int64{620, 367520}},
		{"garbage skipped", "620, portal, , 367520", []int64{620, 367520}},
		{"empty", "  \n ,", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.ParseAppIDs(tt.input))
		})
	}
}

func TestImportService_ImportFromSteam(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	desc := "Reach the surface"
	source := &fakeSteamSource{
		schemas: map[int64]*steam.GameSchema{
			620: {
				GameName: "Portal 2",
				Achievements: []steam.Achievement{
					{Name: "Wake Up Call", Description: &desc, CompletionRate: testutil.FloatPtr(88.2)},
					{Name: "Lunacy", CompletionRate: testutil.FloatPtr(41.0)},
				},
			},
		},
		schemaErr: map[int64]error{42: errors.New("steam source error: schema request failed")},
		guides: map[int64][]steam.Guide{
			620: {
				{Title: "Full walkthrough", URL: "https://steamcommunity.com/sharedfiles/filedetails/?id=1", Author: "someone"},
				{Title: "Speedrun notes", URL: "https://steamcommunity.com/sharedfiles/filedetails/?id=2"},
			},
		},
	}
	svc := service.NewImportService(repos, source)

	summary, err := svc.ImportFromSteam(ctx, "620, 42")
	require.NoError(t, err)
	require.Len(t, summary.Results, 2)

	ok := summary.Results[0]
	assert.EqualValues(t, 620, ok.AppID)
	assert.Equal(t, domain.ImportStatusOK, ok.Status)
	assert.True(t, ok.CreatedGame)
	assert.Equal(t, 2, ok.AchievementsAdded)
	assert.Equal(t, 2, ok.GuidesAdded)
	require.NotNil(t, ok.GameID)

	failed := summary.Results[1]
	assert.EqualValues(t, 42, failed.AppID)
	assert.Equal(t, domain.ImportStatusError, failed.Status)
	assert.Contains(t, failed.Error, "schema request failed")
	assert.Nil(t, failed.GameID)

	game, err := repos.Game.GetByID(ctx, *ok.GameID)
	require.NoError(t, err)
	assert.Equal(t, "Portal 2", game.Title)
	require.NotNil(t, game.SteamAppID)
	assert.EqualValues(t, 620, *game.SteamAppID)
	assert.Len(t, game.Achievements, 2)
	assert.Len(t, game.Guides, 2)

	// The run itself was recorded with the per-app outcomes.
	var records []domain.ImportRecord
	require.NoError(t, testDB.DB.Find(&records).Error)
	require.Len(t, records, 1)
	assert.Equal(t, "620, 42", records[0].AppIDs)
	var stored []service.ImportResult
	require.NoError(t, json.Unmarshal(records[0].Results, &stored))
	assert.Len(t, stored, 2)
}

func TestImportService_ReimportMergesByName(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	source := &fakeSteamSource{
		schemas: map[int64]*steam.GameSchema{
			620: {
				GameName: "Portal 2",
				Achievements: []steam.Achievement{
					{Name: "Wake Up Call", CompletionRate: testutil.FloatPtr(80.0)},
				},
			},
		},
		guides: map[int64][]steam.Guide{
			620: {{Title: "Walkthrough", URL: "https://example.com/guide"}},
		},
	}
	svc := service.NewImportService(repos, source)

	first, err := svc.ImportFromSteam(ctx, "620")
	require.NoError(t, err)
	require.Equal(t, domain.ImportStatusOK, first.Results[0].Status)

	// Second run: the known achievement gets a fresh rate plus one new
	// achievement, and the guide URL is already present.
	source.schemas[620].Achievements = []steam.Achievement{
		{Name: "Wake Up Call", CompletionRate: testutil.FloatPtr(85.5)},
		{Name: "Lunacy", CompletionRate: testutil.FloatPtr(40.0)},
	}

	second, err := svc.ImportFromSteam(ctx, "620")
	require.NoError(t, err)

	result := second.Results[0]
	assert.False(t, result.CreatedGame)
	assert.Equal(t, 1, result.AchievementsAdded)
	assert.Equal(t, 0, result.GuidesAdded)
	require.NotNil(t, result.GameID)
	assert.Equal(t, *first.Results[0].GameID, *result.GameID)

	achievements, err := repos.Achievement.GetByGameID(ctx, *result.GameID)
	require.NoError(t, err)
	require.Len(t, achievements, 2)
	byName := make(map[string]*float64)
	for _, ach := range achievements {
		byName[ach.Name] = ach.CompletionRate
	}
	require.NotNil(t, byName["Wake Up Call"])
	assert.InDelta(t, 85.5, *byName["Wake Up Call"], 1e-9)

	guides, err := repos.Guide.GetByGameID(ctx, *result.GameID)
	require.NoError(t, err)
	assert.Len(t, guides, 1)
}

func TestImportService_GuideFailureIsPartial(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	source := &fakeSteamSource{
		schemas:   map[int64]*steam.GameSchema{620: schemaWith("Portal 2", "Wake Up Call")},
		guidesErr: map[int64]error{620: errors.New("steam source error: guide search failed")},
	}
	svc := service.NewImportService(repos, source)

	summary, err := svc.ImportFromSteam(ctx, "620")
	require.NoError(t, err)

	result := summary.Results[0]
	assert.Equal(t, domain.ImportStatusPartial, result.Status)
	assert.Equal(t, 1, result.AchievementsAdded)
	assert.Contains(t, result.Error, "guide search failed")

	// Achievements survived the downgrade.
	require.NotNil(t, result.GameID)
	achievements, err := repos.Achievement.GetByGameID(ctx, *result.GameID)
	require.NoError(t, err)
	assert.Len(t, achievements, 1)
}

func TestImportService_NoUsableAppIDs(t *testing.T) {
	svc := service.NewImportService(&repository.Repositories{}, &fakeSteamSource{})

	_, err := svc.ImportFromSteam(context.Background(), "not numbers at all")
	assert.ErrorIs(t, err, domain.ErrNoAppIDs)
}
