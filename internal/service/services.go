package service

import (
	"log"

	"github.com/dom/game-insights/internal/clients/ai"
	"github.com/dom/game-insights/internal/clients/guides"
	"github.com/dom/game-insights/internal/clients/hltb"
	"github.com/dom/game-insights/internal/clients/steam"
	"github.com/dom/game-insights/internal/config"
	"github.com/dom/game-insights/internal/repository"
)

type Services struct {
	// Import is nil when no Steam API key is configured; the import
	// endpoint is unavailable in that case.
	Import   *ImportService
	Analysis *AnalysisService
}

func NewServices(repos *repository.Repositories, cfg *config.Config) *Services {
	services := &Services{}

	if cfg.SteamAPIKey != "" {
		steamClient, err := steam.NewClient(steam.Config{
			APIKey:          cfg.SteamAPIKey,
			RequestInterval: cfg.SteamRequestInterval,
		})
		if err != nil {
			log.Printf("ERROR [services.steam]: %v", err)
		} else {
			services.Import = NewImportService(repos, steamClient)
		}
	}

	extractor := guides.NewExtractor(guides.Config{
		SteamAPIKey:     cfg.SteamAPIKey,
		RequestInterval: cfg.GuideRequestInterval,
	})
	timeSource := hltb.NewClient(hltb.Config{
		RequestInterval: cfg.HLTBRequestInterval,
	})

	// A missing OpenAI key is not fatal: the classification stage degrades
	// to a skip-with-note.
	var classifier MainStoryClassifier
	if cfg.OpenAIAPIKey != "" {
		c, err := ai.NewClassifier(ai.Config{
			APIKey:          cfg.OpenAIAPIKey,
			Model:           cfg.OpenAIModel,
			RequestInterval: cfg.OpenAIRequestInterval,
		})
		if err != nil {
			log.Printf("ERROR [services.classifier]: %v", err)
		} else {
			classifier = c
		}
	}

	services.Analysis = NewAnalysisService(repos, extractor, classifier, timeSource, cfg.FallbackCompletionRate)
	return services
}
