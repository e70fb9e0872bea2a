package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
)

const apiBase = "http://localhost:8080/api/v1"

type ImportResult struct {
	AppID             int64  `json:"appId"`
	GameID            string `json:"gameId"`
	CreatedGame       bool   `json:"createdGame"`
	AchievementsAdded int    `json:"achievementsAdded"`
	GuidesAdded       int    `json:"guidesAdded"`
	Status            string `json:"status"`
	Error             string `json:"error"`
}

type ImportSummary struct {
	Results []ImportResult `json:"results"`
}

type AnalysisResponse struct {
	GameID               string   `json:"gameId"`
	MainStoryAchievement *string  `json:"mainStoryAchievement"`
	HLTBMainStoryHours   *float64 `json:"hltbMainStoryHours"`
	EngagementScore      *float64 `json:"engagementScore"`
	Notes                []string `json:"notes"`
}

func importApps(appIDsText string) (*ImportSummary, error) {
	body, _ := json.Marshal(map[string]string{
		"appIdsText": appIDsText,
	})

	resp, err := http.Post(apiBase+"/steam/import", "application/json", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("import failed (%d): %s", resp.StatusCode, string(bodyBytes))
	}

	var result ImportSummary
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}
	return &result, nil
}

func analyzeGame(gameID string) (*AnalysisResponse, error) {
	resp, err := http.Post(apiBase+"/games/"+gameID+"/analyze", "application/json", nil)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("analyze failed (%d): %s", resp.StatusCode, string(bodyBytes))
	}

	var result AnalysisResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}
	return &result, nil
}

func main() {
	// Portal 2 and Undertale unless app ids are given on the command line.
	appIDsText := "620, 391540"
	if len(os.Args) > 1 {
		appIDsText = os.Args[1]
	}

	fmt.Printf("Importing app ids: %s\n", appIDsText)
	summary, err := importApps(appIDsText)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
		os.Exit(1)
	}

	for _, result := range summary.Results {
		if result.Status == "error" {
			fmt.Printf("  ✗ App %d: %s\n", result.AppID, result.Error)
			continue
		}
		fmt.Printf("  ✓ App %d: %d achievements, %d guides (%s)\n",
			result.AppID, result.AchievementsAdded, result.GuidesAdded, result.Status)
	}

	fmt.Println("\n" + "============================================================")
	fmt.Println("ANALYSIS")
	fmt.Println("============================================================")

	for _, result := range summary.Results {
		if result.GameID == "" {
			continue
		}

		analysis, err := analyzeGame(result.GameID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to analyze app %d: %v\n", result.AppID, err)
			continue
		}

		fmt.Printf("\nApp %d (game %s):\n", result.AppID, analysis.GameID)
		if analysis.MainStoryAchievement != nil {
			fmt.Printf("  Main story achievement: %s\n", *analysis.MainStoryAchievement)
		}
		if analysis.HLTBMainStoryHours != nil {
			fmt.Printf("  HLTB main story: %.1f h\n", *analysis.HLTBMainStoryHours)
		}
		if analysis.EngagementScore != nil {
			fmt.Printf("  Engagement score: %.1f\n", *analysis.EngagementScore)
		}
		for _, note := range analysis.Notes {
			fmt.Printf("  Note: %s\n", note)
		}
	}
}
