package domain

import "errors"

// Lookup errors
var (
	ErrGameNotFound        = errors.New("game not found")
	ErrAchievementNotFound = errors.New("achievement not found")
	ErrGuideNotFound       = errors.New("guide not found")
)

// Import errors
var (
	ErrNoAppIDs          = errors.New("no valid Steam app IDs were provided")
	ErrSteamKeyMissing   = errors.New("Steam API key is not configured")
	ErrDuplicateSteamApp = errors.New("a game with this Steam app ID already exists")
)
