package service

import "math"

// ScoreMethod labels every engagement score row written by the pipeline.
const ScoreMethod = "hltb_main_story + completion_rate"

const (
	scoreScale = 400.0
	// scorePivotHours is where the length factor reaches 0.5.
	scorePivotHours    = 10.0
	completionExponent = 1.3
	minCompletionRatio = 0.01
	maxCompletionRatio = 0.99
)

// EngagementScoreFormula combines a main-story length estimate with the
// global completion percent of the main-story achievement into a 0-400
// scalar. Strictly increasing in both inputs and bounded below scoreScale;
// the completion ratio is clamped away from 0 and 1 so the exponent never
// degenerates.
func EngagementScoreFormula(hours, completionPercent float64) float64 {
	c := math.Min(math.Max(completionPercent/100.0, minCompletionRatio), maxCompletionRatio)
	lengthFactor := hours / (hours + scorePivotHours)
	completionFactor := math.Pow(c, completionExponent)
	return scoreScale * lengthFactor * completionFactor
}
