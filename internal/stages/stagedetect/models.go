package stagedetect

import "conversation-intel/internal/models"

// SuggestedTransition is a recommended stage change, if any.
type SuggestedTransition struct {
	From       models.Stage `json:"from"`
	To         models.Stage `json:"to"`
	Confidence int          `json:"confidence"`
}

// Indicators are the textual evidence for and against the classification.
type Indicators struct {
	Positive []string `json:"positive"`
	Negative []string `json:"negative"`
}

// Result is the stage classification output.
type Result struct {
	CurrentStage        models.Stage         `json:"currentStage"`
	Confidence          int                  `json:"confidence"`
	Reasoning           string               `json:"reasoning"`
	SuggestedTransition *SuggestedTransition `json:"suggestedTransition,omitempty"`
	Indicators          Indicators           `json:"indicators"`
}

// DefaultResult is the degraded output when classification is unavailable.
// The stage sticks to what the caller already believed.
func DefaultResult(currentStage models.Stage) Result {
	if !models.IsValidStage(currentStage) {
		currentStage = models.StageLead
	}
	return Result{
		CurrentStage: currentStage,
		Confidence:   0,
		Reasoning:    "unavailable",
		Indicators:   Indicators{Positive: []string{}, Negative: []string{}},
	}
}

// TransitionCheck is the validity verdict for a proposed stage move.
// Invalid moves are ordinary data, never errors.
type TransitionCheck struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// TransitionLevel is how much human confirmation a suggested stage change
// requires.
type TransitionLevel string

const (
	LevelAuto   TransitionLevel = "auto"
	LevelReview TransitionLevel = "review"
	LevelManual TransitionLevel = "manual"
)
