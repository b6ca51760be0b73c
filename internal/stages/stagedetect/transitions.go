package stagedetect

import (
	"fmt"

	"conversation-intel/internal/models"
)

// forwardTransitions lists the allowed moves out of each stage, including
// self-loops. Closed is terminal: nothing leaves it except itself.
var forwardTransitions = map[models.Stage][]models.Stage{
	models.StageLead:              {models.StageNewOpportunity, models.StageLead},
	models.StageNewOpportunity:    {models.StageActiveOpportunity, models.StageLead, models.StageNewOpportunity},
	models.StageActiveOpportunity: {models.StageUnderContract, models.StageNewOpportunity, models.StageActiveOpportunity},
	models.StageUnderContract:     {models.StageClosed, models.StageActiveOpportunity, models.StageUnderContract},
	models.StageClosed:            {models.StageClosed},
}

// reverseTransitions maps a target stage to the origins it may be reached
// from as a permitted regression. Checked only when the forward table
// rejects the move.
var reverseTransitions = map[models.Stage][]models.Stage{
	models.StageNewOpportunity:    {models.StageLead},
	models.StageActiveOpportunity: {models.StageNewOpportunity, models.StageLead},
	models.StageUnderContract:     {models.StageActiveOpportunity, models.StageNewOpportunity},
}

// ValidateTransition decides whether moving from one stage to another is
// permitted. Rejection is returned as data, never as an error.
func ValidateTransition(from, to models.Stage) TransitionCheck {
	allowed, ok := forwardTransitions[from]
	if !ok {
		return TransitionCheck{Valid: false, Reason: fmt.Sprintf("unknown stage %q", from)}
	}

	for _, s := range allowed {
		if s == to {
			return TransitionCheck{Valid: true}
		}
	}

	if origins, ok := reverseTransitions[to]; ok {
		for _, s := range origins {
			if s == from {
				return TransitionCheck{Valid: true, Reason: "Reverse transition allowed"}
			}
		}
	}

	return TransitionCheck{
		Valid:  false,
		Reason: fmt.Sprintf("transition from %s to %s is not allowed", from, to),
	}
}

// TransitionLevelFor returns the governance level for a detection result:
// how much human confirmation the suggested change needs.
func TransitionLevelFor(result Result) TransitionLevel {
	if result.SuggestedTransition == nil {
		return LevelManual
	}
	switch {
	case result.SuggestedTransition.Confidence >= 90:
		return LevelAuto
	case result.SuggestedTransition.Confidence >= 70:
		return LevelReview
	default:
		return LevelManual
	}
}

// ShouldTransition reports whether the result is strong enough to act on:
// either a high-confidence suggestion, or a reasonably confident
// classification backed by at least two positive indicators.
func ShouldTransition(result Result) bool {
	if result.SuggestedTransition != nil && result.SuggestedTransition.Confidence >= 90 {
		return true
	}
	return result.Confidence >= 70 && len(result.Indicators.Positive) >= 2
}

// StageProgression scores the suggested move relative to the current
// stage: +confidence for progression, -confidence for regression, 0 when
// there is no move or no suggestion.
func StageProgression(currentStage models.Stage, result Result) int {
	if result.SuggestedTransition == nil {
		return 0
	}

	currentIdx := models.StageIndex(currentStage)
	suggestedIdx := models.StageIndex(result.SuggestedTransition.To)
	if currentIdx < 0 || suggestedIdx < 0 {
		return 0
	}

	switch {
	case suggestedIdx > currentIdx:
		return result.SuggestedTransition.Confidence
	case suggestedIdx < currentIdx:
		return -result.SuggestedTransition.Confidence
	default:
		return 0
	}
}
