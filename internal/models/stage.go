package models

// Stage is one of the five canonical relationship pipeline stages.
type Stage string

const (
	StageLead              Stage = "Lead"
	StageNewOpportunity    Stage = "New Opportunity"
	StageActiveOpportunity Stage = "Active Opportunity"
	StageUnderContract     Stage = "Under Contract"
	StageClosed            Stage = "Closed"
)

// StageOrder lists the pipeline stages in progression order.
var StageOrder = []Stage{
	StageLead,
	StageNewOpportunity,
	StageActiveOpportunity,
	StageUnderContract,
	StageClosed,
}

// StageIndex returns the position of a stage in the pipeline order,
// or -1 if the stage is not one of the canonical five.
func StageIndex(s Stage) int {
	for i, stage := range StageOrder {
		if stage == s {
			return i
		}
	}
	return -1
}

// IsValidStage reports whether s is one of the canonical five stages.
func IsValidStage(s Stage) bool {
	return StageIndex(s) >= 0
}

// MotivationLevel is the qualitative motivation assessment for a contact.
type MotivationLevel string

const (
	MotivationHigh   MotivationLevel = "High"
	MotivationMedium MotivationLevel = "Medium"
	MotivationLow    MotivationLevel = "Low"
)

// Timeframe is the canonical purchase/sale timeframe bucket.
type Timeframe string

const (
	TimeframeImmediate  Timeframe = "Immediate"
	TimeframeOneToThree Timeframe = "1-3 months"
	TimeframeThreeToSix Timeframe = "3-6 months"
	TimeframeSixPlus    Timeframe = "6+ months"
)
