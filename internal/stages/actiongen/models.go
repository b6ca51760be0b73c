package actiongen

import "conversation-intel/internal/models"

// ActionType is one of the six canonical next actions.
type ActionType string

const (
	ActionCall        ActionType = "Call"
	ActionText        ActionType = "Text"
	ActionEmail       ActionType = "Email"
	ActionMeeting     ActionType = "Meeting"
	ActionSendListing ActionType = "Send Listing"
	ActionFollowUp    ActionType = "Follow-up"
)

// canonicalActions in the order used for normalization.
var canonicalActions = []ActionType{
	ActionCall, ActionText, ActionEmail, ActionMeeting, ActionSendListing, ActionFollowUp,
}

// Recommendation is the next-action output.
type Recommendation struct {
	ActionType         ActionType `json:"actionType"`
	Urgency            int        `json:"urgency"`
	Script             string     `json:"script"`
	Rationale          string     `json:"rationale"`
	BehavioralFactors  []string   `json:"behavioralFactors"`
	EstimatedTimeframe string     `json:"estimatedTimeframe"`
}

// UrgencyFactors are the inputs to the additive urgency score.
type UrgencyFactors struct {
	SevenDayRuleViolation bool
	DaysSinceContact      int
	Timeframe             models.Timeframe
	Motivation            models.MotivationLevel
	Stage                 models.Stage
}
