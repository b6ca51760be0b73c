package actiongen

import (
	"fmt"
	"hash/fnv"

	"conversation-intel/internal/models"
)

// sevenDayThreshold is the days-since-contact limit for Active
// Opportunity contacts. Exceeding it is the highest-priority condition
// in every rule path.
const sevenDayThreshold = 7

// FallbackRecommendation is the deterministic rule table used when the
// model path fails. Checked in priority order; the 7-day rule overrides
// everything else.
func FallbackRecommendation(actx models.AnalysisContext) Recommendation {
	if actx.CurrentStage == models.StageActiveOpportunity && actx.DaysSinceContact >= sevenDayThreshold {
		return Recommendation{
			ActionType: ActionCall,
			Urgency:    10,
			Script:     fmt.Sprintf("Hi %s, it's been a little while since we last spoke. I wanted to check in on your search and see what's changed.", actx.FirstName()),
			Rationale:  fmt.Sprintf("7-day rule violation: active opportunity untouched for %d days", actx.DaysSinceContact),
			BehavioralFactors: []string{
				"seven_day_rule_violation",
				"active_opportunity",
			},
			EstimatedTimeframe: "today",
		}
	}

	switch {
	case actx.CurrentStage == models.StageLead && actx.MotivationLevel == "":
		return Recommendation{
			ActionType:         ActionCall,
			Urgency:            7,
			Script:             fmt.Sprintf("Hi %s, thanks for reaching out. I'd love to hear more about what you're looking for and your timeline.", actx.FirstName()),
			Rationale:          "new lead with unknown motivation needs a qualification call",
			BehavioralFactors:  []string{"unqualified_lead"},
			EstimatedTimeframe: "within 1 day",
		}
	case actx.CurrentStage == models.StageNewOpportunity && actx.Timeframe == models.TimeframeImmediate:
		return Recommendation{
			ActionType:         ActionCall,
			Urgency:            8,
			Script:             fmt.Sprintf("Hi %s, since you're looking to move quickly, let's set up some showings this week.", actx.FirstName()),
			Rationale:          "immediate timeframe on a new opportunity warrants a same-day call",
			BehavioralFactors:  []string{"immediate_timeframe"},
			EstimatedTimeframe: "today",
		}
	default:
		return Recommendation{
			ActionType:         ActionText,
			Urgency:            5,
			Script:             fmt.Sprintf("Hi %s, just checking in. Anything I can help with on your home search?", actx.FirstName()),
			Rationale:          "routine check-in to keep the relationship warm",
			BehavioralFactors:  []string{"routine_checkin"},
			EstimatedTimeframe: "within 3 days",
		}
	}
}

// ActionUrgency computes the additive urgency score, clamped to [1,10].
func ActionUrgency(f UrgencyFactors) int {
	urgency := 5

	if f.SevenDayRuleViolation {
		urgency += 5
	}
	if f.DaysSinceContact >= 7 {
		urgency += 3
	} else if f.DaysSinceContact >= 3 {
		urgency++
	}
	if f.Timeframe == models.TimeframeImmediate {
		urgency += 2
	}
	if f.Motivation == models.MotivationHigh {
		urgency++
	}
	if f.Stage == models.StageActiveOpportunity {
		urgency++
	}
	if f.Stage == models.StageClosed {
		urgency -= 3
	}

	return ClampUrgency(urgency)
}

// Script pools per action context. pickScript selects deterministically
// from these so tests and repeated runs are reproducible.
var (
	qualificationScripts = []string{
		"Hi %s, great to hear from you. What's prompting the move, and what does your ideal timeline look like?",
		"Hi %s, thanks for getting in touch. Tell me a bit about what you're hoping to find and when you'd like to be in.",
		"Hi %s, happy to help. Before we look at homes, what matters most to you in this move?",
	}
	checkinScripts = []string{
		"Hi %s, just checking in. Any new thoughts on the search?",
		"Hi %s, wanted to touch base and see how things are going on your end.",
		"Hi %s, no rush at all, just seeing if anything has changed since we last talked.",
	}
	contractScripts = []string{
		"Hi %s, quick update on where we are in the process and what's coming next.",
		"Hi %s, checking in on the paperwork. Let me know if anything from the lender needs attention.",
	}
)

// pickScript selects a script for the contact via an FNV-1a hash of the
// identifier. Stable for the same contact, spread across contacts.
func pickScript(pool []string, contactID, firstName string) string {
	if len(pool) == 0 {
		return ""
	}
	h := fnv.New32a()
	h.Write([]byte(contactID))
	idx := int(h.Sum32()) % len(pool)
	if idx < 0 {
		idx += len(pool)
	}
	return fmt.Sprintf(pool[idx], firstName)
}

// RecommendForContact is the fully-deterministic rule engine: it produces
// a recommendation straight from the contact record with no inference
// call. The 7-day rule is evaluated first and short-circuits every
// stage branch.
func RecommendForContact(contact models.Contact) Recommendation {
	if contact.Stage == models.StageActiveOpportunity && contact.DaysSinceContact >= sevenDayThreshold {
		return Recommendation{
			ActionType: ActionCall,
			Urgency:    10,
			Script:     pickScript(checkinScripts, contact.ID, contact.FirstName()),
			Rationale:  fmt.Sprintf("7-day rule violation: no contact for %d days on an active opportunity", contact.DaysSinceContact),
			BehavioralFactors: []string{
				"seven_day_rule_violation",
				"active_opportunity",
			},
			EstimatedTimeframe: "today",
		}
	}

	factors := UrgencyFactors{
		DaysSinceContact: contact.DaysSinceContact,
		Timeframe:        contact.Timeframe,
		Motivation:       contact.MotivationLevel,
		Stage:            contact.Stage,
	}

	switch contact.Stage {
	case models.StageLead:
		if contact.MotivationLevel == "" {
			return Recommendation{
				ActionType:         ActionCall,
				Urgency:            7,
				Script:             pickScript(qualificationScripts, contact.ID, contact.FirstName()),
				Rationale:          "lead has not been qualified yet",
				BehavioralFactors:  []string{"unqualified_lead"},
				EstimatedTimeframe: "within 1 day",
			}
		}
		return Recommendation{
			ActionType:         ActionText,
			Urgency:            ActionUrgency(factors),
			Script:             pickScript(checkinScripts, contact.ID, contact.FirstName()),
			Rationale:          "qualified lead, keep the conversation going",
			BehavioralFactors:  []string{"qualified_lead"},
			EstimatedTimeframe: "within 2 days",
		}

	case models.StageNewOpportunity:
		if contact.Timeframe == models.TimeframeImmediate {
			return Recommendation{
				ActionType:         ActionCall,
				Urgency:            8,
				Script:             pickScript(checkinScripts, contact.ID, contact.FirstName()),
				Rationale:          "immediate timeframe, move to showings now",
				BehavioralFactors:  []string{"immediate_timeframe"},
				EstimatedTimeframe: "today",
			}
		}
		if !contact.PreApproved {
			return Recommendation{
				ActionType:         ActionEmail,
				Urgency:            ActionUrgency(factors),
				Script:             pickScript(checkinScripts, contact.ID, contact.FirstName()),
				Rationale:          "not pre-approved yet, connect them with a lender",
				BehavioralFactors:  []string{"no_preapproval"},
				EstimatedTimeframe: "within 2 days",
			}
		}
		return Recommendation{
			ActionType:         ActionSendListing,
			Urgency:            ActionUrgency(factors),
			Script:             pickScript(checkinScripts, contact.ID, contact.FirstName()),
			Rationale:          "pre-approved and engaged, send matching listings",
			BehavioralFactors:  []string{"preapproved"},
			EstimatedTimeframe: "within 2 days",
		}

	case models.StageActiveOpportunity:
		if contact.DaysSinceContact >= 3 {
			return Recommendation{
				ActionType:         ActionCall,
				Urgency:            ActionUrgency(factors),
				Script:             pickScript(checkinScripts, contact.ID, contact.FirstName()),
				Rationale:          "active search going quiet, re-engage before it stalls",
				BehavioralFactors:  []string{"active_opportunity", "going_quiet"},
				EstimatedTimeframe: "today",
			}
		}
		return Recommendation{
			ActionType:         ActionSendListing,
			Urgency:            ActionUrgency(factors),
			Script:             pickScript(checkinScripts, contact.ID, contact.FirstName()),
			Rationale:          "keep fresh inventory in front of an active buyer",
			BehavioralFactors:  []string{"active_opportunity"},
			EstimatedTimeframe: "within 1 day",
		}

	case models.StageUnderContract:
		return Recommendation{
			ActionType:         ActionEmail,
			Urgency:            ActionUrgency(factors),
			Script:             pickScript(contractScripts, contact.ID, contact.FirstName()),
			Rationale:          "transaction in progress, keep them informed of milestones",
			BehavioralFactors:  []string{"under_contract"},
			EstimatedTimeframe: "within 2 days",
		}

	case models.StageClosed:
		return Recommendation{
			ActionType:         ActionFollowUp,
			Urgency:            ActionUrgency(factors),
			Script:             pickScript(checkinScripts, contact.ID, contact.FirstName()),
			Rationale:          "closed client, periodic follow-up for referrals",
			BehavioralFactors:  []string{"closed"},
			EstimatedTimeframe: "within 30 days",
		}

	default:
		return Recommendation{
			ActionType:         ActionText,
			Urgency:            5,
			Script:             pickScript(checkinScripts, contact.ID, contact.FirstName()),
			Rationale:          "unknown stage, default to a light check-in",
			BehavioralFactors:  []string{"routine_checkin"},
			EstimatedTimeframe: "within 3 days",
		}
	}
}
