package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conversation-intel/internal/common/logger"
	"conversation-intel/internal/inference"
	"conversation-intel/internal/models"
	"conversation-intel/internal/routing"
	"conversation-intel/internal/stages/actiongen"
	"conversation-intel/internal/stages/entityextract"
)

// highSignalText routes pattern detection to the rule-based tier.
const highSignalText = "I need to buy a house ASAP, pre-approved already, looking in 3 bedroom homes under $400,000"

// lowSignalText carries no high-confidence patterns, so the rule-based
// gate loses and pattern detection is skipped.
const lowSignalText = "Thanks again for the coffee, talk soon"

// stageMock answers each stage by recognizing its system prompt.
type stageMock struct {
	err  error
	seen []inference.Request
}

func (m *stageMock) Complete(_ context.Context, req inference.Request) (string, error) {
	m.seen = append(m.seen, req)
	if m.err != nil {
		return "", m.err
	}

	switch {
	case strings.Contains(req.SystemPrompt, "extracts structured attributes"):
		return `{
			"motivation": {"level": "High", "confidence": 85, "indicators": ["relocating"]},
			"timeframe": {"range": "Immediate", "confidence": 75, "indicators": ["asap"]},
			"propertyPreferences": {"location": "Westside", "beds": 3, "mustHaves": []},
			"budget": {"range": "$400,000", "preApproved": true, "mentioned": true}
		}`, nil
	case strings.Contains(req.SystemPrompt, "relationship stages"):
		return `{
			"stage": "New Opportunity",
			"confidence": 85,
			"reasoning": "qualified and motivated",
			"suggestedTransition": {"from": "Lead", "to": "New Opportunity", "confidence": 90},
			"indicators": {"positive": ["pre-approved", "clear budget"], "negative": []}
		}`, nil
	case strings.Contains(req.SystemPrompt, "next action"):
		return `{
			"actionType": "Call",
			"urgency": 6,
			"script": "Let's line up showings this week.",
			"rationale": "buyer is ready",
			"behavioralFactors": ["urgent_buyer"],
			"estimatedTimeframe": "today"
		}`, nil
	case strings.Contains(req.SystemPrompt, "draft replies"):
		return `{
			"greeting": "Hi Jane,",
			"acknowledgment": "Love the urgency!",
			"valueProposition": "I can line up homes in your range today.",
			"nextStep": "Free for a call this afternoon?",
			"closing": "Talk soon!",
			"fullReply": "Hi Jane, I can line up homes in your range today. Free for a call this afternoon?",
			"tone": "Friendly",
			"editSuggestions": []
		}`, nil
	default:
		return "", errors.New("unrecognized prompt")
	}
}

func newTestOrchestrator(t *testing.T, client inference.Client) *Orchestrator {
	return New(client, routing.NewUsageStats(), logger.NewTestLogger(t))
}

func TestAnalyze_FullSequence(t *testing.T) {
	client := &stageMock{}
	orch := newTestOrchestrator(t, client)

	actx := models.AnalysisContext{
		ContactID:    "c-1",
		ContactName:  "Jane Doe",
		CurrentStage: models.StageLead,
	}
	result := orch.Analyze(context.Background(), highSignalText, actx)

	assert.NotEmpty(t, result.AnalysisID)
	assert.Equal(t, 95, result.Patterns.Confidence)
	assert.Equal(t, models.MotivationHigh, result.Entities.Motivation.Level)
	assert.Equal(t, models.StageNewOpportunity, result.Stage.CurrentStage)
	assert.Equal(t, actiongen.ActionCall, result.NextAction.ActionType)
	require.NotNil(t, result.Reply)
	assert.Equal(t, "Hi Jane,", result.Reply.Greeting)

	assert.True(t, result.Metadata.UsedRuleBased)
	assert.True(t, result.Metadata.UsedMini)
	assert.True(t, result.Metadata.UsedFull)
	assert.Greater(t, result.Metadata.TotalEstimatedCost, 0.0)
	// 95 + 85 + 75 + 85 + 60 over five non-zero signals.
	assert.Equal(t, 80, result.Metadata.OverallConfidence)

	snap := orch.Usage().Snapshot()
	assert.Equal(t, 1, snap.RuleBasedCount)
	assert.Equal(t, 1, snap.MiniCount)
	assert.Equal(t, 3, snap.FullCount)
	assert.InDelta(t, result.Metadata.TotalEstimatedCost, snap.TotalEstimatedCost, 1e-12)

	// Four inference calls: extraction, stage, action, reply.
	assert.Len(t, client.seen, 4)
}

func TestAnalyze_PatternStageSkippedWhenRoutedToMini(t *testing.T) {
	orch := newTestOrchestrator(t, &stageMock{})

	result := orch.Analyze(context.Background(), lowSignalText, models.AnalysisContext{CurrentStage: models.StageLead})

	// The router sends weak-signal text to mini, but pattern detection is
	// wired to the rule-based tier, so the stage does not run at all.
	assert.Empty(t, result.Patterns.MatchedPatterns)
	assert.Equal(t, 0, result.Patterns.Confidence)
	assert.False(t, result.Metadata.UsedRuleBased)
	assert.Equal(t, 0, orch.Usage().Snapshot().RuleBasedCount)

	// Downstream stages still run.
	assert.True(t, result.Metadata.UsedMini)
	assert.True(t, result.Metadata.UsedFull)
}

func TestAnalyze_ReplyDisabled(t *testing.T) {
	client := &stageMock{}
	orch := newTestOrchestrator(t, client)

	noReply := false
	actx := models.AnalysisContext{
		ContactName:   "Jane Doe",
		CurrentStage:  models.StageLead,
		GenerateReply: &noReply,
	}
	result := orch.Analyze(context.Background(), highSignalText, actx)

	assert.Nil(t, result.Reply)
	assert.Len(t, client.seen, 3)
	assert.Equal(t, 2, orch.Usage().Snapshot().FullCount)
}

func TestAnalyze_InferenceFailureDegradesEveryStage(t *testing.T) {
	orch := newTestOrchestrator(t, &stageMock{err: errors.New("provider down")})

	actx := models.AnalysisContext{
		ContactName:      "Jane Doe",
		CurrentStage:     models.StageActiveOpportunity,
		DaysSinceContact: 9,
	}
	result := orch.Analyze(context.Background(), highSignalText, actx)

	// Patterns are rule-based and unaffected.
	assert.Equal(t, 95, result.Patterns.Confidence)

	// Extraction degrades to empty entities.
	assert.Empty(t, result.Entities.Motivation.Level)
	assert.Equal(t, 0, result.Entities.Motivation.Confidence)

	// Stage detection keeps the caller's stage.
	assert.Equal(t, models.StageActiveOpportunity, result.Stage.CurrentStage)
	assert.Equal(t, "unavailable", result.Stage.Reasoning)

	// Action generation falls back to the rule table, 7-day rule first.
	assert.Equal(t, actiongen.ActionCall, result.NextAction.ActionType)
	assert.Equal(t, 10, result.NextAction.Urgency)

	// Reply degrades to the stage template.
	require.NotNil(t, result.Reply)
	assert.Contains(t, result.Reply.Greeting, "Jane")

	// Degraded stages still count as executed for usage purposes.
	snap := orch.Usage().Snapshot()
	assert.Equal(t, 3, snap.FullCount)
}

func TestAnalyze_OverallConfidenceIgnoresZeroSignals(t *testing.T) {
	orch := newTestOrchestrator(t, &stageMock{err: errors.New("provider down")})

	result := orch.Analyze(context.Background(), lowSignalText, models.AnalysisContext{
		ContactName:  "Jane Doe",
		CurrentStage: models.StageLead,
	})

	// Only the fallback action urgency contributes: 5 * 10.
	assert.Equal(t, 7, result.NextAction.Urgency)
	assert.Equal(t, 70, result.Metadata.OverallConfidence)
}

func TestQuickAnalyze(t *testing.T) {
	orch := newTestOrchestrator(t, &stageMock{})

	tests := []struct {
		name      string
		text      string
		wantScore int
	}{
		{"nothing interesting", "have a nice day", 0},
		{"urgent buyer", "we need to buy asap", 50},
		{"offer accepted", "they accepted our offer", 25},
		{
			"stacked signals",
			"urgent: we want to buy, toured the house, offer accepted, closing on the house Friday",
			100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quick := orch.QuickAnalyze(tt.text)
			assert.Equal(t, tt.wantScore, quick.PriorityScore)
		})
	}

	// Quick path performs no inference calls and records no usage.
	assert.Equal(t, routing.UsageSnapshot{}, orch.Usage().Snapshot())
}

func TestBatchExtract_RecordsMiniUsagePerItem(t *testing.T) {
	orch := newTestOrchestrator(t, &stageMock{})

	items := []entityextract.BatchItem{
		{ID: "a", Text: "looking for a condo downtown"},
		{ID: "b", Text: "we might sell in the spring"},
		{ID: "c", Text: "budget is around $500k"},
	}
	results := orch.BatchExtract(context.Background(), items)

	require.Len(t, results, 3)
	snap := orch.Usage().Snapshot()
	assert.Equal(t, 3, snap.MiniCount)
	assert.Greater(t, snap.TotalEstimatedCost, 0.0)
}
