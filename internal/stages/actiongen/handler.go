// Package actiongen recommends the next outreach action for a contact.
// The full-tier model proposes an action; a deterministic rule table
// covers every failure so a recommendation is always produced.
package actiongen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"conversation-intel/internal/common/logger"
	"conversation-intel/internal/common/metrics"
	"conversation-intel/internal/inference"
	"conversation-intel/internal/models"
	"conversation-intel/internal/routing"
)

const TaskType = "action-generation"

// Tier is the execution path this stage is wired to.
const Tier = routing.TierFull

var ErrGenerationFailed = errors.New("ACTION_GENERATION_FAILED")

const systemPrompt = `You recommend the single best next action for a real-estate agent to take with a client.

Allowed action types: Call, Text, Email, Meeting, Send Listing, Follow-up.

Respond with a single JSON object, no prose:
{
  "actionType": "<one of the allowed types>",
  "urgency": 1-10,
  "script": "suggested opening message or talking points",
  "rationale": "why this action now",
  "behavioralFactors": ["..."],
  "estimatedTimeframe": "when to act, e.g. 'today' or 'within 3 days'"
}`

type Handler struct {
	config *Config
	client inference.Client
	logger logger.Logger
}

func NewHandler(config *Config, client inference.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		client: client,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

type rawRecommendation struct {
	ActionType         string   `json:"actionType"`
	Urgency            float64  `json:"urgency"`
	Script             string   `json:"script"`
	Rationale          string   `json:"rationale"`
	BehavioralFactors  []string `json:"behavioralFactors"`
	EstimatedTimeframe string   `json:"estimatedTimeframe"`
}

// Generate asks the full-tier model for a recommendation. On any failure
// it falls back to the deterministic rule table; it never returns an error.
func (h *Handler) Generate(ctx context.Context, text string, actx models.AnalysisContext) Recommendation {
	callCtx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	userPrompt := fmt.Sprintf(
		"Contact: %s\nStage: %s\nMotivation: %s\nTimeframe: %s\nDays since last contact: %d\n\nConversation:\n%s",
		actx.ContactName, actx.CurrentStage, actx.MotivationLevel, actx.Timeframe, actx.DaysSinceContact, text,
	)

	response, err := h.client.Complete(callCtx, inference.Request{
		Tier:         Tier,
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  h.config.Temperature,
		ExpectJSON:   true,
	})
	if err != nil {
		h.logger.Warn("action generation call failed, using rule fallback", map[string]interface{}{
			"error": err.Error(),
		})
		metrics.StageFallbacks.WithLabelValues(TaskType, "inference_error").Inc()
		return FallbackRecommendation(actx)
	}

	rec, err := h.parse(response)
	if err != nil {
		h.logger.Warn("action generation response unparseable, using rule fallback", map[string]interface{}{
			"error": err.Error(),
		})
		metrics.StageFallbacks.WithLabelValues(TaskType, "parse_error").Inc()
		return FallbackRecommendation(actx)
	}

	h.logger.Info("action recommended", map[string]interface{}{
		"actionType": string(rec.ActionType),
		"urgency":    rec.Urgency,
	})

	return rec
}

func (h *Handler) parse(response string) (Recommendation, error) {
	cleaned := stripCodeFence(response)

	var raw rawRecommendation
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return Recommendation{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	rec := Recommendation{
		ActionType:         NormalizeActionType(raw.ActionType),
		Urgency:            ClampUrgency(int(raw.Urgency)),
		Script:             raw.Script,
		Rationale:          raw.Rationale,
		BehavioralFactors:  raw.BehavioralFactors,
		EstimatedTimeframe: raw.EstimatedTimeframe,
	}
	if rec.BehavioralFactors == nil {
		rec.BehavioralFactors = []string{}
	}
	return rec, nil
}

// NormalizeActionType maps free text onto the canonical action set via
// case-insensitive substring match, defaulting to Follow-up.
func NormalizeActionType(s string) ActionType {
	lower := strings.ToLower(s)
	for _, action := range canonicalActions {
		if strings.Contains(lower, strings.ToLower(string(action))) {
			return action
		}
	}
	return ActionFollowUp
}

// ClampUrgency bounds urgency into [1,10].
func ClampUrgency(v int) int {
	if v < 1 {
		return 1
	}
	if v > 10 {
		return 10
	}
	return v
}

func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
