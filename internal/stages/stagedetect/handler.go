// Package stagedetect classifies a conversation into one of the five
// pipeline stages and governs suggested stage transitions.
package stagedetect

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

	"github.com/xeipuuv/gojsonschema"
)

const TaskType = "stage-detection"

// Tier is the execution path this stage is wired to.
const Tier = routing.TierFull

var ErrDetectionFailed = errors.New("STAGE_DETECTION_FAILED")

const systemPrompt = `You classify real-estate client conversations into one of five relationship stages.

Stages and qualifying criteria:
- Lead: initial inquiry, not yet qualified, motivation unknown.
- New Opportunity: qualified interest, motivation and rough timeframe known.
- Active Opportunity: actively touring properties or preparing offers.
- Under Contract: an offer has been accepted, transaction in progress.
- Closed: the transaction has completed.

Respond with a single JSON object, no prose:
{
  "stage": "<one of the five names>",
  "confidence": 0-100,
  "reasoning": "...",
  "suggestedTransition": {"from": "", "to": "", "confidence": 0-100} or null,
  "indicators": {"positive": ["..."], "negative": ["..."]}
}`

var responseSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"stage":      map[string]interface{}{"type": "string"},
		"confidence": map[string]interface{}{"type": "number"},
		"reasoning":  map[string]interface{}{"type": "string"},
	},
	"required": []interface{}{"stage"},
}

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

type rawResult struct {
	Stage               string  `json:"stage"`
	Confidence          float64 `json:"confidence"`
	Reasoning           string  `json:"reasoning"`
	SuggestedTransition *struct {
		From       string  `json:"from"`
		To         string  `json:"to"`
		Confidence float64 `json:"confidence"`
	} `json:"suggestedTransition"`
	Indicators struct {
		Positive []string `json:"positive"`
		Negative []string `json:"negative"`
	} `json:"indicators"`
}

// Detect classifies the conversation. currentStage is the caller's prior
// belief; on any failure the result falls back to it (or Lead) with zero
// confidence and never returns an error.
func (h *Handler) Detect(ctx context.Context, text string, currentStage models.Stage) Result {
	callCtx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	userPrompt := fmt.Sprintf("Current stage on record: %s\n\nConversation:\n%s", currentStage, text)
	response, err := h.client.Complete(callCtx, inference.Request{
		Tier:         Tier,
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  h.config.Temperature,
		ExpectJSON:   true,
	})
	if err != nil {
		h.logger.Warn("stage detection call failed, keeping current stage", map[string]interface{}{
			"currentStage": string(currentStage),
			"error":        err.Error(),
		})
		metrics.StageFallbacks.WithLabelValues(TaskType, "inference_error").Inc()
		return DefaultResult(currentStage)
	}

	result, err := h.parse(response, currentStage)
	if err != nil {
		h.logger.Warn("stage detection response unparseable, keeping current stage", map[string]interface{}{
			"currentStage": string(currentStage),
			"error":        err.Error(),
		})
		metrics.StageFallbacks.WithLabelValues(TaskType, "parse_error").Inc()
		return DefaultResult(currentStage)
	}

	h.logger.Info("stage detected", map[string]interface{}{
		"stage":      string(result.CurrentStage),
		"confidence": result.Confidence,
	})

	return result
}

func (h *Handler) parse(response string, currentStage models.Stage) (Result, error) {
	cleaned := stripCodeFence(response)

	var generic map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &generic); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrDetectionFailed, err)
	}

	validation, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(responseSchema),
		gojsonschema.NewGoLoader(generic),
	)
	if err != nil {
		return Result{}, fmt.Errorf("%w: schema validation: %v", ErrDetectionFailed, err)
	}
	if !validation.Valid() {
		return Result{}, fmt.Errorf("%w: invalid response shape", ErrDetectionFailed)
	}

	var raw rawResult
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrDetectionFailed, err)
	}

	result := Result{
		CurrentStage: NormalizeStage(raw.Stage, currentStage),
		Confidence:   clampConfidence(raw.Confidence),
		Reasoning:    raw.Reasoning,
		Indicators: Indicators{
			Positive: raw.Indicators.Positive,
			Negative: raw.Indicators.Negative,
		},
	}
	if result.Indicators.Positive == nil {
		result.Indicators.Positive = []string{}
	}
	if result.Indicators.Negative == nil {
		result.Indicators.Negative = []string{}
	}

	if raw.SuggestedTransition != nil {
		result.SuggestedTransition = &SuggestedTransition{
			From:       NormalizeStage(raw.SuggestedTransition.From, currentStage),
			To:         NormalizeStage(raw.SuggestedTransition.To, currentStage),
			Confidence: clampConfidence(raw.SuggestedTransition.Confidence),
		}
	}

	return result, nil
}

// NormalizeStage maps a free-text stage name onto the canonical set via
// case-insensitive substring match. Unmatched names fall back to the
// caller's current stage, then Lead.
func NormalizeStage(name string, fallback models.Stage) models.Stage {
	lower := strings.ToLower(name)
	for _, stage := range models.StageOrder {
		if strings.Contains(lower, strings.ToLower(string(stage))) {
			return stage
		}
	}
	if models.IsValidStage(fallback) {
		return fallback
	}
	return models.StageLead
}

func clampConfidence(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
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
