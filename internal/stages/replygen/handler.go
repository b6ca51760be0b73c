// Package replygen drafts a structured reply to the client's last
// message. A stage-specific template stands in whenever the model path
// fails, so a usable draft is always returned.
package replygen

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

const TaskType = "reply-generation"

// Tier is the execution path this stage is wired to.
const Tier = routing.TierFull

var ErrGenerationFailed = errors.New("REPLY_GENERATION_FAILED")

const systemPrompt = `You draft replies a real-estate agent sends to clients.

Respond with a single JSON object, no prose:
{
  "greeting": "...",
  "acknowledgment": "respond to what the client said",
  "valueProposition": "what the agent brings to the next step",
  "nextStep": "a concrete proposed next step",
  "closing": "...",
  "fullReply": "the five sections composed into one message",
  "tone": "Professional|Friendly|Urgent|Casual",
  "editSuggestions": ["optional notes for the agent before sending"]
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

type rawDraft struct {
	Greeting         string   `json:"greeting"`
	Acknowledgment   string   `json:"acknowledgment"`
	ValueProposition string   `json:"valueProposition"`
	NextStep         string   `json:"nextStep"`
	Closing          string   `json:"closing"`
	FullReply        string   `json:"fullReply"`
	Tone             string   `json:"tone"`
	EditSuggestions  []string `json:"editSuggestions"`
}

// Generate drafts a reply to the conversation. On any failure it returns
// the stage-specific template for the contact; it never returns an error.
func (h *Handler) Generate(ctx context.Context, text string, actx models.AnalysisContext) Draft {
	callCtx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	userPrompt := fmt.Sprintf(
		"Contact: %s\nStage: %s\nLast message from: %s\n\nConversation:\n%s",
		actx.ContactName, actx.CurrentStage, actx.LastMessageFrom, text,
	)

	response, err := h.client.Complete(callCtx, inference.Request{
		Tier:         Tier,
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  h.config.Temperature,
		ExpectJSON:   true,
	})
	if err != nil {
		h.logger.Warn("reply generation call failed, using template", map[string]interface{}{
			"stage": string(actx.CurrentStage),
			"error": err.Error(),
		})
		metrics.StageFallbacks.WithLabelValues(TaskType, "inference_error").Inc()
		return TemplateDraft(actx)
	}

	draft, err := h.parse(response)
	if err != nil {
		h.logger.Warn("reply generation response unparseable, using template", map[string]interface{}{
			"stage": string(actx.CurrentStage),
			"error": err.Error(),
		})
		metrics.StageFallbacks.WithLabelValues(TaskType, "parse_error").Inc()
		return TemplateDraft(actx)
	}

	h.logger.Info("reply drafted", map[string]interface{}{
		"tone": string(draft.Tone),
	})

	return draft
}

func (h *Handler) parse(response string) (Draft, error) {
	cleaned := stripCodeFence(response)

	var raw rawDraft
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return Draft{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	draft := Draft{
		Greeting:         raw.Greeting,
		Acknowledgment:   raw.Acknowledgment,
		ValueProposition: raw.ValueProposition,
		NextStep:         raw.NextStep,
		Closing:          raw.Closing,
		FullReply:        raw.FullReply,
		Tone:             NormalizeTone(raw.Tone),
		EditSuggestions:  raw.EditSuggestions,
	}
	if draft.EditSuggestions == nil {
		draft.EditSuggestions = []string{}
	}
	if draft.FullReply == "" {
		draft.FullReply = ComposeFullReply(draft)
	}
	return draft, nil
}

// NormalizeTone maps free text onto the canonical tone set via
// case-insensitive substring match, defaulting to Professional.
func NormalizeTone(s string) Tone {
	lower := strings.ToLower(s)
	for _, tone := range canonicalTones {
		if strings.Contains(lower, strings.ToLower(string(tone))) {
			return tone
		}
	}
	return ToneProfessional
}

// ComposeFullReply joins the five sections with paragraph breaks,
// skipping empty sections.
func ComposeFullReply(d Draft) string {
	sections := []string{d.Greeting, d.Acknowledgment, d.ValueProposition, d.NextStep, d.Closing}
	var parts []string
	for _, s := range sections {
		if strings.TrimSpace(s) != "" {
			parts = append(parts, strings.TrimSpace(s))
		}
	}
	return strings.Join(parts, "\n\n")
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
