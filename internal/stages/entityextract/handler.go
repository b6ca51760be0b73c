package entityextract

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

const TaskType = "entity-extraction"

// Tier is the execution path this stage is wired to.
const Tier = routing.TierMini

var ErrExtractionFailed = errors.New("ENTITY_EXTRACTION_FAILED")

const systemPrompt = `You are an assistant that extracts structured attributes from real-estate client conversations.
Respond with a single JSON object, no prose, matching this shape:
{
  "motivation": {"level": "High|Medium|Low|null", "confidence": 0-100, "indicators": ["..."]},
  "timeframe": {"range": "Immediate|1-3 months|3-6 months|6+ months|null", "confidence": 0-100, "indicators": ["..."]},
  "propertyPreferences": {"location": "", "priceRange": "", "propertyType": "", "beds": 0, "baths": 0, "mustHaves": ["..."]},
  "budget": {"range": "", "preApproved": false, "mentioned": false}
}
Use null or empty values when the conversation gives no evidence.`

// responseSchema loosely validates the structured response shape before it
// is trusted. Types only; the fuzzy normalizers handle value variance.
var responseSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"motivation":          map[string]interface{}{"type": "object"},
		"timeframe":           map[string]interface{}{"type": "object"},
		"propertyPreferences": map[string]interface{}{"type": "object"},
		"budget":              map[string]interface{}{"type": "object"},
	},
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

// rawEntities mirrors the provider's response with lenient types.
type rawEntities struct {
	Motivation struct {
		Level      string   `json:"level"`
		Confidence float64  `json:"confidence"`
		Indicators []string `json:"indicators"`
	} `json:"motivation"`
	Timeframe struct {
		Range      string   `json:"range"`
		Confidence float64  `json:"confidence"`
		Indicators []string `json:"indicators"`
	} `json:"timeframe"`
	PropertyPreferences struct {
		Location     string   `json:"location"`
		PriceRange   string   `json:"priceRange"`
		PropertyType string   `json:"propertyType"`
		Beds         float64  `json:"beds"`
		Baths        float64  `json:"baths"`
		MustHaves    []string `json:"mustHaves"`
	} `json:"propertyPreferences"`
	Budget struct {
		Range       string `json:"range"`
		PreApproved bool   `json:"preApproved"`
		Mentioned   bool   `json:"mentioned"`
	} `json:"budget"`
}

// Extract runs mini-tier structured extraction over the conversation text.
// On any failure it returns DefaultEntities; the error never propagates.
func (h *Handler) Extract(ctx context.Context, text string) ExtractedEntities {
	callCtx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	response, err := h.client.Complete(callCtx, inference.Request{
		Tier:         Tier,
		SystemPrompt: systemPrompt,
		UserPrompt:   "Conversation:\n" + text,
		Temperature:  h.config.Temperature,
		ExpectJSON:   true,
	})
	if err != nil {
		h.logger.Warn("extraction call failed, returning defaults", map[string]interface{}{
			"error": err.Error(),
		})
		metrics.StageFallbacks.WithLabelValues(TaskType, "inference_error").Inc()
		return DefaultEntities()
	}

	entities, err := h.parse(response)
	if err != nil {
		h.logger.Warn("extraction response unparseable, returning defaults", map[string]interface{}{
			"error": err.Error(),
		})
		metrics.StageFallbacks.WithLabelValues(TaskType, "parse_error").Inc()
		return DefaultEntities()
	}

	h.logger.Info("entities extracted", map[string]interface{}{
		"motivation": string(entities.Motivation.Level),
		"timeframe":  string(entities.Timeframe.Range),
	})

	return entities
}

func (h *Handler) parse(response string) (ExtractedEntities, error) {
	cleaned := stripCodeFence(response)

	var generic map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &generic); err != nil {
		return ExtractedEntities{}, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(responseSchema),
		gojsonschema.NewGoLoader(generic),
	)
	if err != nil {
		return ExtractedEntities{}, fmt.Errorf("%w: schema validation: %v", ErrExtractionFailed, err)
	}
	if !result.Valid() {
		var details []string
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return ExtractedEntities{}, fmt.Errorf("%w: invalid response shape: %s", ErrExtractionFailed, strings.Join(details, "; "))
	}

	var raw rawEntities
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return ExtractedEntities{}, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	entities := DefaultEntities()
	entities.Motivation.Level = NormalizeMotivation(raw.Motivation.Level)
	entities.Motivation.Confidence = clampConfidence(raw.Motivation.Confidence)
	if raw.Motivation.Indicators != nil {
		entities.Motivation.Indicators = raw.Motivation.Indicators
	}
	entities.Timeframe.Range = NormalizeTimeframe(raw.Timeframe.Range)
	entities.Timeframe.Confidence = clampConfidence(raw.Timeframe.Confidence)
	if raw.Timeframe.Indicators != nil {
		entities.Timeframe.Indicators = raw.Timeframe.Indicators
	}
	entities.PropertyPreferences.Location = raw.PropertyPreferences.Location
	entities.PropertyPreferences.PriceRange = raw.PropertyPreferences.PriceRange
	entities.PropertyPreferences.PropertyType = raw.PropertyPreferences.PropertyType
	entities.PropertyPreferences.Beds = int(raw.PropertyPreferences.Beds)
	entities.PropertyPreferences.Baths = raw.PropertyPreferences.Baths
	if raw.PropertyPreferences.MustHaves != nil {
		entities.PropertyPreferences.MustHaves = raw.PropertyPreferences.MustHaves
	}
	entities.Budget.Range = raw.Budget.Range
	entities.Budget.PreApproved = raw.Budget.PreApproved
	entities.Budget.Mentioned = raw.Budget.Mentioned

	return entities, nil
}

// NormalizeMotivation maps free-text motivation levels onto the canonical
// enum via case-insensitive containment. Unrecognized input means unset.
func NormalizeMotivation(level string) models.MotivationLevel {
	l := strings.ToLower(level)
	switch {
	case strings.Contains(l, "high"):
		return models.MotivationHigh
	case strings.Contains(l, "med"):
		return models.MotivationMedium
	case strings.Contains(l, "low"):
		return models.MotivationLow
	default:
		return ""
	}
}

// NormalizeTimeframe maps free-text timeframes onto the canonical buckets
// via case-insensitive containment. Unrecognized input means unset.
func NormalizeTimeframe(tf string) models.Timeframe {
	l := strings.ToLower(tf)
	switch {
	case strings.Contains(l, "immediate"), strings.Contains(l, "asap"), strings.Contains(l, "right now"):
		return models.TimeframeImmediate
	case strings.Contains(l, "1-3"), strings.Contains(l, "1 to 3"), strings.Contains(l, "couple month"):
		return models.TimeframeOneToThree
	case strings.Contains(l, "3-6"), strings.Contains(l, "3 to 6"):
		return models.TimeframeThreeToSix
	case strings.Contains(l, "6+"), strings.Contains(l, "6 month"), strings.Contains(l, "next year"), strings.Contains(l, "long"):
		return models.TimeframeSixPlus
	default:
		return ""
	}
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

// stripCodeFence removes a surrounding markdown code fence, which some
// providers add around JSON even in structured mode.
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

// EntityConfidence scores how informative an extraction was: the average
// of the non-zero contributing signals, 0 when nothing was extracted.
func EntityConfidence(e ExtractedEntities) int {
	terms := []int{
		e.Motivation.Confidence,
		e.Timeframe.Confidence,
	}
	if e.Budget.Mentioned {
		terms = append(terms, 50)
	} else {
		terms = append(terms, 0)
	}
	if e.PropertyPreferences.Location != "" {
		terms = append(terms, 30)
	} else {
		terms = append(terms, 0)
	}
	if e.PropertyPreferences.Beds > 0 {
		terms = append(terms, 20)
	} else {
		terms = append(terms, 0)
	}

	sum, count := 0, 0
	for _, t := range terms {
		if t > 0 {
			sum += t
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / count
}

// AreEntitiesSufficient reports whether the extraction produced at least
// one usable attribute.
func AreEntitiesSufficient(e ExtractedEntities) bool {
	return e.Motivation.Level != "" ||
		e.Timeframe.Range != "" ||
		e.PropertyPreferences.Location != "" ||
		e.Budget.Mentioned
}
