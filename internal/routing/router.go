// Package routing decides which cost tier handles each analysis task.
//
// Routing is pure text heuristics: token estimates, hedging-word ambiguity,
// and a small set of high-precision intent patterns. It performs no I/O and
// never fails, so the orchestrator can call it before every stage.
package routing

import (
	"fmt"
	"regexp"
	"strings"
)

// TaskType identifies one analysis stage for routing purposes.
type TaskType string

const (
	TaskPatternDetection TaskType = "pattern_detection"
	TaskEntityExtraction TaskType = "entity_extraction"
	TaskStageDetection   TaskType = "stage_detection"
	TaskActionGeneration TaskType = "action_generation"
	TaskReplyGeneration  TaskType = "reply_generation"
)

// Tier is the execution path a task is routed to.
type Tier string

const (
	TierRuleBased Tier = "rule-based"
	TierMini      Tier = "mini"
	TierFull      Tier = "full"
)

// Pricing in USD per 1,000,000 tokens. These must match the billing
// constants of the inference provider exactly for cost-estimate parity.
const (
	MiniInputCostPerM  = 0.15
	MiniOutputCostPerM = 0.60
	FullInputCostPerM  = 2.50
	FullOutputCostPerM = 10.00

	// Fixed output-size assumptions per tier.
	miniOutputTokens = 100
	fullOutputTokens = 500
)

// TaskComplexity is the per-call complexity assessment that drives tier
// selection. Computed fresh on every call, never persisted.
type TaskComplexity struct {
	EstimatedTokens           int
	HasAmbiguity              bool
	RequiresReasoning         bool
	RequiresGeneration        bool
	HasHighConfidencePatterns bool
}

// ModelRoute is the routing decision for a single task.
type ModelRoute struct {
	Tier          Tier    `json:"tier"`
	EstimatedCost float64 `json:"estimatedCost"`
	Reason        string  `json:"reason"`
}

// hedgingWords mark ambiguous phrasing that benefits from a stronger model.
var hedgingWords = []string{
	"maybe", "possibly", "might", "could be", "not sure",
	"probably", "somewhat", "kind of", "sort of",
}

// highConfidencePatterns are precise enough that rule-based handling is
// reliable without an inference call.
var highConfidencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(want|looking|need)\s+to\s+(buy|purchase|sell)\b`),
	regexp.MustCompile(`(?i)\b(asap|urgent|immediately|right away)\b`),
	regexp.MustCompile(`(?i)\b(saw|visited|toured|viewing)\s+(the\s+)?(house|home|property|listing)\b`),
	regexp.MustCompile(`(?i)\boffer\s+(was\s+)?(accepted|approved)\b`),
	regexp.MustCompile(`(?i)\b(closed|closing)\s+(on\s+)?(the\s+)?(house|home|property|deal)\b`),
	regexp.MustCompile(`(?i)\bpre-?approv(ed|al)\b`),
}

// EstimateTokens estimates the token count of a prompt.
// GPT-style heuristic: ~4 characters per token, rounded up.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// AssessComplexity analyzes a task's input text and returns the signals
// the router uses to pick a tier.
func AssessComplexity(taskType TaskType, text string) TaskComplexity {
	lower := strings.ToLower(text)

	hasAmbiguity := false
	for _, w := range hedgingWords {
		if strings.Contains(lower, w) {
			hasAmbiguity = true
			break
		}
	}

	hasPatterns := false
	for _, re := range highConfidencePatterns {
		if re.MatchString(text) {
			hasPatterns = true
			break
		}
	}

	return TaskComplexity{
		EstimatedTokens:           EstimateTokens(text),
		HasAmbiguity:              hasAmbiguity,
		RequiresReasoning:         taskType == TaskStageDetection || taskType == TaskActionGeneration,
		RequiresGeneration:        taskType == TaskReplyGeneration,
		HasHighConfidencePatterns: hasPatterns,
	}
}

// Route picks the cheapest tier that can handle the task. Pure and total:
// every input yields a route with a non-negative cost estimate.
func Route(taskType TaskType, text string) ModelRoute {
	c := AssessComplexity(taskType, text)

	if taskType == TaskPatternDetection && c.HasHighConfidencePatterns {
		return ModelRoute{
			Tier:          TierRuleBased,
			EstimatedCost: 0,
			Reason:        "high-confidence patterns present, rule-based detection is sufficient",
		}
	}

	if !c.RequiresReasoning && !c.RequiresGeneration {
		cost := float64(c.EstimatedTokens)*MiniInputCostPerM/1_000_000 +
			miniOutputTokens*MiniOutputCostPerM/1_000_000
		return ModelRoute{
			Tier:          TierMini,
			EstimatedCost: cost,
			Reason:        fmt.Sprintf("structured task without reasoning, mini model handles ~%d tokens", c.EstimatedTokens),
		}
	}

	cost := float64(c.EstimatedTokens)*FullInputCostPerM/1_000_000 +
		fullOutputTokens*FullOutputCostPerM/1_000_000
	return ModelRoute{
		Tier:          TierFull,
		EstimatedCost: cost,
		Reason:        fmt.Sprintf("%s requires reasoning or generation, routing to full model", taskType),
	}
}
