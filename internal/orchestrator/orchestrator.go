// Package orchestrator sequences the analysis stages over one
// conversation: pattern detection, entity extraction, stage detection,
// action generation and reply drafting, with per-stage cost routing and
// graceful degradation. It never persists anything and never throws; the
// caller owns everything that happens after the result is returned.
package orchestrator

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"conversation-intel/internal/common/logger"
	"conversation-intel/internal/common/metrics"
	"conversation-intel/internal/inference"
	"conversation-intel/internal/models"
	"conversation-intel/internal/routing"
	"conversation-intel/internal/stages/actiongen"
	"conversation-intel/internal/stages/entityextract"
	"conversation-intel/internal/stages/patterndetect"
	"conversation-intel/internal/stages/replygen"
	"conversation-intel/internal/stages/stagedetect"
)

// Orchestrator wires the five stages to a shared inference client and an
// injected usage counter. One Orchestrator serves concurrent analyses;
// each call owns its own Result.
type Orchestrator struct {
	entities *entityextract.Handler
	stages   *stagedetect.Handler
	actions  *actiongen.Handler
	replies  *replygen.Handler
	usage    *routing.UsageStats
	logger   logger.Logger
}

// New builds an orchestrator with default stage configs.
func New(client inference.Client, usage *routing.UsageStats, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		entities: entityextract.NewHandler(entityextract.DefaultConfig(), client, log),
		stages:   stagedetect.NewHandler(stagedetect.DefaultConfig(), client, log),
		actions:  actiongen.NewHandler(actiongen.DefaultConfig(), client, log),
		replies:  replygen.NewHandler(replygen.DefaultConfig(), client, log),
		usage:    usage,
		logger:   log.With(map[string]interface{}{"component": "orchestrator"}),
	}
}

// Usage exposes the injected usage counters.
func (o *Orchestrator) Usage() *routing.UsageStats {
	return o.usage
}

// runGate routes the task and reports whether the stage's wired tier won.
// A mismatch is a silent skip: the stage default stands and only a metric
// records it. The router is never escalated to match the stage.
func (o *Orchestrator) runGate(taskType routing.TaskType, text string, wired routing.Tier, result *Result) bool {
	route := routing.Route(taskType, text)
	if route.Tier != wired {
		metrics.StageSkipped.WithLabelValues(string(taskType), string(route.Tier)).Inc()
		o.logger.Debug("stage skipped by routing gate", map[string]interface{}{
			"taskType":   string(taskType),
			"wiredTier":  string(wired),
			"routedTier": string(route.Tier),
		})
		return false
	}

	o.usage.Record(route.Tier, route.EstimatedCost)
	metrics.StageExecutions.WithLabelValues(string(taskType), string(route.Tier)).Inc()
	metrics.EstimatedCost.Add(route.EstimatedCost)

	result.Metadata.TotalEstimatedCost += route.EstimatedCost
	switch route.Tier {
	case routing.TierRuleBased:
		result.Metadata.UsedRuleBased = true
	case routing.TierMini:
		result.Metadata.UsedMini = true
	case routing.TierFull:
		result.Metadata.UsedFull = true
	}
	return true
}

// Analyze runs the full stage sequence. It always returns a fully
// populated Result; any unexpected panic is converted into the partial
// result assembled so far.
func (o *Orchestrator) Analyze(ctx context.Context, text string, actx models.AnalysisContext) (result Result) {
	start := time.Now()

	result = Result{
		AnalysisID: uuid.NewString(),
		Patterns:   patterndetect.PatternSignals{MatchedPatterns: []string{}},
		Entities:   entityextract.DefaultEntities(),
		Stage:      stagedetect.DefaultResult(actx.CurrentStage),
		NextAction: actiongen.Recommendation{BehavioralFactors: []string{}},
	}

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("analysis panicked, returning partial result", map[string]interface{}{
				"analysisId": result.AnalysisID,
				"panic":      r,
			})
		}
		result.Metadata.ProcessingTimeMs = time.Since(start).Milliseconds()
		result.Metadata.OverallConfidence = overallConfidence(result)
		metrics.AnalysisDuration.WithLabelValues("full").Observe(time.Since(start).Seconds())
	}()

	if o.runGate(routing.TaskPatternDetection, text, routing.TierRuleBased, &result) {
		result.Patterns = patterndetect.DetectPatterns(text)
	}

	if o.runGate(routing.TaskEntityExtraction, text, entityextract.Tier, &result) {
		result.Entities = o.entities.Extract(ctx, text)
	}

	if o.runGate(routing.TaskStageDetection, text, stagedetect.Tier, &result) {
		result.Stage = o.stages.Detect(ctx, text, actx.CurrentStage)
	}

	if o.runGate(routing.TaskActionGeneration, text, actiongen.Tier, &result) {
		result.NextAction = o.actions.Generate(ctx, text, actx)
	}

	if actx.WantsReply() {
		if o.runGate(routing.TaskReplyGeneration, text, replygen.Tier, &result) {
			draft := o.replies.Generate(ctx, text, actx)
			result.Reply = &draft
		}
	}

	o.logger.Info("analysis completed", map[string]interface{}{
		"analysisId":    result.AnalysisID,
		"contactId":     actx.ContactID,
		"estimatedCost": result.Metadata.TotalEstimatedCost,
	})

	return result
}

// overallConfidence is the rounded mean of the non-zero signals across
// stages. Zero only when every contributing signal is absent.
func overallConfidence(result Result) int {
	signals := []int{
		result.Patterns.Confidence,
		result.Entities.Motivation.Confidence,
		result.Entities.Timeframe.Confidence,
		result.Stage.Confidence,
		result.NextAction.Urgency * 10,
	}

	sum, count := 0, 0
	for _, s := range signals {
		if s > 0 {
			sum += s
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(count)))
}

// BatchExtract runs batch entity extraction over many conversation
// texts, recording mini-tier usage for each item.
func (o *Orchestrator) BatchExtract(ctx context.Context, items []entityextract.BatchItem) map[string]entityextract.ExtractedEntities {
	for _, item := range items {
		route := routing.Route(routing.TaskEntityExtraction, item.Text)
		o.usage.Record(routing.TierMini, route.EstimatedCost)
		metrics.StageExecutions.WithLabelValues(string(routing.TaskEntityExtraction), string(routing.TierMini)).Inc()
		metrics.EstimatedCost.Add(route.EstimatedCost)
	}
	return o.entities.BatchExtract(ctx, items)
}

// QuickAnalyze is the pattern-only fast path: no inference calls, just
// signals and a 0-100 priority score for triage.
func (o *Orchestrator) QuickAnalyze(text string) QuickResult {
	start := time.Now()
	signals := patterndetect.DetectPatterns(text)

	score := 0
	if signals.Urgency {
		score += 30
	}
	if signals.BuyingIntent || signals.SellingIntent {
		score += 20
	}
	if signals.Showings {
		score += 15
	}
	if signals.OfferAccepted {
		score += 25
	}
	if signals.Closing {
		score += 10
	}
	if score > 100 {
		score = 100
	}

	metrics.AnalysisDuration.WithLabelValues("quick").Observe(time.Since(start).Seconds())

	return QuickResult{
		Patterns:      signals,
		PriorityScore: score,
	}
}
