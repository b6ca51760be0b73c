package orchestrator

import (
	"conversation-intel/internal/stages/actiongen"
	"conversation-intel/internal/stages/entityextract"
	"conversation-intel/internal/stages/patterndetect"
	"conversation-intel/internal/stages/replygen"
	"conversation-intel/internal/stages/stagedetect"
)

// Metadata summarizes one analysis run.
type Metadata struct {
	TotalEstimatedCost float64 `json:"totalEstimatedCost"`
	UsedRuleBased      bool    `json:"usedRuleBased"`
	UsedMini           bool    `json:"usedMini"`
	UsedFull           bool    `json:"usedFull"`
	ProcessingTimeMs   int64   `json:"processingTimeMs"`
	OverallConfidence  int     `json:"overallConfidence"`
}

// Result is the aggregate output of a full analysis. It is always fully
// populated: stages that were skipped or degraded leave their typed
// defaults in place, never absent fields. Reply is nil only when the
// caller disabled reply generation or the stage was skipped.
type Result struct {
	AnalysisID string                          `json:"analysisId"`
	Patterns   patterndetect.PatternSignals    `json:"patterns"`
	Entities   entityextract.ExtractedEntities `json:"entities"`
	Stage      stagedetect.Result              `json:"stage"`
	NextAction actiongen.Recommendation        `json:"nextAction"`
	Reply      *replygen.Draft                 `json:"reply,omitempty"`
	Metadata   Metadata                        `json:"metadata"`
}

// QuickResult is the pattern-only fast path output.
type QuickResult struct {
	Patterns      patterndetect.PatternSignals `json:"patterns"`
	PriorityScore int                          `json:"priorityScore"`
}
