package routing

import (
	"fmt"
	"sync"
)

// UsageStats tracks cumulative tier usage and estimated spend across
// analyses. It is injected into the orchestrator rather than held as
// package state so concurrent callers can own separate counters, and it
// is safe for concurrent use. Reset is explicit and caller-triggered.
type UsageStats struct {
	mu sync.Mutex

	ruleBasedCount     int
	miniCount          int
	fullCount          int
	totalEstimatedCost float64
}

// UsageSnapshot is a point-in-time copy of the counters.
type UsageSnapshot struct {
	RuleBasedCount     int     `json:"ruleBasedCount"`
	MiniCount          int     `json:"miniCount"`
	FullCount          int     `json:"fullCount"`
	TotalEstimatedCost float64 `json:"totalEstimatedCost"`
}

// NewUsageStats returns zeroed usage counters.
func NewUsageStats() *UsageStats {
	return &UsageStats{}
}

// Record registers one executed task on the given tier.
func (s *UsageStats) Record(tier Tier, estimatedCost float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch tier {
	case TierRuleBased:
		s.ruleBasedCount++
	case TierMini:
		s.miniCount++
	case TierFull:
		s.fullCount++
	}
	s.totalEstimatedCost += estimatedCost
}

// Snapshot returns a copy of the current counters.
func (s *UsageStats) Snapshot() UsageSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return UsageSnapshot{
		RuleBasedCount:     s.ruleBasedCount,
		MiniCount:          s.miniCount,
		FullCount:          s.fullCount,
		TotalEstimatedCost: s.totalEstimatedCost,
	}
}

// Reset clears all counters. Callers trigger this at billing-period or
// test boundaries; nothing resets implicitly.
func (s *UsageStats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ruleBasedCount = 0
	s.miniCount = 0
	s.fullCount = 0
	s.totalEstimatedCost = 0
}

// Summary returns a one-line human-readable report.
func (s *UsageStats) Summary() string {
	snap := s.Snapshot()
	total := snap.RuleBasedCount + snap.MiniCount + snap.FullCount
	if total == 0 {
		return "no tasks processed yet"
	}
	return fmt.Sprintf(
		"%d tasks (%d rule-based, %d mini, %d full) | estimated cost $%.6f",
		total, snap.RuleBasedCount, snap.MiniCount, snap.FullCount, snap.TotalEstimatedCost,
	)
}
