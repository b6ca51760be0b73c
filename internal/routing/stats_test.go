package routing

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsageStats_RecordAndSnapshot(t *testing.T) {
	stats := NewUsageStats()

	stats.Record(TierRuleBased, 0)
	stats.Record(TierMini, 0.0001)
	stats.Record(TierMini, 0.0001)
	stats.Record(TierFull, 0.005)

	snap := stats.Snapshot()
	assert.Equal(t, 1, snap.RuleBasedCount)
	assert.Equal(t, 2, snap.MiniCount)
	assert.Equal(t, 1, snap.FullCount)
	assert.InDelta(t, 0.0052, snap.TotalEstimatedCost, 1e-9)
}

func TestUsageStats_Reset(t *testing.T) {
	stats := NewUsageStats()
	stats.Record(TierFull, 1.5)

	stats.Reset()

	snap := stats.Snapshot()
	assert.Equal(t, UsageSnapshot{}, snap)
}

func TestUsageStats_Summary(t *testing.T) {
	stats := NewUsageStats()
	assert.Equal(t, "no tasks processed yet", stats.Summary())

	stats.Record(TierRuleBased, 0)
	stats.Record(TierFull, 0.0075)
	assert.Contains(t, stats.Summary(), "2 tasks")
	assert.Contains(t, stats.Summary(), "$0.007500")
}

func TestUsageStats_ConcurrentRecord(t *testing.T) {
	stats := NewUsageStats()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stats.Record(TierMini, 0.001)
		}()
	}
	wg.Wait()

	snap := stats.Snapshot()
	assert.Equal(t, 50, snap.MiniCount)
	assert.InDelta(t, 0.05, snap.TotalEstimatedCost, 1e-9)
}
