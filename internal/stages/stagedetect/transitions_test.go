package stagedetect

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"conversation-intel/internal/models"
)

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		name       string
		from, to   models.Stage
		wantValid  bool
		wantReason string
	}{
		{
			name:      "lead advances to new opportunity",
			from:      models.StageLead,
			to:        models.StageNewOpportunity,
			wantValid: true,
		},
		{
			name:      "self loop stays valid",
			from:      models.StageActiveOpportunity,
			to:        models.StageActiveOpportunity,
			wantValid: true,
		},
		{
			name:      "under contract advances to closed",
			from:      models.StageUnderContract,
			to:        models.StageClosed,
			wantValid: true,
		},
		{
			name:      "active opportunity may fall back to new opportunity",
			from:      models.StageActiveOpportunity,
			to:        models.StageNewOpportunity,
			wantValid: true,
		},
		{
			name:       "lead jumping to active opportunity is a permitted regression path",
			from:       models.StageLead,
			to:         models.StageActiveOpportunity,
			wantValid:  true,
			wantReason: "Reverse transition allowed",
		},
		{
			name:      "lead cannot jump straight to closed",
			from:      models.StageLead,
			to:        models.StageClosed,
			wantValid: false,
		},
		{
			name:      "closed is terminal",
			from:      models.StageClosed,
			to:        models.StageLead,
			wantValid: false,
		},
		{
			name:      "closed self loop allowed",
			from:      models.StageClosed,
			to:        models.StageClosed,
			wantValid: true,
		},
		{
			name:      "unknown origin stage rejected",
			from:      models.Stage("Prospect"),
			to:        models.StageLead,
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := ValidateTransition(tt.from, tt.to)
			assert.Equal(t, tt.wantValid, check.Valid)
			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, check.Reason)
			}
			if !tt.wantValid {
				assert.NotEmpty(t, check.Reason)
			}
		})
	}
}

func TestTransitionLevelFor(t *testing.T) {
	tests := []struct {
		name       string
		confidence int
		want       TransitionLevel
	}{
		{"high confidence auto-applies", 95, LevelAuto},
		{"boundary 90 auto-applies", 90, LevelAuto},
		{"mid confidence needs review", 75, LevelReview},
		{"boundary 70 needs review", 70, LevelReview},
		{"low confidence stays manual", 50, LevelManual},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Result{SuggestedTransition: &SuggestedTransition{
				From:       models.StageLead,
				To:         models.StageNewOpportunity,
				Confidence: tt.confidence,
			}}
			assert.Equal(t, tt.want, TransitionLevelFor(result))
		})
	}

	t.Run("no suggestion is manual", func(t *testing.T) {
		assert.Equal(t, LevelManual, TransitionLevelFor(Result{}))
	})
}

func TestShouldTransition(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   bool
	}{
		{
			name:   "strong suggestion",
			result: Result{SuggestedTransition: &SuggestedTransition{Confidence: 92}},
			want:   true,
		},
		{
			name: "confident classification with two positives",
			result: Result{
				Confidence: 75,
				Indicators: Indicators{Positive: []string{"touring weekly", "lender engaged"}},
			},
			want: true,
		},
		{
			name: "confident classification with one positive",
			result: Result{
				Confidence: 75,
				Indicators: Indicators{Positive: []string{"touring weekly"}},
			},
			want: false,
		},
		{
			name: "weak suggestion and weak classification",
			result: Result{
				Confidence:          60,
				SuggestedTransition: &SuggestedTransition{Confidence: 80},
				Indicators:          Indicators{Positive: []string{"a", "b"}},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldTransition(tt.result))
		})
	}
}

func TestStageProgression(t *testing.T) {
	suggestion := func(to models.Stage, conf int) Result {
		return Result{SuggestedTransition: &SuggestedTransition{To: to, Confidence: conf}}
	}

	assert.Equal(t, 85, StageProgression(models.StageLead, suggestion(models.StageNewOpportunity, 85)))
	assert.Equal(t, -80, StageProgression(models.StageActiveOpportunity, suggestion(models.StageLead, 80)))
	assert.Equal(t, 0, StageProgression(models.StageLead, suggestion(models.StageLead, 90)))
	assert.Equal(t, 0, StageProgression(models.StageLead, Result{}))
	assert.Equal(t, 0, StageProgression(models.Stage("bogus"), suggestion(models.StageClosed, 99)))
}
