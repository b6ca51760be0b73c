package stagedetect

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conversation-intel/internal/common/logger"
	"conversation-intel/internal/inference"
	"conversation-intel/internal/models"
	"conversation-intel/internal/routing"
)

type mockClient struct {
	response string
	err      error
	requests []inference.Request
}

func (m *mockClient) Complete(_ context.Context, req inference.Request) (string, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func TestDetect_Success(t *testing.T) {
	client := &mockClient{response: `{
		"stage": "Active Opportunity",
		"confidence": 85,
		"reasoning": "client is touring properties weekly",
		"suggestedTransition": {"from": "New Opportunity", "to": "Active Opportunity", "confidence": 88},
		"indicators": {"positive": ["touring weekly", "asked about offers"], "negative": []}
	}`}
	handler := NewHandler(DefaultConfig(), client, logger.NewTestLogger(t))

	result := handler.Detect(context.Background(), "conversation text", models.StageNewOpportunity)

	assert.Equal(t, models.StageActiveOpportunity, result.CurrentStage)
	assert.Equal(t, 85, result.Confidence)
	require.NotNil(t, result.SuggestedTransition)
	assert.Equal(t, models.StageNewOpportunity, result.SuggestedTransition.From)
	assert.Equal(t, models.StageActiveOpportunity, result.SuggestedTransition.To)
	assert.Equal(t, 88, result.SuggestedTransition.Confidence)
	assert.Len(t, result.Indicators.Positive, 2)

	require.Len(t, client.requests, 1)
	assert.Equal(t, routing.TierFull, client.requests[0].Tier)
	assert.Contains(t, client.requests[0].UserPrompt, "New Opportunity")
}

func TestDetect_FailureKeepsCurrentStage(t *testing.T) {
	tests := []struct {
		name   string
		client *mockClient
	}{
		{"inference error", &mockClient{err: errors.New("timeout")}},
		{"not json", &mockClient{response: "probably active"}},
		{"missing required stage field", &mockClient{response: `{"confidence": 80}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler(DefaultConfig(), tt.client, logger.NewTestLogger(t))

			result := handler.Detect(context.Background(), "text", models.StageUnderContract)

			assert.Equal(t, models.StageUnderContract, result.CurrentStage)
			assert.Equal(t, 0, result.Confidence)
			assert.Equal(t, "unavailable", result.Reasoning)
			assert.Nil(t, result.SuggestedTransition)
		})
	}
}

func TestDetect_FailureWithUnknownCurrentStageFallsBackToLead(t *testing.T) {
	handler := NewHandler(DefaultConfig(), &mockClient{err: errors.New("down")}, logger.NewTestLogger(t))

	result := handler.Detect(context.Background(), "text", models.Stage("garbage"))
	assert.Equal(t, models.StageLead, result.CurrentStage)
}

func TestNormalizeStage(t *testing.T) {
	tests := []struct {
		in       string
		fallback models.Stage
		want     models.Stage
	}{
		{"Lead", models.StageClosed, models.StageLead},
		{"active opportunity", models.StageLead, models.StageActiveOpportunity},
		{"The client is Under Contract now", models.StageLead, models.StageUnderContract},
		{"closed", models.StageLead, models.StageClosed},
		{"nurture", models.StageNewOpportunity, models.StageNewOpportunity},
		{"nurture", models.Stage("bogus"), models.StageLead},
		{"", models.StageActiveOpportunity, models.StageActiveOpportunity},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeStage(tt.in, tt.fallback), "input %q", tt.in)
	}
}

func TestDetect_ClampsConfidence(t *testing.T) {
	client := &mockClient{response: `{"stage": "Lead", "confidence": 140, "reasoning": "x", "indicators": {"positive": [], "negative": []}}`}
	handler := NewHandler(DefaultConfig(), client, logger.NewTestLogger(t))

	result := handler.Detect(context.Background(), "text", models.StageLead)
	assert.Equal(t, 100, result.Confidence)
}
