package replygen

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

func TestGenerate_Success(t *testing.T) {
	client := &mockClient{response: `{
		"greeting": "Hi Jane,",
		"acknowledgment": "Glad the showing went well.",
		"valueProposition": "I can get comps over tonight so we price the offer right.",
		"nextStep": "Shall we draft the offer tomorrow morning?",
		"closing": "Talk soon!",
		"fullReply": "Hi Jane, glad the showing went well. Shall we draft the offer tomorrow morning?",
		"tone": "Friendly",
		"editSuggestions": ["confirm the offer deadline first"]
	}`}
	handler := NewHandler(DefaultConfig(), client, logger.NewTestLogger(t))

	actx := models.AnalysisContext{ContactName: "Jane Doe", CurrentStage: models.StageActiveOpportunity}
	draft := handler.Generate(context.Background(), "conversation", actx)

	assert.Equal(t, "Hi Jane,", draft.Greeting)
	assert.Equal(t, ToneFriendly, draft.Tone)
	assert.Equal(t, []string{"confirm the offer deadline first"}, draft.EditSuggestions)
	assert.NotEmpty(t, draft.FullReply)

	require.Len(t, client.requests, 1)
	assert.Equal(t, routing.TierFull, client.requests[0].Tier)
}

func TestGenerate_FailureUsesTemplate(t *testing.T) {
	tests := []struct {
		name   string
		client *mockClient
	}{
		{"inference error", &mockClient{err: errors.New("down")}},
		{"not json", &mockClient{response: "just say thanks"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler(DefaultConfig(), tt.client, logger.NewTestLogger(t))

			actx := models.AnalysisContext{ContactName: "Jane Doe", CurrentStage: models.StageLead}
			draft := handler.Generate(context.Background(), "conversation", actx)

			assert.Equal(t, "Hi Jane,", draft.Greeting)
			assert.Equal(t, ToneFriendly, draft.Tone)
			assert.Contains(t, draft.FullReply, "home search")
			assert.Equal(t, []string{"template reply, personalize before sending"}, draft.EditSuggestions)
		})
	}
}

func TestGenerate_ComposesFullReplyWhenMissing(t *testing.T) {
	client := &mockClient{response: `{
		"greeting": "Hi Jane,",
		"nextStep": "Let's connect Friday.",
		"closing": "Best",
		"tone": "Professional"
	}`}
	handler := NewHandler(DefaultConfig(), client, logger.NewTestLogger(t))

	draft := handler.Generate(context.Background(), "text", models.AnalysisContext{ContactName: "Jane"})
	assert.Equal(t, "Hi Jane,\n\nLet's connect Friday.\n\nBest", draft.FullReply)
}

func TestNormalizeTone(t *testing.T) {
	tests := []struct {
		in   string
		want Tone
	}{
		{"Friendly", ToneFriendly},
		{"warm and friendly", ToneFriendly},
		{"URGENT", ToneUrgent},
		{"casual", ToneCasual},
		{"professional", ToneProfessional},
		{"snarky", ToneProfessional},
		{"", ToneProfessional},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeTone(tt.in), "input %q", tt.in)
	}
}

func TestTemplateDraft(t *testing.T) {
	tests := []struct {
		name     string
		actx     models.AnalysisContext
		wantTone Tone
		contains string
	}{
		{
			name:     "lead template",
			actx:     models.AnalysisContext{ContactName: "Jane Doe", CurrentStage: models.StageLead},
			wantTone: ToneFriendly,
			contains: "reaching out",
		},
		{
			name:     "active opportunity template",
			actx:     models.AnalysisContext{ContactName: "Jane Doe", CurrentStage: models.StageActiveOpportunity},
			wantTone: ToneFriendly,
			contains: "new listings",
		},
		{
			name:     "generic template for other stages",
			actx:     models.AnalysisContext{ContactName: "Jane Doe", CurrentStage: models.StageClosed},
			wantTone: ToneProfessional,
			contains: "Thanks for your message",
		},
		{
			name:     "missing name falls back to there",
			actx:     models.AnalysisContext{CurrentStage: models.StageLead},
			wantTone: ToneFriendly,
			contains: "Hi there,",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := TemplateDraft(tt.actx)
			assert.Equal(t, tt.wantTone, draft.Tone)
			assert.Contains(t, draft.FullReply, tt.contains)
		})
	}
}

func TestFormatForChannel(t *testing.T) {
	draft := Draft{
		Greeting:         "Hi Jane,",
		Acknowledgment:   "Glad   the showing went well.",
		ValueProposition: "I can pull comps tonight.",
		NextStep:         "Offer tomorrow?",
		Closing:          "Talk soon!",
		FullReply:        "prebuilt full reply",
	}

	t.Run("text collapses to one line", func(t *testing.T) {
		got := FormatForChannel(draft, "text")
		assert.Equal(t, "Hi Jane, Glad the showing went well. Offer tomorrow?", got)
	})

	t.Run("email composes all sections", func(t *testing.T) {
		got := FormatForChannel(draft, "email")
		assert.Contains(t, got, "I can pull comps tonight.")
		assert.Contains(t, got, "\n\n")
	})

	t.Run("unknown channel returns full reply", func(t *testing.T) {
		assert.Equal(t, "prebuilt full reply", FormatForChannel(draft, "pigeon"))
	})
}
