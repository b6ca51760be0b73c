package replygen

import (
	"fmt"
	"regexp"
	"strings"

	"conversation-intel/internal/models"
)

// TemplateDraft builds the stage-specific fallback draft using the
// contact's first name. Distinct templates exist for Lead and Active
// Opportunity; every other stage shares the generic one.
func TemplateDraft(actx models.AnalysisContext) Draft {
	first := actx.FirstName()
	if first == "" {
		first = "there"
	}

	var draft Draft
	switch actx.CurrentStage {
	case models.StageLead:
		draft = Draft{
			Greeting:         fmt.Sprintf("Hi %s,", first),
			Acknowledgment:   "Thanks for reaching out about your home search.",
			ValueProposition: "I work with buyers at every budget in this area and can help you narrow things down quickly.",
			NextStep:         "Would a quick call this week work to talk through what you're looking for?",
			Closing:          "Looking forward to it!",
			Tone:             ToneFriendly,
		}
	case models.StageActiveOpportunity:
		draft = Draft{
			Greeting:         fmt.Sprintf("Hi %s,", first),
			Acknowledgment:   "Great progress so far on your search.",
			ValueProposition: "I've got a few new listings that match what we've been looking at together.",
			NextStep:         "Want me to set up showings for this weekend?",
			Closing:          "Talk soon!",
			Tone:             ToneFriendly,
		}
	default:
		draft = Draft{
			Greeting:         fmt.Sprintf("Hi %s,", first),
			Acknowledgment:   "Thanks for your message.",
			ValueProposition: "I'm here to help with whatever you need next.",
			NextStep:         "Let me know a good time to connect.",
			Closing:          "Best regards",
			Tone:             ToneProfessional,
		}
	}

	draft.EditSuggestions = []string{"template reply, personalize before sending"}
	draft.FullReply = ComposeFullReply(draft)
	return draft
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// FormatForChannel renders the draft for a delivery channel. "text"
// collapses greeting, acknowledgment and next step into a single line;
// "email" composes all five sections with paragraph breaks. Any other
// channel gets the full reply as is.
func FormatForChannel(d Draft, channel string) string {
	switch strings.ToLower(channel) {
	case "text":
		combined := strings.Join([]string{d.Greeting, d.Acknowledgment, d.NextStep}, " ")
		return strings.TrimSpace(whitespaceRun.ReplaceAllString(combined, " "))
	case "email":
		return ComposeFullReply(d)
	default:
		return d.FullReply
	}
}
