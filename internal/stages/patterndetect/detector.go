// Package patterndetect is the rule-based signal detector. It is the only
// stage with zero inference cost: eight regex categories over the raw
// conversation text, plus contact/property extraction helpers.
package patterndetect

import (
	"regexp"
)

// patternCategory couples a signal tag with its detection regex and the
// setter for the corresponding flag. Categories run in a fixed order so
// MatchedPatterns is deterministic.
type patternCategory struct {
	tag   string
	regex *regexp.Regexp
	set   func(*PatternSignals)
}

var categories = []patternCategory{
	{
		tag:   "buying_intent",
		regex: regexp.MustCompile(`(?i)\b(want|need|looking|ready|hoping)\s+to\s+buy\b|\bbuy(ing)?\s+a\s+(house|home|property|condo|place)\b|\bhouse\s+hunting\b`),
		set:   func(s *PatternSignals) { s.BuyingIntent = true },
	},
	{
		tag:   "selling_intent",
		regex: regexp.MustCompile(`(?i)\b(want|need|looking|ready|hoping)\s+to\s+sell\b|\bsell(ing)?\s+(my|our|the)\s+(house|home|property|condo|place)\b|\blist\s+(my|our)\s+(house|home|property)\b`),
		set:   func(s *PatternSignals) { s.SellingIntent = true },
	},
	{
		tag:   "urgency",
		regex: regexp.MustCompile(`(?i)\b(asap|urgent(ly)?|immediately|right away|as soon as possible|time sensitive|this week)\b`),
		set:   func(s *PatternSignals) { s.Urgency = true },
	},
	{
		tag:   "specific_property",
		regex: regexp.MustCompile(`(?i)\b\d+\s*(bed(room)?s?|br|bath(room)?s?|ba)\b|\$\s?[\d,]+|\b\d+\s+[A-Z][a-z]+\s+(St|Street|Ave|Avenue|Rd|Road|Dr|Drive|Ln|Lane|Blvd|Ct|Court)\b`),
		set:   func(s *PatternSignals) { s.SpecificProperty = true },
	},
	{
		tag:   "preapproval",
		regex: regexp.MustCompile(`(?i)\bpre-?approv(ed|al)\b|\bpre-?qualif(ied|ication)\b|\blender\s+approved\b`),
		set:   func(s *PatternSignals) { s.PreApproval = true },
	},
	{
		tag:   "showings",
		regex: regexp.MustCompile(`(?i)\b(showing|open house|walk-?through)\b|\b(tour(ed)?|visit(ed)?|saw|see|view(ed|ing)?)\s+(the\s+|a\s+)?(house|home|property|listing|place)\b`),
		set:   func(s *PatternSignals) { s.Showings = true },
	},
	{
		tag:   "offer_accepted",
		regex: regexp.MustCompile(`(?i)\boffer\s+(was\s+|got\s+)?(accepted|approved)\b|\baccepted\s+(my|our|the)\s+offer\b|\bunder\s+contract\b`),
		set:   func(s *PatternSignals) { s.OfferAccepted = true },
	},
	{
		tag:   "closing",
		regex: regexp.MustCompile(`(?i)\bclos(ed|ing)\s+(on|date|costs|day|escrow)\b|\bwe\s+closed\b|\bkeys\s+in\s+hand\b|\bdeal\s+is\s+done\b`),
		set:   func(s *PatternSignals) { s.Closing = true },
	},
}

// confidenceStaircase maps the count of distinct matched categories to a
// confidence score. Non-linear on purpose: one strong signal is already
// worth 70, each additional category adds less.
func confidenceStaircase(matched int) int {
	switch {
	case matched <= 0:
		return 0
	case matched == 1:
		return 70
	case matched == 2:
		return 80
	case matched == 3:
		return 90
	default:
		return 95
	}
}

// DetectPatterns runs all eight signal categories against the text in
// fixed order and returns the aggregated signals.
func DetectPatterns(text string) PatternSignals {
	signals := PatternSignals{
		MatchedPatterns: []string{},
	}

	for _, cat := range categories {
		if cat.regex.MatchString(text) {
			cat.set(&signals)
			signals.MatchedPatterns = append(signals.MatchedPatterns, cat.tag)
		}
	}

	signals.Confidence = confidenceStaircase(len(signals.MatchedPatterns))
	return signals
}

// IsSufficient reports whether rule-based detection alone is confident
// enough that no inference escalation is warranted.
func IsSufficient(signals PatternSignals) bool {
	return signals.Confidence >= 80
}
