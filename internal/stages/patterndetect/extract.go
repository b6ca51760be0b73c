package patterndetect

import (
	"regexp"
	"strconv"
	"strings"
)

var phonePatterns = []*regexp.Regexp{
	// (555) 123-4567, 555-123-4567, 555.123.4567, 555 123 4567
	regexp.MustCompile(`\(\d{3}\)[-.\s]?\d{3}[-.\s]?\d{4}`),
	regexp.MustCompile(`\b\d{3}[-.\s]\d{3}[-.\s]\d{4}\b`),
	// Bare ten-digit runs
	regexp.MustCompile(`\b\d{10}\b`),
}

var nonDigits = regexp.MustCompile(`\D`)

// ExtractPhones finds phone numbers in text. The three patterns overlap on
// purpose; results are normalized to digits only and deduplicated, and
// anything under ten digits is discarded.
func ExtractPhones(text string) []string {
	seen := make(map[string]bool)
	var phones []string

	for _, re := range phonePatterns {
		for _, match := range re.FindAllString(text, -1) {
			digits := nonDigits.ReplaceAllString(match, "")
			if len(digits) < 10 || seen[digits] {
				continue
			}
			seen[digits] = true
			phones = append(phones, digits)
		}
	}

	return phones
}

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// ExtractEmails finds email addresses. Syntax match only, no validation.
func ExtractEmails(text string) []string {
	seen := make(map[string]bool)
	var emails []string
	for _, match := range emailPattern.FindAllString(text, -1) {
		lower := strings.ToLower(match)
		if seen[lower] {
			continue
		}
		seen[lower] = true
		emails = append(emails, match)
	}
	return emails
}

// ExtractContactInfo bundles phone and email extraction.
func ExtractContactInfo(text string) ContactInfo {
	return ContactInfo{
		Phones: ExtractPhones(text),
		Emails: ExtractEmails(text),
	}
}

var (
	bedsPattern  = regexp.MustCompile(`(?i)(\d+)\s*(?:bed(?:room)?s?|br)\b`)
	bathsPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:bath(?:room)?s?|ba)\b`)
	pricePattern = regexp.MustCompile(`(?i)\$\s?([\d,]+(?:\.\d+)?)\s*(k)?`)
	sqftPattern  = regexp.MustCompile(`(?i)([\d,]+)\s*(?:sq\.?\s?ft\.?|sqft|square\s+feet)`)
)

// ExtractPropertyNumbers pulls beds, baths, price and square footage out
// of text. Only the first match per category is kept.
func ExtractPropertyNumbers(text string) PropertyNumbers {
	var numbers PropertyNumbers

	if m := bedsPattern.FindStringSubmatch(text); m != nil {
		numbers.Beds, _ = strconv.Atoi(m[1])
	}
	if m := bathsPattern.FindStringSubmatch(text); m != nil {
		numbers.Baths, _ = strconv.ParseFloat(m[1], 64)
	}
	if m := pricePattern.FindStringSubmatch(text); m != nil {
		raw := strings.ReplaceAll(m[1], ",", "")
		price, err := strconv.ParseFloat(raw, 64)
		if err == nil {
			if m[2] != "" {
				price *= 1000
			}
			numbers.Price = price
		}
	}
	if m := sqftPattern.FindStringSubmatch(text); m != nil {
		raw := strings.ReplaceAll(m[1], ",", "")
		numbers.SquareFeet, _ = strconv.Atoi(raw)
	}

	return numbers
}

var (
	whatsappHeader = regexp.MustCompile(`\[\d{1,2}/\d{1,2}/\d{2,4},?\s+\d{1,2}:\d{2}(:\d{2})?\s?(AM|PM)?\]`)
	iosMarkers     = regexp.MustCompile(`(?m)(iMessage|^Delivered$|^Read\s|Sent as Text Message)`)
	androidMarkers = regexp.MustCompile(`(?m)(^SMS\b|\(SMS\)|^MMS\b|\b[A-Z][a-z]{2}\s\d{1,2},\s\d{1,2}:\d{2}\s(AM|PM)\b)`)
)

// ClassifyChannel guesses which messaging export format the pasted
// conversation came from. Heuristics are checked in order and are
// mutually exclusive; anything unrecognized is generic.
func ClassifyChannel(text string) ChannelType {
	switch {
	case whatsappHeader.MatchString(text):
		return ChannelWhatsApp
	case iosMarkers.MatchString(text):
		return ChannelIOS
	case androidMarkers.MatchString(text):
		return ChannelAndroid
	default:
		return ChannelGeneric
	}
}
