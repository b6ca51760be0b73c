package entityextract

import "conversation-intel/internal/models"

// Motivation is the extracted motivation assessment. An empty Level means
// motivation could not be determined.
type Motivation struct {
	Level      models.MotivationLevel `json:"level,omitempty"`
	Confidence int                    `json:"confidence"`
	Indicators []string               `json:"indicators"`
}

// TimeframeInfo is the extracted purchase/sale timeframe. An empty Range
// means no timeframe was detected.
type TimeframeInfo struct {
	Range      models.Timeframe `json:"range,omitempty"`
	Confidence int              `json:"confidence"`
	Indicators []string         `json:"indicators"`
}

// PropertyPreferences are the structured property wants pulled from text.
type PropertyPreferences struct {
	Location     string   `json:"location,omitempty"`
	PriceRange   string   `json:"priceRange,omitempty"`
	PropertyType string   `json:"propertyType,omitempty"`
	Beds         int      `json:"beds,omitempty"`
	Baths        float64  `json:"baths,omitempty"`
	MustHaves    []string `json:"mustHaves"`
}

// Budget captures budget mentions and pre-approval status.
type Budget struct {
	Range       string `json:"range,omitempty"`
	PreApproved bool   `json:"preApproved"`
	Mentioned   bool   `json:"mentioned"`
}

// ExtractedEntities is the full structured-attribute output of the mini
// tier extraction stage.
type ExtractedEntities struct {
	Motivation          Motivation          `json:"motivation"`
	Timeframe           TimeframeInfo       `json:"timeframe"`
	PropertyPreferences PropertyPreferences `json:"propertyPreferences"`
	Budget              Budget              `json:"budget"`
}

// DefaultEntities is the fully-defaulted value a failed extraction
// degrades to. Every confidence is zero, every field empty.
func DefaultEntities() ExtractedEntities {
	return ExtractedEntities{
		Motivation: Motivation{Indicators: []string{}},
		Timeframe:  TimeframeInfo{Indicators: []string{}},
		PropertyPreferences: PropertyPreferences{
			MustHaves: []string{},
		},
	}
}

// BatchItem is one unit of work for batch extraction.
type BatchItem struct {
	ID   string
	Text string
}
