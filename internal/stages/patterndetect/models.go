package patterndetect

// PatternSignals are the behavioral flags detected from raw conversation
// text at zero inference cost.
type PatternSignals struct {
	BuyingIntent     bool     `json:"buyingIntent"`
	SellingIntent    bool     `json:"sellingIntent"`
	Urgency          bool     `json:"urgency"`
	SpecificProperty bool     `json:"specificProperty"`
	PreApproval      bool     `json:"preApproval"`
	Showings         bool     `json:"showings"`
	OfferAccepted    bool     `json:"offerAccepted"`
	Closing          bool     `json:"closing"`
	Confidence       int      `json:"confidence"`
	MatchedPatterns  []string `json:"matchedPatterns"`
}

// ContactInfo holds phone numbers and email addresses pulled from text.
type ContactInfo struct {
	Phones []string `json:"phones"`
	Emails []string `json:"emails"`
}

// PropertyNumbers holds numeric property attributes mentioned in text.
// Zero values mean the attribute was not mentioned.
type PropertyNumbers struct {
	Beds       int     `json:"beds"`
	Baths      float64 `json:"baths"`
	Price      float64 `json:"price"`
	SquareFeet int     `json:"squareFeet"`
}

// ChannelType classifies the export format of a pasted conversation.
type ChannelType string

const (
	ChannelIOS      ChannelType = "ios"
	ChannelAndroid  ChannelType = "android"
	ChannelWhatsApp ChannelType = "whatsapp"
	ChannelGeneric  ChannelType = "generic"
)
