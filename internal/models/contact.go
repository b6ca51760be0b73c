package models

// AnalysisContext is the caller-supplied, read-only context for one
// analysis invocation. The orchestrator never mutates it.
type AnalysisContext struct {
	ContactID        string          `json:"contactId,omitempty"`
	ContactName      string          `json:"contactName"`
	CurrentStage     Stage           `json:"currentStage"`
	MotivationLevel  MotivationLevel `json:"motivationLevel,omitempty"`
	Timeframe        Timeframe       `json:"timeframe,omitempty"`
	DaysSinceContact int             `json:"daysSinceContact"`
	LastMessageFrom  string          `json:"lastMessageFrom,omitempty"`
	ConversationType string          `json:"conversationType,omitempty"`

	// GenerateReply defaults to true when nil.
	GenerateReply *bool `json:"generateReply,omitempty"`
}

// WantsReply reports whether the caller asked for a reply draft.
// Only an explicit false disables it.
func (c AnalysisContext) WantsReply() bool {
	return c.GenerateReply == nil || *c.GenerateReply
}

// FirstName returns the first whitespace-separated token of the contact
// name, used when addressing the contact in drafted replies.
func (c AnalysisContext) FirstName() string {
	name := c.ContactName
	for i, r := range name {
		if r == ' ' {
			return name[:i]
		}
	}
	return name
}

// Contact is the contact-like record consumed by the deterministic
// next-action rule engine.
type Contact struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Stage            Stage           `json:"stage"`
	MotivationLevel  MotivationLevel `json:"motivationLevel,omitempty"`
	Timeframe        Timeframe       `json:"timeframe,omitempty"`
	PreApproved      bool            `json:"preApproved"`
	DaysSinceContact int             `json:"daysSinceContact"`
}

// FirstName returns the first whitespace-separated token of the name.
func (c Contact) FirstName() string {
	for i, r := range c.Name {
		if r == ' ' {
			return c.Name[:i]
		}
	}
	return c.Name
}
