package replygen

// Tone is the classified tone of a drafted reply.
type Tone string

const (
	ToneProfessional Tone = "Professional"
	ToneFriendly     Tone = "Friendly"
	ToneUrgent       Tone = "Urgent"
	ToneCasual       Tone = "Casual"
)

var canonicalTones = []Tone{ToneProfessional, ToneFriendly, ToneUrgent, ToneCasual}

// Draft is the five-section reply draft plus the composed full text.
type Draft struct {
	Greeting         string   `json:"greeting"`
	Acknowledgment   string   `json:"acknowledgment"`
	ValueProposition string   `json:"valueProposition"`
	NextStep         string   `json:"nextStep"`
	Closing          string   `json:"closing"`
	FullReply        string   `json:"fullReply"`
	Tone             Tone     `json:"tone"`
	EditSuggestions  []string `json:"editSuggestions"`
}
