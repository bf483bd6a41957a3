// ABOUTME: Transcript data model for the FAQ widget conversation
// ABOUTME: Messages, suggestions, request state, and the events published on every transition

package conversation

import "strings"

// Sender identifies who authored a transcript message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one immutable transcript entry. Sequence is assigned by the
// controller and strictly increases in append order.
type Message struct {
	Sender   Sender `json:"sender"`
	Text     string `json:"text"`
	Sequence int    `json:"sequence"`
}

// Suggestion is one candidate FAQ entry returned by the answer service.
// The JSON keys match the service's wire format.
type Suggestion struct {
	Question string `json:"Question"`
	Answer   string `json:"Answer"`
}

// RequestState tracks whether a query is outstanding.
type RequestState string

const (
	StateIdle     RequestState = "idle"
	StateAwaiting RequestState = "awaiting"
)

// fallbackMarker is the phrase the answer service uses in its single
// "nothing matched" entry.
const fallbackMarker = "no relevant answer"

// IsNoMatch reports whether a service result carries no usable answer:
// either it is empty, or it is the service's single fallback entry.
func IsNoMatch(results []Suggestion) bool {
	if len(results) == 0 {
		return true
	}
	if len(results) == 1 {
		return strings.Contains(strings.ToLower(results[0].Answer), fallbackMarker)
	}
	return false
}

// Texts holds the fixed bot lines the controller writes into the transcript.
type Texts struct {
	Welcome     string
	ErrorNotice string
	NoMatch     string
}

// DefaultTexts returns the stock widget wording.
func DefaultTexts() Texts {
	return Texts{
		Welcome:     "👋 Hey there! Need help with something? I'm all ears!",
		ErrorNotice: "Sorry, something went wrong while reaching the help desk. Please try again.",
		NoMatch:     "Sorry, I couldn't find anything relevant.",
	}
}

// withDefaults fills any empty field from DefaultTexts.
func (t Texts) withDefaults() Texts {
	d := DefaultTexts()
	if t.Welcome == "" {
		t.Welcome = d.Welcome
	}
	if t.ErrorNotice == "" {
		t.ErrorNotice = d.ErrorNotice
	}
	if t.NoMatch == "" {
		t.NoMatch = d.NoMatch
	}
	return t
}

// EventType names the kind of transition an Event reports.
type EventType string

const (
	EventMessage     EventType = "message"
	EventSuggestions EventType = "suggestions"
	EventState       EventType = "state"
	EventDraft       EventType = "draft"
	EventVisibility  EventType = "visibility"
)

// Event is published after every controller transition. Besides the
// appended message (for EventMessage) it carries the control state as it
// stands after the transition, so a subscriber never has to poll.
type Event struct {
	Type         EventType    `json:"type"`
	Message      *Message     `json:"message,omitempty"`
	Suggestions  []Suggestion `json:"suggestions"`
	State        RequestState `json:"state"`
	Draft        string       `json:"draft"`
	Visible      bool         `json:"visible"`
	InputEnabled bool         `json:"input_enabled"`
}

// Snapshot is a detached copy of the controller state.
type Snapshot struct {
	Transcript   []Message
	Draft        string
	Suggestions  []Suggestion
	State        RequestState
	Visible      bool
	InputEnabled bool
}
