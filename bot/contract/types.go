package contract

import (
	"strings"
	"time"
)

// Step identifies the position of a conversation within the guided
// enquiry flow. The wire values match the step tokens the web client
// round-trips, so they must stay stable.
type Step string

const (
	StepGreeting Step = "greeting"
	StepName     Step = "name"
	StepMobile   Step = "mobile"
	StepEmail    Step = "email"
	StepStatus   Step = "status"
	StepCourse   Step = "course"
	StepComplete Step = "complete"
)

// Inquiry is a course enquiry collected over one conversation.
// It is a mutable draft while the conversation runs and becomes an
// immutable record once committed to the store.
type Inquiry struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Mobile    string    `json:"mobile"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	Courses   []string  `json:"courses"`
	CreatedAt time.Time `json:"created_at"`
}

// Complete reports whether every required field has been collected.
func (i *Inquiry) Complete() bool {
	if i == nil {
		return false
	}
	return strings.TrimSpace(i.Name) != "" &&
		strings.TrimSpace(i.Mobile) != "" &&
		strings.TrimSpace(i.Email) != "" &&
		strings.TrimSpace(i.Status) != "" &&
		len(i.Courses) > 0
}

// Session is the full conversation state a caller threads through the
// flow. The web variant reconstructs it from the request payload on
// every call; the console variant keeps one instance per process run.
// Nothing in the core retains it between calls.
type Session struct {
	Step  Step    `json:"step"`
	Draft Inquiry `json:"draft"`
}

// NewSession returns a session positioned at the greeting step with an
// empty draft.
func NewSession() Session {
	return Session{Step: StepGreeting}
}

// Role labels a message in a conversation history.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of conversation history handed to the fallback
// responder.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
