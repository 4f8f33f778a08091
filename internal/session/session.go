// Package session holds the state of one interactive AliadoDoc conversation:
// the transcript, the current attachment, the pending programmatic prompt
// and the selected model. A Session is owned by the single turn-processing
// path and is not safe for concurrent use.
package session

import (
	"strings"
	"time"

	"aliadodoc/pkg/doctypes"

	"github.com/google/uuid"
)

// Session is the state of one conversation.
type Session struct {
	ID        string
	CreatedAt time.Time

	greeting      string
	model         string
	turns         []doctypes.Turn
	attachment    *doctypes.Attachment
	pendingPrompt string
	hasPending    bool

	now   func() time.Time
	newID func() string
}

// Option customizes a new Session.
type Option func(*Session)

// WithClock overrides the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithIDGenerator overrides turn and session ID generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *Session) { s.newID = newID }
}

// New creates a session seeded with the assistant greeting.
func New(greeting, model string, opts ...Option) *Session {
	s := &Session{
		greeting: strings.TrimSpace(greeting),
		model:    model,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ID = s.newID()
	s.CreatedAt = s.now()
	s.seed()
	return s
}

func (s *Session) seed() {
	s.turns = nil
	if s.greeting != "" {
		s.Append(doctypes.RoleAssistant, s.greeting)
	}
}

// Append adds a turn to the end of the transcript and returns it.
func (s *Session) Append(role doctypes.Role, content string) doctypes.Turn {
	turn := doctypes.Turn{
		ID:        s.newID(),
		Role:      role,
		Content:   content,
		Timestamp: s.now(),
	}
	s.turns = append(s.turns, turn)
	return turn
}

// Turns returns a copy of the transcript in order.
func (s *Session) Turns() []doctypes.Turn {
	out := make([]doctypes.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len returns the number of turns in the transcript.
func (s *Session) Len() int {
	return len(s.turns)
}

// RollbackExchange removes the last user turn and the assistant turn that
// answered it. It does nothing and returns false unless the transcript ends
// with exactly that pair.
func (s *Session) RollbackExchange() bool {
	n := len(s.turns)
	if n < 2 || !s.turns[n-2].IsUser() || !s.turns[n-1].IsAssistant() {
		return false
	}
	s.turns = s.turns[:n-2]
	return true
}

// Attach stores a materialized attachment, returning the one it replaced.
// Callers delete the previous remote handle before materializing the new one.
func (s *Session) Attach(a *doctypes.Attachment) *doctypes.Attachment {
	previous := s.attachment
	s.attachment = a
	return previous
}

// Detach clears the current attachment and returns it.
func (s *Session) Detach() *doctypes.Attachment {
	previous := s.attachment
	s.attachment = nil
	return previous
}

// Attachment returns the current attachment, or nil.
func (s *Session) Attachment() *doctypes.Attachment {
	return s.attachment
}

// Content returns the materialized content of the current attachment, or nil.
func (s *Session) Content() doctypes.Content {
	if s.attachment == nil {
		return nil
	}
	return s.attachment.Content
}

// SetPendingPrompt queues a programmatic prompt for the next turn,
// replacing any prompt already queued.
func (s *Session) SetPendingPrompt(prompt string) {
	s.pendingPrompt = prompt
	s.hasPending = true
}

// HasPendingPrompt reports whether a programmatic prompt is queued.
func (s *Session) HasPendingPrompt() bool {
	return s.hasPending
}

// TakePendingPrompt returns and clears the queued prompt.
func (s *Session) TakePendingPrompt() (string, bool) {
	if !s.hasPending {
		return "", false
	}
	prompt := s.pendingPrompt
	s.pendingPrompt = ""
	s.hasPending = false
	return prompt, true
}

// SetModel selects the model used by later turns.
func (s *Session) SetModel(model string) {
	s.model = model
}

// Model returns the selected model identifier.
func (s *Session) Model() string {
	return s.model
}

// Reset clears the transcript back to the greeting and drops the attachment
// and any pending prompt. The previous attachment is returned so the caller
// can release its remote handle.
func (s *Session) Reset() *doctypes.Attachment {
	previous := s.Detach()
	s.pendingPrompt = ""
	s.hasPending = false
	s.seed()
	return previous
}
