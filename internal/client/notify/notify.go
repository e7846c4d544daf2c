// Package notify is the transient message line of the client: one display
// slot, newest message wins, every message hides itself after a fixed TTL.
package notify

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Severity selects the style of a message.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// DefaultTTL is how long a message stays visible.
const DefaultTTL = 3 * time.Second

// Notifier is what handlers use to talk to the user.
type Notifier interface {
	Notify(message string, severity Severity)
}

// afterFunc is a test seam for time.AfterFunc.
var afterFunc = func(d time.Duration, f func()) stopper { return time.AfterFunc(d, f) }

type stopper interface {
	Stop() bool
}

// Message is the content of the display slot.
type Message struct {
	Text     string
	Severity Severity
	Visible  bool
}

// Class is the style class of the slot, e.g. "msg-box error".
func (m Message) Class() string {
	return "msg-box " + string(m.Severity)
}

// Surface renders messages to a writer and tracks what is currently shown.
// It is safe for concurrent use.
type Surface struct {
	mu      sync.Mutex
	w       io.Writer
	ttl     time.Duration
	box     *Message
	hide    stopper
	version uint64
}

// NewSurface writes messages to w; ttl <= 0 means DefaultTTL.
func NewSurface(w io.Writer, ttl time.Duration) *Surface {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Surface{w: w, ttl: ttl}
}

// Notify shows message with the given severity (info when empty) and
// replaces whatever was visible. Only the latest call's hide timer stays armed.
func (s *Surface) Notify(message string, severity Severity) {
	if severity == "" {
		severity = SeverityInfo
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.box == nil {
		s.box = &Message{}
	}
	s.box.Text = message
	s.box.Severity = severity
	s.box.Visible = true
	fmt.Fprintf(s.w, "[%s] %s\n", severity, message)

	if s.hide != nil {
		s.hide.Stop()
	}
	s.version++
	v := s.version
	s.hide = afterFunc(s.ttl, func() { s.expire(v) })
}

// expire hides the slot unless a newer message has been shown since.
func (s *Surface) expire(v uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v != s.version || s.box == nil {
		return
	}
	s.box.Visible = false
	s.hide = nil
}

// Current returns a copy of the slot; ok is false before the first message.
func (s *Surface) Current() (m Message, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.box == nil {
		return Message{}, false
	}
	return *s.box, true
}

// Info, Success and Error are shorthands for Notify.
func Info(n Notifier, message string)    { n.Notify(message, SeverityInfo) }
func Success(n Notifier, message string) { n.Notify(message, SeveritySuccess) }
func Error(n Notifier, message string)   { n.Notify(message, SeverityError) }
