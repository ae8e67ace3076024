package testsupport

import (
	"strings"
	"sync"

	"sonarrbot/internal/telegram"
)

// Recorder is a telegram.Messenger that captures outgoing messages so
// tests can assert on replies without a live bot.
type Recorder struct {
	mu   sync.Mutex
	sent []telegram.Outgoing
	fail error
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Send captures the message. When FailWith has been set it returns that
// error instead.
func (r *Recorder) Send(msg telegram.Outgoing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.sent = append(r.sent, msg)
	return nil
}

// FailWith makes every subsequent Send return err.
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = err
}

// Sent returns a copy of every captured message in send order.
func (r *Recorder) Sent() []telegram.Outgoing {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]telegram.Outgoing, len(r.sent))
	copy(out, r.sent)
	return out
}

// Last returns the most recent message, or a zero Outgoing when none
// was sent.
func (r *Recorder) Last() telegram.Outgoing {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		return telegram.Outgoing{}
	}
	return r.sent[len(r.sent)-1]
}

// Reset clears the captured messages.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}

// Texts returns the text of every captured message joined by newlines.
func (r *Recorder) Texts() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	texts := make([]string, len(r.sent))
	for i, msg := range r.sent {
		texts[i] = msg.Text
	}
	return strings.Join(texts, "\n")
}
