package progress

import (
	"sync"

	"go.uber.org/zap"

	"github.com/matsen/citegraph/internal/enrich"
)

// Event kinds recorded by a Recorder.
const (
	KindUpdate  = "update"
	KindAlert   = "alert"
	KindConfirm = "confirm"
)

// Event is one notification received by a Recorder.
type Event struct {
	Kind    string        `json:"kind"`
	Status  enrich.Status `json:"status,omitempty"`
	Title   string        `json:"title,omitempty"`
	Message string        `json:"message"`
	Answer  *bool         `json:"answer,omitempty"`
}

// Recorder is a non-interactive notifier for JSON output. It answers every
// confirmation with a fixed value and keeps the events for the response.
type Recorder struct {
	mu     sync.Mutex
	answer bool
	events []Event
	closed bool
	log    *zap.Logger
}

// NewRecorder creates a Recorder that answers confirmations with answer.
func NewRecorder(answer bool, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{answer: answer, log: log}
}

func (r *Recorder) Update(status enrich.Status, message string) {
	r.log.Debug("progress", zap.String("status", string(status)), zap.String("message", message))
	r.add(Event{Kind: KindUpdate, Status: status, Message: message})
}

func (r *Recorder) Alert(title, message string) {
	r.log.Warn(message, zap.String("title", title))
	r.add(Event{Kind: KindAlert, Title: title, Message: message})
}

func (r *Recorder) Confirm(title, message string) bool {
	answer := r.answer
	r.log.Info("confirmation", zap.String("message", message), zap.Bool("answer", answer))
	r.add(Event{Kind: KindConfirm, Title: title, Message: message, Answer: &answer})
	return answer
}

func (r *Recorder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}

// Events returns a copy of the recorded events in arrival order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// add records e. Events arriving after Close are dropped.
func (r *Recorder) add(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		r.log.Debug("event after close dropped", zap.String("kind", e.Kind), zap.String("message", e.Message))
		return
	}
	r.events = append(r.events, e)
}
