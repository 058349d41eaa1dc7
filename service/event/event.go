package event

import (
	"time"

	"github.com/signoffhq/signoff/internal/clock"
)

// Context identifies where in the approval flow an event originated.
type Context struct {
	RequestID   string `json:"requestID,omitempty"`
	Branch      string `json:"branch,omitempty"`
	Topic       string `json:"topic,omitempty"`
	Service     string `json:"service"`
	Method      string `json:"method"`
	TimeTakenMs int    `json:"timeTakenMs,omitempty"`
}

// Event is the typed envelope carried on notification queues.
type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata"`
	Data      T                      `json:"data"`
}

func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: clock.Now(),
		Metadata:  make(map[string]interface{}),
		Data:      data,
	}
}
