package sim

import (
	"log"
	"reflect"
)

// EventLogger is a hook that prints every event before the engine handles
// it.
type EventLogger struct {
	logger *log.Logger
}

// NewEventLogger returns a new EventLogger which writes into the logger.
func NewEventLogger(logger *log.Logger) *EventLogger {
	return &EventLogger{logger: logger}
}

// Func writes the event information into the logger.
func (h *EventLogger) Func(ctx HookCtx) {
	if ctx.Pos != HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(Event)
	if !ok {
		return
	}

	queue := "primary"
	if evt.IsSecondary() {
		queue = "secondary"
	}

	named, ok := evt.Handler().(Named)
	if ok {
		h.logger.Printf("%s, %s %s -> %s",
			evt.Time(), queue, reflect.TypeOf(evt), named.Name())

		return
	}

	h.logger.Printf("%s, %s %s", evt.Time(), queue, reflect.TypeOf(evt))
}
