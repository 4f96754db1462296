package audit

import "context"

// Recorder writes audit events. Implementations never fail the caller:
// persistence errors are logged and dropped.
type Recorder interface {
	Record(ctx context.Context, event Event)
}

// Publisher delivers audit entries to an event bus.
type Publisher interface {
	Publish(ctx context.Context, entries []Entry) error
}
