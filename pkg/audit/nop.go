package audit

import "context"

// NopLog discards all events. It is used when audit recording is
// disabled in configuration.
type NopLog struct{}

// NewNopLog returns a Log that discards writes and returns no events.
func NewNopLog() *NopLog {
	return &NopLog{}
}

// Record implements Log.
func (*NopLog) Record(ctx context.Context, event *Event) error {
	return nil
}

// Events implements Log.
func (*NopLog) Events(ctx context.Context, query Query) ([]*Event, error) {
	return []*Event{}, nil
}

// Close implements Log.
func (*NopLog) Close() error {
	return nil
}
