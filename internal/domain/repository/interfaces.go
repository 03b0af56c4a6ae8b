package repository

import (
	"context"
	"net/url"
	"time"
)

// DataSource performs GET requests against the reporting backend and decodes
// the JSON response into dest.
type DataSource interface {
	GetJSON(ctx context.Context, path string, params url.Values, dest interface{}) error
}

// EventPublisher ships dashboard lifecycle events (cycle outcomes, sessions).
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
}

type Metrics interface {
	ObserveCycle(outcome string, d time.Duration)
	ObserveFetch(slot string, d time.Duration, err error)
	SetActiveSessions(n int)
}
