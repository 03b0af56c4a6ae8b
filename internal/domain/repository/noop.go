package repository

import (
	"context"
	"time"
)

// NopMetrics discards every observation.
type NopMetrics struct{}

func (NopMetrics) ObserveCycle(string, time.Duration)        {}
func (NopMetrics) ObserveFetch(string, time.Duration, error) {}
func (NopMetrics) SetActiveSessions(int)                     {}

// NopPublisher drops every event. Used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, []byte, interface{}) error { return nil }
