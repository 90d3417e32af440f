package utils

import "github.com/segmentio/ksuid"

// NewRequestID returns a sortable, globally unique id for tracing a request.
func NewRequestID() string {
	return ksuid.New().String()
}
