// Package v1 defines the wire types of the Agent Mode HTTP surface.
//
// The smoke-test harness asserts on dynamically decoded JSON so that shape
// violations become probe failures rather than decode errors; these types are
// produced by the mock service and consumed by tests.
package v1

import "time"

// SessionState represents the lifecycle state of an Agent Mode session.
type SessionState string

const (
	SessionStateActive SessionState = "ACTIVE"
	SessionStateIdle   SessionState = "IDLE"
	SessionStateClosed SessionState = "CLOSED"
)

// HealthResponse is the payload of GET /v1/agent/health.
type HealthResponse struct {
	Adapter   string `json:"adapter"`
	Healthy   bool   `json:"healthy"`
	Timestamp string `json:"timestamp"`
}

// Session represents one chat session held by the Agent Mode service.
type Session struct {
	ID        string       `json:"id"`
	State     SessionState `json:"state"`
	CreatedAt time.Time    `json:"created_at"`
}

// SessionListResponse is the payload of GET /v1/agent/sessions.
type SessionListResponse struct {
	Sessions []Session `json:"sessions"`
}
