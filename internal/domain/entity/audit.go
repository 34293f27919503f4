package entity

import "time"

// AuditRecord is the persisted trail of a workflow event.
type AuditRecord struct {
	ID            int64     `json:"id"`
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	ApplicationID int64     `json:"application_id"`
	ActorID       int64     `json:"actor_id"`
	Detail        string    `json:"detail"` // JSON payload blob
	CreatedAt     time.Time `json:"created_at"`
}
