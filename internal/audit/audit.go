package audit

import (
	"context"
	"time"
)

// Actions recorded by privileged mutating operations.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionLogin  = "login"
)

// Resource types the portal audits.
const (
	ResourceUser         = "user"
	ResourceCase         = "case"
	ResourceDocument     = "document"
	ResourceNotification = "notification"
)

// Entry is an immutable audit record. Entries are only ever appended; the
// application never updates or deletes them.
type Entry struct {
	ID           string    `json:"id"`
	ActorID      string    `json:"actor_id"`
	Action       string    `json:"action"`
	ResourceType string    `json:"resource_type"`
	ResourceID   string    `json:"resource_id,omitempty"`
	Detail       string    `json:"detail,omitempty"`
	Origin       string    `json:"origin,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Filter narrows audit log queries.
type Filter struct {
	ActorID      string
	Action       string
	ResourceType string
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

type Repository interface {
	Append(ctx context.Context, entry *Entry) error
	List(ctx context.Context, filter Filter) ([]*Entry, error)
}
