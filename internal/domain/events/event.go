package events

import (
	"time"

	"github.com/google/uuid"
)

// Board event types
const (
	BoardEventCacheInvalidate = "cache_invalidate"
	BoardEventCounterRefresh  = "counter_refresh"
)

// BoardEvent is published after a mutation so report caches and any external
// subscribers can react. Delivery is best effort; a lost event only delays
// cache expiry.
type BoardEvent struct {
	EventType string      `json:"event_type"`
	UserID    uuid.UUID   `json:"user_id"`
	ProjectID uuid.UUID   `json:"project_id,omitempty"`
	EntityID  uuid.UUID   `json:"entity_id"`
	Timestamp time.Time   `json:"timestamp"`
	Details   interface{} `json:"details,omitempty"`
}
