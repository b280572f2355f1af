package dto

// Report responses are served directly from the reports domain types; their
// JSON shapes are part of the report contract (fixed keys, zero defaults) and
// re-mapping them here would only risk divergence. Only the query-side
// bindings live in this file.

// TimelineQueryRequest represents the query parameters for the activity
// timeline report.
type TimelineQueryRequest struct {
	UserID   string `form:"user_id"`
	EntityID string `form:"entity_id"`
	Days     int    `form:"days"`
}
