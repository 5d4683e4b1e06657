package websocket

import "time"

// Message types pushed to connected clients.
const (
	TypeNotification = "notification"
	TypeRefresh      = "refresh"
)

// Envelope wraps every outgoing message so the frontend can dispatch on Type.
type Envelope struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// RefreshPayload tells the client to re-fetch its current page for a table.
// Only the table name travels: the client re-reads through the normal query
// path, so derived display fields can never go stale from a partial patch.
type RefreshPayload struct {
	Table string `json:"table"`
}
