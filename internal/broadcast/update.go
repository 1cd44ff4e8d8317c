// Package broadcast fans live score updates out to websocket clients. The
// scoring engine publishes every accepted mutation to a Redis stream; a
// consumer group reads the stream and hands updates to a hub, which pushes
// them to connected clients filtered by match subscription. Running the
// publisher and consumer over Redis rather than in-process keeps the
// scoring service free to restart without dropping viewers.
package broadcast

import (
	"time"

	"github.com/creaselive/crease/internal/scoring/engine"
)

// Update is the wire message for one ledger change.
type Update struct {
	Kind      engine.NotificationKind `json:"kind"`
	MatchID   string                  `json:"match_id"`
	RequestID string                  `json:"request_id"`
	// Seq is the ledger sequence after the change; clients use it to detect
	// missed updates and refetch the scorecard.
	Seq       uint64           `json:"seq"`
	Scorecard engine.Scorecard `json:"scorecard"`
	Timestamp time.Time        `json:"timestamp"`
}

// ServerMessage wraps everything the hub pushes to a client.
type ServerMessage struct {
	Type      string    `json:"type"`
	Update    *Update   `json:"update,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Server message types.
const (
	MessageTypeUpdate    = "score_update"
	MessageTypeError     = "error"
	MessageTypeHeartbeat = "heartbeat"
)

// ClientMessage is what a connected client may send.
type ClientMessage struct {
	Type string `json:"type"`
	// MatchIDs sets the subscription filter; empty subscribes to all matches.
	MatchIDs []string `json:"match_ids,omitempty"`
}

// Client message types.
const (
	MessageTypeSubscribe   = "subscribe"
	MessageTypeUnsubscribe = "unsubscribe"
)
