package broadcast

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/creaselive/crease/internal/scoring/engine"
)

// DefaultStream is the Redis stream score updates travel on.
const DefaultStream = "score.updates"

// maxStreamLength bounds the stream; older entries are trimmed approximately.
const maxStreamLength = 10000

// Publisher writes engine notifications to a Redis stream. It implements
// engine.Notifier; failures are logged and dropped, never surfaced into the
// scoring path.
type Publisher struct {
	client *redis.Client
	stream string
	clock  func() time.Time
}

// NewPublisher creates a publisher on the given stream. An empty stream name
// selects DefaultStream.
func NewPublisher(client *redis.Client, stream string) *Publisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &Publisher{client: client, stream: stream, clock: time.Now}
}

// Notify publishes one notification as an Update.
func (p *Publisher) Notify(ctx context.Context, n engine.Notification) {
	update := Update{
		Kind:      n.Kind,
		MatchID:   n.MatchID,
		RequestID: n.RequestID,
		Scorecard: engine.ScorecardFromState(&n.State),
		Timestamp: p.clock().UTC(),
	}
	for _, evt := range n.Events {
		if evt.Seq > update.Seq {
			update.Seq = evt.Seq
		}
	}

	data, err := json.Marshal(update)
	if err != nil {
		log.Printf("broadcast: marshal update for %s: %v", n.MatchID, err)
		return
	}
	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: maxStreamLength,
		Approx: true,
		Values: map[string]any{
			"data":     string(data),
			"match_id": n.MatchID,
			"kind":     string(n.Kind),
		},
	}).Err()
	if err != nil {
		log.Printf("broadcast: publish update for %s: %v", n.MatchID, err)
	}
}
