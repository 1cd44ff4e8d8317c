package broadcast

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	consumerBatchSize = 100
	consumerBlock     = time.Second
)

// Consumer reads score updates from the Redis stream through a consumer
// group and hands them to the hub.
type Consumer struct {
	client   *redis.Client
	hub      *Hub
	stream   string
	group    string
	consumer string
}

// NewConsumer creates a stream consumer. An empty stream selects
// DefaultStream.
func NewConsumer(client *redis.Client, hub *Hub, stream, group, consumerID string) *Consumer {
	if stream == "" {
		stream = DefaultStream
	}
	return &Consumer{
		client:   client,
		hub:      hub,
		stream:   stream,
		group:    group,
		consumer: consumerID,
	}
}

// Start consumes until the context ends.
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.ensureGroup(ctx); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.group,
			Consumer: c.consumer,
			Streams:  []string{c.stream, ">"},
			Count:    consumerBatchSize,
			Block:    consumerBlock,
		}).Result()
		if err != nil {
			if err == redis.Nil || ctx.Err() != nil {
				continue
			}
			log.Printf("broadcast: read stream %s: %v", c.stream, err)
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				c.process(ctx, msg)
			}
		}
	}
}

func (c *Consumer) ensureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

func (c *Consumer) process(ctx context.Context, msg redis.XMessage) {
	defer c.ack(ctx, msg.ID)

	data, ok := msg.Values["data"].(string)
	if !ok {
		log.Printf("broadcast: message %s has no data field", msg.ID)
		return
	}
	var update Update
	if err := json.Unmarshal([]byte(data), &update); err != nil {
		log.Printf("broadcast: decode message %s: %v", msg.ID, err)
		return
	}
	c.hub.Broadcast(update)
}

func (c *Consumer) ack(ctx context.Context, messageID string) {
	if err := c.client.XAck(ctx, c.stream, c.group, messageID).Err(); err != nil {
		log.Printf("broadcast: ack message %s: %v", messageID, err)
	}
}
