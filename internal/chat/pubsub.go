// internal/chat/pubsub.go
// Redis pub/sub bridge so that events reach connections held by other
// instances. Each instance publishes with its own id and skips its own
// messages on the subscribe side; local delivery already happened in the hub.

package chat

import (
	"context"
	"encoding/json"
	"log"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

type relayEnvelope struct {
	Instance string `json:"instance"`
	RoomID   int64  `json:"roomId"`
	Event    Event  `json:"event"`
}

// RedisRelay implements EventRelay over a single redis channel
type RedisRelay struct {
	client   *redis.Client
	channel  string
	instance string

	cancel context.CancelFunc
}

func NewRedisRelay(client *redis.Client, channel string) *RedisRelay {
	if channel == "" {
		channel = "chat:broadcast"
	}
	return &RedisRelay{
		client:   client,
		channel:  channel,
		instance: uuid.NewString(),
	}
}

// Relay publishes an event for other instances. RoomID 0 means global fanout.
func (r *RedisRelay) Relay(roomID int64, event Event) {
	payload, err := json.Marshal(relayEnvelope{
		Instance: r.instance,
		RoomID:   roomID,
		Event:    event,
	})
	if err != nil {
		log.Printf("Error marshaling relay envelope: %v", err)
		return
	}

	if err := r.client.Publish(context.Background(), r.channel, payload).Err(); err != nil {
		log.Printf("Error publishing to %s: %v", r.channel, err)
	}
}

// Listen subscribes and delivers remote events into the hub until Close
func (r *RedisRelay) Listen(hub *Hub) {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	pubsub := r.client.Subscribe(ctx, r.channel)

	go func() {
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var envelope relayEnvelope
				if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
					log.Printf("Error unmarshaling relay envelope: %v", err)
					continue
				}

				if envelope.Instance == r.instance {
					continue
				}

				hub.DeliverLocal(envelope.RoomID, envelope.Event)
			}
		}
	}()
}

func (r *RedisRelay) Close() {
	if r.cancel != nil {
		r.cancel()
	}
}
