package todo

import (
	"encoding/json"
	"fmt"
	"hash/crc32"
	"log"
	"time"

	"github.com/nats-io/nuid"
)

const (
	EventCreated = "todo.created"
	EventUpdated = "todo.updated"
	EventDeleted = "todo.deleted"
)

// ShardCount fixes the number of change-feed partitions. Subjects embed
// the shard so consumers can split the stream without a rebalance.
const ShardCount = 64

// Event is the change-feed record published after a successful mutation.
type Event struct {
	EventID    string    `json:"event_id"`
	TodoID     int64     `json:"todo_id"`
	EventType  string    `json:"event_type"`
	Title      string    `json:"title"`
	ShardID    int       `json:"shard_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type PublishFunc func(subject string, payload []byte) error

// EventPublisher emits change-feed events. It is best-effort: publish
// failures are logged and never alter the HTTP outcome of the mutation
// that triggered them. A nil publisher drops everything.
type EventPublisher struct {
	Publish PublishFunc
	Now     func() time.Time
	NewID   func() string
}

func NewEventPublisher(publish PublishFunc) *EventPublisher {
	return &EventPublisher{
		Publish: publish,
		Now:     func() time.Time { return time.Now().UTC() },
		NewID:   nuid.Next,
	}
}

func (p *EventPublisher) Emit(eventType string, t Todo) {
	if p == nil || p.Publish == nil {
		return
	}
	event := Event{
		EventID:    p.NewID(),
		TodoID:     t.ID,
		EventType:  eventType,
		Title:      t.Title,
		ShardID:    shardID(t.ID),
		OccurredAt: p.Now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("todo: marshal %s event for id %d: %v", eventType, t.ID, err)
		return
	}
	if err := p.Publish(eventSubject(t.ID), payload); err != nil {
		log.Printf("todo: publish %s event for id %d: %v", eventType, t.ID, err)
	}
}

func shardID(id int64) int {
	checksum := crc32.ChecksumIEEE([]byte(fmt.Sprintf("todo-%d", id)))
	return int(checksum % ShardCount)
}

// eventSubject returns the per-todo subject, todo.event.{shard}.{id}.
func eventSubject(id int64) string {
	return fmt.Sprintf("todo.event.%d.%d", shardID(id), id)
}
