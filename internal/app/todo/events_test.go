package todo

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"
)

func TestEmit_PublishesShardedSubject(t *testing.T) {
	var gotSubject string
	var gotPayload []byte
	publisher := NewEventPublisher(func(subject string, payload []byte) error {
		gotSubject = subject
		gotPayload = payload
		return nil
	})
	publisher.Now = func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) }
	publisher.NewID = func() string { return "evt-1" }

	publisher.Emit(EventCreated, Todo{ID: 42, Title: "Buy milk"})

	wantSubject := fmt.Sprintf("todo.event.%d.42", shardID(42))
	if gotSubject != wantSubject {
		t.Fatalf("unexpected subject %q, want %q", gotSubject, wantSubject)
	}

	var event Event
	if err := json.Unmarshal(gotPayload, &event); err != nil {
		t.Fatalf("invalid event payload: %v", err)
	}
	if event.EventID != "evt-1" || event.TodoID != 42 || event.EventType != EventCreated {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.Title != "Buy milk" {
		t.Fatalf("unexpected title: %q", event.Title)
	}
	if event.ShardID != shardID(42) {
		t.Fatalf("shard mismatch: %d vs %d", event.ShardID, shardID(42))
	}
	if !event.OccurredAt.Equal(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected occurred_at: %v", event.OccurredAt)
	}
}

func TestEmit_NilPublisherIsNoOp(t *testing.T) {
	var publisher *EventPublisher
	// Must not panic.
	publisher.Emit(EventDeleted, Todo{ID: 1})
}

func TestShardID_DeterministicAndBounded(t *testing.T) {
	for _, id := range []int64{0, 1, 42, 999999} {
		first := shardID(id)
		second := shardID(id)
		if first != second {
			t.Fatalf("shardID(%d) not deterministic: %d vs %d", id, first, second)
		}
		if first < 0 || first >= ShardCount {
			t.Fatalf("shardID(%d) = %d out of range", id, first)
		}
	}
}
