package todo

import (
	"context"
	"encoding/json"
)

// Validation errors carry the exact messages the API contract promises;
// the HTTP layer writes err.Error() straight into the error envelope.
var (
	ErrTitleRequired = contractError("Title is required")
	ErrNoData        = contractError("No data provided")
	ErrNoValidFields = contractError("No valid fields to update")
)

type contractError string

func (e contractError) Error() string { return string(e) }

// Store is the persistence surface the service depends on. *Repository
// satisfies it; tests substitute fakes.
type Store interface {
	EnsureSchema(ctx context.Context) error
	Ping(ctx context.Context) error
	List(ctx context.Context) ([]Todo, error)
	Get(ctx context.Context, id int64) (Todo, error)
	Create(ctx context.Context, title, description, completed any) (Todo, error)
	Update(ctx context.Context, id int64, changes []Change) (Todo, error)
	Delete(ctx context.Context, id int64) error
}

// Service validates request field sets and drives the store. Events is
// optional; when set, successful mutations emit change-feed events.
type Service struct {
	Store  Store
	Events *EventPublisher
}

func NewService(store Store, events *EventPublisher) *Service {
	return &Service{Store: store, Events: events}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.Store.Ping(ctx)
}

func (s *Service) List(ctx context.Context) ([]Todo, error) {
	return s.Store.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Todo, error) {
	return s.Store.Get(ctx, id)
}

// Create requires a title key in the field set. The value itself is passed
// through as decoded JSON; the store decides what its columns accept.
// Absent description defaults to the empty string, explicit null passes
// through as NULL. Absent completed defaults to false.
func (s *Service) Create(ctx context.Context, fields map[string]json.RawMessage) (Todo, error) {
	rawTitle, ok := fields["title"]
	if !ok {
		return Todo{}, ErrTitleRequired
	}

	var description any = ""
	if rawDescription, ok := fields["description"]; ok {
		description = jsonValue(rawDescription)
	}
	var completed any = false
	if rawCompleted, ok := fields["completed"]; ok {
		completed = jsonValue(rawCompleted)
	}

	created, err := s.Store.Create(ctx, jsonValue(rawTitle), description, completed)
	if err != nil {
		return Todo{}, err
	}
	s.Events.Emit(EventCreated, created)
	return created, nil
}

// Update mutates exactly the recognized fields present in the request, in
// stable order title, description, completed. An empty field set and a set
// with no recognized keys are distinct 400s per the contract.
func (s *Service) Update(ctx context.Context, id int64, fields map[string]json.RawMessage) (Todo, error) {
	if len(fields) == 0 {
		return Todo{}, ErrNoData
	}

	changes := make([]Change, 0, 3)
	for _, column := range []string{"title", "description", "completed"} {
		if raw, ok := fields[column]; ok {
			changes = append(changes, Change{Column: column, Value: jsonValue(raw)})
		}
	}
	if len(changes) == 0 {
		return Todo{}, ErrNoValidFields
	}

	updated, err := s.Store.Update(ctx, id, changes)
	if err != nil {
		return Todo{}, err
	}
	s.Events.Emit(EventUpdated, updated)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.Store.Delete(ctx, id); err != nil {
		return err
	}
	s.Events.Emit(EventDeleted, Todo{ID: id})
	return nil
}

func jsonValue(raw json.RawMessage) any {
	var v any
	_ = json.Unmarshal(raw, &v)
	return v
}
