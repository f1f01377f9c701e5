package todo

import "time"

// Todo is the single managed entity. Description maps to a nullable
// column: a nil pointer round-trips as SQL NULL and JSON null.
type Todo struct {
	ID          int64
	Title       string
	Description *string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type todoResponse struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Completed   bool    `json:"completed"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// formatTimestamp renders store timestamps in the canonical wire form.
// Every handler that emits a Todo goes through here so the two timestamp
// fields serialize identically on every endpoint.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func toResponse(t Todo) todoResponse {
	return todoResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   formatTimestamp(t.CreatedAt),
		UpdatedAt:   formatTimestamp(t.UpdatedAt),
	}
}

func toResponseList(todos []Todo) []todoResponse {
	out := make([]todoResponse, 0, len(todos))
	for _, t := range todos {
		out = append(out, toResponse(t))
	}
	return out
}
