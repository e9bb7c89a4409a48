package history

import "time"

// Entry is one journaled tool call.
type Entry struct {
	ID        string        `json:"id"`
	Tool      string        `json:"tool"`
	Arguments string        `json:"arguments"`
	IsError   bool          `json:"is_error"`
	Text      string        `json:"text"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}
