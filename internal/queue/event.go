// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names.  Each event type gets its own durable queue.
const (
    SeatingComputedQueue = "seating.computed"
    StudyImportedQueue   = "study.imported"
)

// SeatingComputedEvent is published after a seating count is served.  The
// answer travels as a decimal string because it may exceed 64 bits.
type SeatingComputedEvent struct {
    N          int    `json:"n"`
    VIP        []int  `json:"vip"`
    Segments   []int  `json:"segments"`
    Answer     string `json:"answer"`
    ComputedAt string `json:"computed_at"`
}

// StudyImportedEvent is published after a CSV import into a topic.
type StudyImportedEvent struct {
    Topic      string `json:"topic"`
    Added      int    `json:"added"`
    Editor     string `json:"editor"`
    ImportedAt string `json:"imported_at"`
}
