package handler

import (
    "context"
    "log"
    "time"

    q "github.com/iliyamo/study-ui/internal/queue"
)

// EventPublisher sends domain events to the broker.  A nil publisher
// disables events.
type EventPublisher interface {
    PublishSeatingComputed(ctx context.Context, ev q.SeatingComputedEvent) error
    PublishStudyImported(ctx context.Context, ev q.StudyImportedEvent) error
}

// publishAsync runs send on its own goroutine with a bounded timeout so a
// slow broker never delays the response.  Failures are only logged.
func publishAsync(p EventPublisher, send func(context.Context, EventPublisher) error) {
    if p == nil {
        return
    }
    go func() {
        ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer cancel()
        if err := send(ctx, p); err != nil {
            log.Printf("events: publish failed: %v", err)
        }
    }()
}
