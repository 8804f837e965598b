// Package queue_publisher publishes domain events to RabbitMQ. Errors are
// logged and returned so callers can ignore failures without interrupting
// the request that produced the event.
package queue_publisher

import (
    "context"
    "encoding/json"
    "log"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    q "github.com/iliyamo/study-ui/internal/queue"
)

// Publisher sends events to durable queues on the broker at URL.  A
// connection is opened per publish; event volume is low.
type Publisher struct {
    URL string
}

// New returns a Publisher for the broker URL.
func New(url string) *Publisher { return &Publisher{URL: url} }

// PublishSeatingComputed publishes to the seating.computed queue.
func (p *Publisher) PublishSeatingComputed(ctx context.Context, ev q.SeatingComputedEvent) error {
    return p.publish(ctx, q.SeatingComputedQueue, ev)
}

// PublishStudyImported publishes to the study.imported queue.
func (p *Publisher) PublishStudyImported(ctx context.Context, ev q.StudyImportedEvent) error {
    return p.publish(ctx, q.StudyImportedQueue, ev)
}

func (p *Publisher) publish(ctx context.Context, queue string, event any) error {
    body, err := json.Marshal(event)
    if err != nil {
        log.Printf("rabbitmq: marshal event failed: %v", err)
        return err
    }

    conn, err := amqp.Dial(p.URL)
    if err != nil {
        log.Printf("rabbitmq: dial failed: %v", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        log.Printf("rabbitmq: channel open failed: %v", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    // Idempotent; durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
        log.Printf("rabbitmq: queue declare %s failed: %v", queue, err)
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
        log.Printf("rabbitmq: publish to %s failed: %v", queue, err)
        return err
    }
    return nil
}
