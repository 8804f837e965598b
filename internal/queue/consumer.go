package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "os"
    "path/filepath"
    "strings"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// StartConsumer connects to RabbitMQ, declares the event queues (durable)
// and appends each delivered event as one line to <logDir>/events.log. It
// reconnects with backoff until ctx is cancelled, then returns ctx.Err().
func StartConsumer(ctx context.Context, url, logDir string) error {
    backoff := time.Second
    for {
        if err := ctx.Err(); err != nil {
            return err
        }
        conn, err := amqp.Dial(url)
        if err != nil {
            log.Printf("events-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            if !sleepCtx(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = consumeLoop(ctx, conn, logDir)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        log.Printf("events-consumer: consume loop ended: %v; reconnecting", err)
        if !sleepCtx(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, logDir string) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Printf("events-consumer: set QoS failed: %v", err)
    }

    merged := make(chan delivery)
    ended := make(chan string, 2)
    done := make(chan struct{})
    defer close(done)
    for _, name := range []string{SeatingComputedQueue, StudyImportedQueue} {
        if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
            return fmt.Errorf("queue declare %s: %w", name, err)
        }
        msgs, err := ch.Consume(name, "", false, false, false, false, nil)
        if err != nil {
            return fmt.Errorf("queue consume %s: %w", name, err)
        }
        go forward(name, msgs, merged, ended, done)
    }

    return serve(ctx, logDir, merged, ended,
        conn.NotifyClose(make(chan *amqp.Error, 1)),
        ch.NotifyClose(make(chan *amqp.Error, 1)))
}

type delivery struct {
    queue string
    d     amqp.Delivery
}

// forward copies msgs into out until msgs closes or done fires.  A closed
// msgs is reported on ended so serve can give up on the channel.
func forward(name string, msgs <-chan amqp.Delivery, out chan<- delivery, ended chan<- string, done <-chan struct{}) {
    for d := range msgs {
        select {
        case out <- delivery{queue: name, d: d}:
        case <-done:
            return
        }
    }
    select {
    case ended <- name:
    case <-done:
    }
}

// serve writes merged deliveries to the event log until ctx ends, the
// connection or channel closes, or one of the delivery streams stops.
func serve(ctx context.Context, logDir string, merged <-chan delivery, ended <-chan string, connClosed, chClosed <-chan *amqp.Error) error {
    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case aerr := <-connClosed:
            if aerr == nil {
                return errors.New("connection closed")
            }
            return aerr
        case aerr := <-chClosed:
            if aerr == nil {
                return errors.New("channel closed")
            }
            return aerr
        case name := <-ended:
            return fmt.Errorf("deliveries channel closed: %s", name)
        case m := <-merged:
            if err := appendEvent(logDir, m.queue, m.d.Body); err != nil {
                log.Printf("events-consumer: handle message failed: %v", err)
                _ = m.d.Nack(false, false) // reject, do not requeue to avoid tight loops
                continue
            }
            _ = m.d.Ack(false)
        }
    }
}

func appendEvent(logDir, queue string, body []byte) error {
    line, err := FormatEvent(queue, body)
    if err != nil {
        return err
    }
    if err := os.MkdirAll(logDir, 0o755); err != nil {
        return fmt.Errorf("mkdir %s: %w", logDir, err)
    }
    f, err := os.OpenFile(filepath.Join(logDir, "events.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()
    if _, err := f.WriteString(line + "\n"); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatEvent renders an event body from the named queue as a single
// human readable log line.
func FormatEvent(queue string, body []byte) (string, error) {
    switch queue {
    case SeatingComputedQueue:
        var ev SeatingComputedEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return "", fmt.Errorf("unmarshal: %w", err)
        }
        return fmt.Sprintf("[%s] Seating computed | n=%d | vip=%s | segments=%s | answer=%s",
            ev.ComputedAt, ev.N, joinInts(ev.VIP), joinInts(ev.Segments), ev.Answer), nil
    case StudyImportedQueue:
        var ev StudyImportedEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return "", fmt.Errorf("unmarshal: %w", err)
        }
        return fmt.Sprintf("[%s] Study rows imported | topic=%s | added=%d | editor=%q",
            ev.ImportedAt, ev.Topic, ev.Added, ev.Editor), nil
    }
    return "", fmt.Errorf("unknown queue %q", queue)
}

func joinInts(xs []int) string {
    parts := make([]string, len(xs))
    for i, x := range xs {
        parts[i] = fmt.Sprint(x)
    }
    return "[" + strings.Join(parts, ",") + "]"
}
