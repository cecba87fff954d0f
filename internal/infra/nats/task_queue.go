package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// DefaultSubject carries hangman background tasks.
const DefaultSubject = "hangman.tasks"

const queueGroup = "hangman-workers"

// TaskHandler runs one task pulled off the queue.
type TaskHandler func(ctx context.Context, task string) error

type taskMessage struct {
	Task       string    `json:"task"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// TaskQueue publishes task names on a NATS subject and consumes them with a
// queue subscription, so each task runs on exactly one instance.
type TaskQueue struct {
	servers string
	subject string

	mu  sync.Mutex
	nc  *nats.Conn
	sub *nats.Subscription
}

func NewTaskQueue(servers, subject string) *TaskQueue {
	if subject == "" {
		subject = DefaultSubject
	}
	return &TaskQueue{servers: servers, subject: subject}
}

// Connect dials the NATS servers.
func (q *TaskQueue) Connect() error {
	opts := []nats.Option{
		nats.Name("hangman-service"),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.WithError(err).Error("NATS disconnected with error")
			} else {
				log.Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected")
		}),
	}
	nc, err := nats.Connect(q.servers, opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	q.mu.Lock()
	q.nc = nc
	q.mu.Unlock()
	log.WithField("servers", q.servers).Info("Connected to NATS")
	return nil
}

// Enqueue publishes task.
func (q *TaskQueue) Enqueue(_ context.Context, task string) error {
	q.mu.Lock()
	nc := q.nc
	q.mu.Unlock()
	if nc == nil {
		return fmt.Errorf("not connected to NATS")
	}
	data, err := json.Marshal(taskMessage{Task: task, EnqueuedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	if err := nc.Publish(q.subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", task, err)
	}
	return nil
}

// Subscribe starts consuming tasks. Handlers run on the subscription's
// goroutine with ctx.
func (q *TaskQueue) Subscribe(ctx context.Context, handler TaskHandler) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.nc == nil {
		return fmt.Errorf("not connected to NATS")
	}
	sub, err := q.nc.QueueSubscribe(q.subject, queueGroup, func(msg *nats.Msg) {
		dispatch(ctx, msg.Data, handler)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", q.subject, err)
	}
	q.sub = sub
	log.WithField("subject", q.subject).Info("Subscribed to NATS subject")
	return nil
}

// dispatch decodes one message and runs it. It reports whether the handler
// succeeded.
func dispatch(ctx context.Context, data []byte, handler TaskHandler) bool {
	var msg taskMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.Task == "" {
		log.WithField("payload", string(data)).Warn("dropping malformed task message")
		return false
	}
	entry := log.WithFields(log.Fields{
		"task":  msg.Task,
		"delay": time.Since(msg.EnqueuedAt).String(),
	})
	if err := handler(ctx, msg.Task); err != nil {
		entry.WithError(err).Error("Failed to process task")
		return false
	}
	entry.Debug("task processed")
	return true
}

// Close drains the subscription and closes the connection.
func (q *TaskQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.nc == nil {
		return nil
	}
	var err error
	if q.sub != nil {
		err = q.sub.Unsubscribe()
		q.sub = nil
	}
	q.nc.Close()
	q.nc = nil
	return err
}
