// Package push delivers notification bodies to user devices in the
// background. Delivery is best effort: failures are logged and dropped.
package push

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/orgtask-api/internal/logging"
)

// Sender delivers one message to a set of device tokens.
type Sender interface {
	Send(ctx context.Context, tokens []string, title, body string) error
}

// TokenSource resolves the device tokens registered by a user.
type TokenSource interface {
	TokensByUser(ctx context.Context, userID uint64) ([]string, error)
}

type job struct {
	recipientID uint64
	body        string
}

// Queue is a bounded in-process delivery queue drained by a fixed set of
// workers.
type Queue struct {
	tokens  TokenSource
	sender  Sender
	title   string
	timeout time.Duration

	jobs   chan job
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// Options configures a Queue.
type Options struct {
	Title   string
	Workers int
	Size    int
	Timeout time.Duration
}

// NewQueue starts the workers of a new queue. Call Close to drain it.
func NewQueue(tokens TokenSource, sender Sender, opts Options) *Queue {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Size < 1 {
		opts.Size = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	q := &Queue{
		tokens:  tokens,
		sender:  sender,
		title:   opts.Title,
		timeout: opts.Timeout,
		jobs:    make(chan job, opts.Size),
	}
	for i := 0; i < opts.Workers; i++ {
		q.wg.Add(1)
		go q.work()
	}
	return q
}

// Enqueue schedules delivery of body to every device of recipientID. It never
// blocks: when the queue is full or closed the message is dropped.
func (q *Queue) Enqueue(recipientID uint64, body string) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		logging.Logger.WithField("recipient_id", recipientID).Warn("push queue closed, dropping message")
		return
	}

	select {
	case q.jobs <- job{recipientID: recipientID, body: body}:
	default:
		logging.Logger.WithField("recipient_id", recipientID).Warn("push queue full, dropping message")
	}
}

// Close stops accepting messages and waits for queued ones to be delivered.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	q.wg.Wait()
}

func (q *Queue) work() {
	defer q.wg.Done()
	for j := range q.jobs {
		q.deliver(j)
	}
}

func (q *Queue) deliver(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	log := logging.Logger.WithFields(logrus.Fields{
		"recipient_id": j.recipientID,
	})

	tokens, err := q.tokens.TokensByUser(ctx, j.recipientID)
	if err != nil {
		log.WithError(err).Error("failed to load push tokens")
		return
	}
	if len(tokens) == 0 {
		log.Debug("no push tokens registered")
		return
	}

	if err := q.sender.Send(ctx, tokens, q.title, j.body); err != nil {
		log.WithError(err).WithField("tokens", len(tokens)).Error("push delivery failed")
		return
	}
	log.WithField("tokens", len(tokens)).Debug("push delivered")
}
