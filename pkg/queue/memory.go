package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"MarketClose/pkg/logger"
)

// MemoryQueue runs jobs on in-process workers. Messages do not survive a
// restart; failed messages past the retry limit are kept in Dead.
type MemoryQueue struct {
	logger *logger.Logger
	config QueueConfig

	mu      sync.RWMutex
	jobs    map[string]Job
	running bool
	dead    []Message

	ch     chan Message
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func NewMemoryQueue(lgr *logger.Logger, config QueueConfig, jobs ...Job) *MemoryQueue {
	config.normalize()
	q := &MemoryQueue{
		logger: lgr.Component("memory_queue"),
		config: config,
		jobs:   make(map[string]Job),
		ch:     make(chan Message, config.QueueSize),
	}
	for _, j := range jobs {
		q.RegisterJob(j)
	}
	return q
}

func (q *MemoryQueue) RegisterJob(job Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, exists := q.jobs[job.Type()]; exists {
		q.logger.Warn("job already registered", logger.String("job", job.Name()))
		return
	}
	q.jobs[job.Type()] = job
}

func (q *MemoryQueue) Start() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return ErrAlreadyStart
	}
	q.ctx, q.cancel = context.WithCancel(context.Background())
	q.running = true
	for i := 0; i < q.config.Workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	q.logger.Info("memory queue started", logger.Int("workers", q.config.Workers))
	return nil
}

// Stop cancels in-flight jobs and waits for the workers to return.
func (q *MemoryQueue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return nil
	}
	q.running = false
	q.cancel()
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return fmt.Errorf("timeout: %w", ctx.Err())
	case <-done:
		q.logger.Info("memory queue stopped")
		return nil
	}
}

func (q *MemoryQueue) Enqueue(_ context.Context, msgType string, payload interface{}) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if !q.running {
		return ErrNotRunning
	}
	if _, ok := q.jobs[msgType]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownType, msgType)
	}

	msg, err := newMessage(msgType, payload)
	if err != nil {
		return err
	}
	select {
	case q.ch <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Dead returns the messages that exhausted their retries.
func (q *MemoryQueue) Dead() []Message {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return append([]Message(nil), q.dead...)
}

func (q *MemoryQueue) worker(id int) {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case msg := <-q.ch:
			q.process(id, msg)
		}
	}
}

func (q *MemoryQueue) process(worker int, msg Message) {
	q.mu.RLock()
	job := q.jobs[msg.Type]
	q.mu.RUnlock()

	err := job.Handle(q.ctx, msg.Payload)
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		q.logger.Warn("message cancelled", logger.String("id", msg.ID))
		return
	}

	q.logger.Error("message processing error",
		logger.String("id", msg.ID),
		logger.String("job", job.Name()),
		logger.Int("worker_id", worker),
		logger.Int("attempt", msg.Attempts+1),
		logger.Error(err))

	if msg.Attempts >= q.config.RetryLimit {
		q.mu.Lock()
		q.dead = append(q.dead, msg)
		q.mu.Unlock()
		return
	}

	msg.Attempts++
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		t := time.NewTimer(q.config.RetryDelay)
		defer t.Stop()
		select {
		case <-q.ctx.Done():
		case <-t.C:
			select {
			case q.ch <- msg:
			case <-q.ctx.Done():
			}
		}
	}()
}
