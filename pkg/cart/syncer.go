package cart

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"gitlab.connectwisedev.com/storefront-service/models"
)

// ErrSyncerClosed is returned when writing to a stopped Syncer.
var ErrSyncerClosed = errors.New("cart syncer closed")

// DefaultWriteTimeout bounds a single remote cart upsert.
const DefaultWriteTimeout = 10 * time.Second

// SyncError reports a remote cart write that did not land.
type SyncError struct {
	UserID string
	Err    error
}

func (e SyncError) Error() string {
	return "cart sync for user " + e.UserID + ": " + e.Err.Error()
}

func (e SyncError) Unwrap() error {
	return e.Err
}

type syncJob struct {
	userID  string
	lines   []models.CartLine
	flushed chan struct{}
}

// Syncer writes carts to the remote store in the order they were queued,
// one at a time, off the caller's goroutine.
type Syncer struct {
	remote  RemoteStore
	timeout time.Duration

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []syncJob
	closed bool

	errs    chan SyncError
	stopped chan struct{}
}

// NewSyncer starts the writer goroutine. Call Close to stop it.
func NewSyncer(remote RemoteStore) *Syncer {
	s := &Syncer{
		remote:  remote,
		timeout: DefaultWriteTimeout,
		errs:    make(chan SyncError, 32),
		stopped: make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	go s.run()
	return s
}

// Enqueue schedules an upsert of lines for userID.
func (s *Syncer) Enqueue(userID string, lines []models.CartLine) error {
	return s.push(syncJob{userID: userID, lines: models.CloneLines(lines)})
}

func (s *Syncer) push(j syncJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSyncerClosed
	}
	s.queue = append(s.queue, j)
	s.cond.Signal()
	return nil
}

// Errors delivers failed writes. Failures are dropped from the channel when
// nobody keeps up with it; they are always logged.
func (s *Syncer) Errors() <-chan SyncError {
	return s.errs
}

// Flush waits until every write queued before the call has been attempted.
func (s *Syncer) Flush(ctx context.Context) error {
	done := make(chan struct{})
	if err := s.push(syncJob{flushed: done}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains the queue and stops the writer.
func (s *Syncer) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		s.cond.Broadcast()
	}
	s.mu.Unlock()
	<-s.stopped
}

func (s *Syncer) run() {
	defer close(s.stopped)
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return
		}
		j := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		if j.flushed != nil {
			close(j.flushed)
			continue
		}
		s.write(j)
	}
}

func (s *Syncer) write(j syncJob) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	err := s.remote.UpsertCart(ctx, j.userID, j.lines)
	if err == nil {
		return
	}
	log.Printf("Error syncing cart for user %s: %v", j.userID, err)
	select {
	case s.errs <- SyncError{UserID: j.userID, Err: err}:
	default:
	}
}
