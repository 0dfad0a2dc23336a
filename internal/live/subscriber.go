// Package live streams Firestore query results as they change. Each
// subscription owns one snapshot listener and is torn down when the
// consumer goes away, so abandoned screens never leak listeners.
package live

import (
	"context"
	"log"
	stdsync "sync"

	"cloud.google.com/go/firestore"
)

// Subscription delivers the full result set of a query every time it
// changes. Updates are coalescing: when the consumer lags, it skips
// straight to the latest result set instead of replaying stale ones.
type Subscription struct {
	cancel context.CancelFunc

	mu      stdsync.Mutex
	latest  []*firestore.DocumentSnapshot
	pending bool
	ready   chan struct{}
	done    chan struct{}
	err     error
}

// Subscribe starts listening to the query. The subscription stops when
// Unsubscribe is called or the context is cancelled.
func Subscribe(ctx context.Context, query firestore.Query) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		cancel: cancel,
		ready:  make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go sub.run(ctx, query)
	return sub
}

func (s *Subscription) run(ctx context.Context, query firestore.Query) {
	defer close(s.done)

	it := query.Snapshots(ctx)
	defer it.Stop()

	for {
		snap, err := it.Next()
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("live: snapshot stream ended: %v", err)
				s.fail(err)
			}
			return
		}
		docs, err := snap.Documents.GetAll()
		if err != nil {
			log.Printf("live: read snapshot documents: %v", err)
			s.fail(err)
			return
		}
		s.deliver(docs)
	}
}

func (s *Subscription) deliver(docs []*firestore.DocumentSnapshot) {
	s.mu.Lock()
	s.latest = docs
	s.pending = true
	s.mu.Unlock()

	select {
	case s.ready <- struct{}{}:
	default:
	}
}

func (s *Subscription) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()

	select {
	case s.ready <- struct{}{}:
	default:
	}
}

// Next blocks until a newer result set than the last one returned is
// available, then returns it. It returns false when the subscription
// has ended; Err then reports why.
func (s *Subscription) Next(ctx context.Context) ([]*firestore.DocumentSnapshot, bool) {
	for {
		s.mu.Lock()
		if s.pending {
			s.pending = false
			docs := s.latest
			s.mu.Unlock()
			return docs, true
		}
		failed := s.err != nil
		s.mu.Unlock()
		if failed {
			return nil, false
		}

		select {
		case <-s.ready:
		case <-s.done:
			s.mu.Lock()
			pending := s.pending
			s.mu.Unlock()
			if !pending {
				return nil, false
			}
		case <-ctx.Done():
			return nil, false
		}
	}
}

// Err reports why the subscription ended, nil after a clean
// Unsubscribe.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Unsubscribe stops the listener and releases its resources.
func (s *Subscription) Unsubscribe() {
	s.cancel()
	<-s.done
}
