package store

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"vidshelf-backend/internal/storage"
)

const writeTimeout = 10 * time.Second

// writer owns all writes to the storage key. Mutations hand it the
// latest encoded snapshot; a pending snapshot that has not been written
// yet is replaced rather than queued, so a slow earlier write can never
// clobber a later one with stale data.
type writer struct {
	kv  storage.KV
	key string
	log logrus.FieldLogger

	mu      sync.Mutex
	pending *string

	wake chan struct{}
	quit chan struct{}
	done chan struct{}
}

func newWriter(kv storage.KV, key string, log logrus.FieldLogger) *writer {
	w := &writer{
		kv:   kv,
		key:  key,
		log:  log,
		wake: make(chan struct{}, 1),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go w.run()
	return w
}

// enqueue replaces the pending snapshot and nudges the write loop.
// Never blocks the caller.
func (w *writer) enqueue(snapshot string) {
	w.mu.Lock()
	w.pending = &snapshot
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *writer) run() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.flush()
		case <-w.quit:
			w.flush()
			return
		}
	}
}

func (w *writer) flush() {
	w.mu.Lock()
	snapshot := w.pending
	w.pending = nil
	w.mu.Unlock()

	if snapshot == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := w.kv.Set(ctx, w.key, *snapshot); err != nil {
		// In-memory state is not rolled back; memory and storage
		// diverge until the next successful write.
		w.log.WithError(err).Error("failed to persist video snapshot")
	}
}

// close flushes the pending snapshot and waits for the loop to exit.
// Must be called at most once.
func (w *writer) close() {
	close(w.quit)
	<-w.done
}
