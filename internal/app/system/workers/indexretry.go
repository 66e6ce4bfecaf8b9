// internal/app/system/workers/indexretry.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/listinghub/internal/app/system/indexsync"
	"go.uber.org/zap"
)

// Retrier re-syncs the IDs waiting in the dead-letter set.
type Retrier interface {
	RetryDead(ctx context.Context, src indexsync.Lookup) (indexsync.ReindexResult, error)
}

// IndexRetry is a background worker that periodically re-syncs properties
// whose search-index write failed.
type IndexRetry struct {
	retrier  Retrier
	src      indexsync.Lookup
	log      *zap.Logger
	interval time.Duration
	timeout  time.Duration
	stopCh   chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
}

// NewIndexRetry creates a new retry worker.
//
// Parameters:
//   - retrier: usually the app's *indexsync.Syncer
//   - src: where stored properties are looked up
//   - interval: how often to run (e.g., 1 minute)
//   - timeout: deadline for one run
func NewIndexRetry(retrier Retrier, src indexsync.Lookup, logger *zap.Logger, interval, timeout time.Duration) *IndexRetry {
	return &IndexRetry{
		retrier:  retrier,
		src:      src,
		log:      logger,
		interval: interval,
		timeout:  timeout,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background retry loop.
func (w *IndexRetry) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("index retry worker started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish. Calling it
// more than once is safe.
func (w *IndexRetry) Stop() {
	w.once.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("index retry worker stopped")
	})
}

func (w *IndexRetry) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.retry()
		}
	}
}

func (w *IndexRetry) retry() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	res, err := w.retrier.RetryDead(ctx, w.src)
	if err != nil {
		w.log.Warn("index retry run failed", zap.Error(err))
	}
	if res.Drained > 0 || res.Failed > 0 {
		w.log.Info("index retry run",
			zap.Int("indexed", res.Indexed),
			zap.Int("removed", res.Removed),
			zap.Int("failed", res.Failed),
			zap.Int("drained", res.Drained))
	}
}
