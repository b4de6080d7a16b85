package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go-appointment-saas/internal/domain/gateway"

	"github.com/sirupsen/logrus"
)

const (
	// Interval for cleaning up stale mutexes
	mutexCleanupInterval = 10 * time.Minute

	// How long a mutex must be unused before cleanup
	mutexStaleThreshold = 10 * time.Minute

	localLockPollInterval = 10 * time.Millisecond
	localLockMaxWait      = 2 * time.Second
)

// LocalSlotLocker serializes bookings per key inside one process. It backs
// single-instance deployments without Redis and tests.
type LocalSlotLocker struct {
	log   *logrus.Logger
	locks sync.Map // map[string]*mutexWithTimestamp

	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

// mutexWithTimestamp tracks mutex usage for cleanup
type mutexWithTimestamp struct {
	mu       sync.Mutex
	lastUsed atomic.Int64 // Unix timestamp
}

func NewLocalSlotLocker(log *logrus.Logger) *LocalSlotLocker {
	l := &LocalSlotLocker{
		log:      log,
		stopChan: make(chan struct{}),
	}
	l.wg.Add(1)
	go l.cleanupLoop()
	return l
}

// Lock waits for the key up to a bounded time. ttl is ignored: a local
// mutex cannot outlive its holder.
func (l *LocalSlotLocker) Lock(ctx context.Context, key string, _ time.Duration) (func(), error) {
	deadline := time.NewTimer(localLockMaxWait)
	defer deadline.Stop()
	ticker := time.NewTicker(localLockPollInterval)
	defer ticker.Stop()

	for {
		mt := l.mutexFor(key)
		for !mt.mu.TryLock() {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-deadline.C:
				return nil, gateway.ErrLockNotAcquired
			case <-ticker.C:
			}
		}

		// cleanup may have evicted mt between mutexFor and TryLock; a
		// newer caller would then hold a different mutex for the same key
		if current, ok := l.locks.Load(key); ok && current == mt {
			var once sync.Once
			return func() {
				once.Do(func() {
					mt.lastUsed.Store(time.Now().Unix())
					mt.mu.Unlock()
				})
			}, nil
		}
		mt.mu.Unlock()
	}
}

// Stop ends the cleanup goroutine. Safe to call multiple times.
func (l *LocalSlotLocker) Stop() {
	if l.stopped.CompareAndSwap(false, true) {
		close(l.stopChan)
		l.wg.Wait()
	}
}

func (l *LocalSlotLocker) mutexFor(key string) *mutexWithTimestamp {
	mt, _ := l.locks.LoadOrStore(key, &mutexWithTimestamp{})
	result := mt.(*mutexWithTimestamp)
	result.lastUsed.Store(time.Now().Unix())
	return result
}

func (l *LocalSlotLocker) cleanupLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(mutexCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			return
		case <-ticker.C:
			l.cleanupStale(time.Now().Add(-mutexStaleThreshold))
		}
	}
}

// cleanupStale removes unused mutexes. It only deletes an entry while
// holding its mutex, and Lock re-checks the map after acquiring, so a
// caller that raced with the delete retries on the live entry.
func (l *LocalSlotLocker) cleanupStale(cutoff time.Time) int {
	var cleaned int
	l.locks.Range(func(key, value any) bool {
		mt, ok := value.(*mutexWithTimestamp)
		if !ok {
			return true
		}
		if mt.mu.TryLock() {
			if mt.lastUsed.Load() < cutoff.Unix() {
				l.locks.Delete(key)
				cleaned++
			}
			mt.mu.Unlock()
		}
		return true
	})
	if cleaned > 0 {
		l.log.Debugf("Cleaned up %d stale slot mutexes", cleaned)
	}
	return cleaned
}
