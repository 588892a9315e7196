package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/AlTattoo/top-challenges/pkg/logger"
	pkgredis "github.com/AlTattoo/top-challenges/pkg/redis"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrLockTimeout is returned when a participant lock could not be taken before the wait deadline
var ErrLockTimeout = errors.New("timed out waiting for participant lock")

const lockRetryInterval = 25 * time.Millisecond

func participantLockKey(participantID string) string {
	return "ledger:lock:participant:" + participantID
}

// RedisParticipantLocker serializes mutations of a participant across instances
// with a SET NX lock released by compare-and-delete
type RedisParticipantLocker struct {
	client *pkgredis.Client
	ttl    time.Duration
	wait   time.Duration
}

// NewRedisParticipantLocker creates a locker whose locks expire after ttl and
// whose acquisition gives up after wait
func NewRedisParticipantLocker(client *pkgredis.Client, ttl, wait time.Duration) *RedisParticipantLocker {
	return &RedisParticipantLocker{client: client, ttl: ttl, wait: wait}
}

// Lock blocks until the participant's lock is held
func (l *RedisParticipantLocker) Lock(ctx context.Context, participantID string) (func(), error) {
	key := participantLockKey(participantID)
	token := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	ticker := time.NewTicker(lockRetryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.TryLock(ctx, key, token, l.ttl)
		if err != nil && ctx.Err() == nil {
			return nil, err
		}
		if ok {
			return func() {
				if err := l.client.Unlock(context.Background(), key, token); err != nil {
					logger.Get().Warn("failed to release participant lock",
						zap.String("participant_id", participantID),
						zap.Error(err),
					)
				}
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, participantID)
		case <-ticker.C:
		}
	}
}

// MemoryParticipantLocker is a keyed mutex for a single process
type MemoryParticipantLocker struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
	wait  time.Duration
}

type keyedLock struct {
	ch   chan struct{}
	refs int
}

// NewMemoryParticipantLocker creates an in-process locker; wait <= 0 waits on ctx only
func NewMemoryParticipantLocker(wait time.Duration) *MemoryParticipantLocker {
	return &MemoryParticipantLocker{
		locks: make(map[string]*keyedLock),
		wait:  wait,
	}
}

// Lock blocks until the participant's lock is held
func (l *MemoryParticipantLocker) Lock(ctx context.Context, participantID string) (func(), error) {
	if l.wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}

	l.mu.Lock()
	k, ok := l.locks[participantID]
	if !ok {
		k = &keyedLock{ch: make(chan struct{}, 1)}
		l.locks[participantID] = k
	}
	k.refs++
	l.mu.Unlock()

	select {
	case k.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-k.ch
				l.release(participantID, k)
			})
		}, nil
	case <-ctx.Done():
		l.release(participantID, k)
		return nil, fmt.Errorf("%w: %s", ErrLockTimeout, participantID)
	}
}

func (l *MemoryParticipantLocker) release(participantID string, k *keyedLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	k.refs--
	if k.refs == 0 {
		delete(l.locks, participantID)
	}
}
