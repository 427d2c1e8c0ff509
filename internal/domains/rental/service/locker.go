package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"bookrental-backend/internal/domains/rental/model"
	"bookrental-backend/pkg/cache"
)

const (
	defaultLockTTL   = 5 * time.Second
	lockRetryDelay   = 50 * time.Millisecond
	lockMaxAttempts  = 10
	lockReleaseGrace = 2 * time.Second
)

// Locker serializes work per key. The returned release func is always
// non-nil when err is nil.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

func readerLockKey(readerID uuid.UUID) string {
	return "lock:rental:reader:" + readerID.String()
}

// ========================================
// REDIS
// ========================================

type redisLocker struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewRedisLocker uses SET NX PX with a random token. A Redis failure does
// not block the caller: the lock degrades to a no-op and a warning is logged.
func NewRedisLocker(c cache.Cache, ttl time.Duration) Locker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &redisLocker{cache: c, ttl: ttl}
}

func (l *redisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()

	for attempt := 1; attempt <= lockMaxAttempts; attempt++ {
		ok, err := l.cache.SetNX(ctx, key, token, l.ttl)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("[RentalLock] redis unavailable, rental limit is best-effort")
			return func() {}, nil
		}
		if ok {
			return func() { l.release(ctx, key, token) }, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryDelay):
		}
	}

	return nil, model.ErrRentalInProgress
}

func (l *redisLocker) release(ctx context.Context, key, token string) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lockReleaseGrace)
	defer cancel()

	if _, err := l.cache.CompareAndDelete(rctx, key, token); err != nil {
		// the key expires on its own after ttl
		log.Warn().Err(err).Str("key", key).Msg("[RentalLock] release failed")
	}
}

// ========================================
// IN-PROCESS
// ========================================

type keyedMutex struct {
	mu   sync.Mutex
	refs int
}

type localLocker struct {
	mu    sync.Mutex
	locks map[string]*keyedMutex
}

// NewLocalLocker serializes within one process; used when no cache is configured
func NewLocalLocker() Locker {
	return &localLocker{locks: make(map[string]*keyedMutex)}
}

func (l *localLocker) Acquire(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	km, ok := l.locks[key]
	if !ok {
		km = &keyedMutex{}
		l.locks[key] = km
	}
	km.refs++
	l.mu.Unlock()

	km.mu.Lock()

	return func() {
		km.mu.Unlock()

		l.mu.Lock()
		km.refs--
		if km.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}, nil
}
