package jsonstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	defaultLockTTL      = 10 * time.Second
	defaultLockInterval = 25 * time.Millisecond
)

// ReleaseFunc gives up a held lock.
type ReleaseFunc func(ctx context.Context) error

// Locker serializes access to a collection. Lock blocks until the lock is held
// or ctx is done.
type Locker interface {
	Lock(ctx context.Context) (ReleaseFunc, error)
}

// MutexLocker is an in-process lock that honours context cancellation.
type MutexLocker struct {
	sem chan struct{}
}

func NewMutexLocker() *MutexLocker {
	return &MutexLocker{sem: make(chan struct{}, 1)}
}

func (m *MutexLocker) Lock(ctx context.Context) (ReleaseFunc, error) {
	select {
	case m.sem <- struct{}{}:
		return func(context.Context) error {
			<-m.sem
			return nil
		}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// lockStore is the subset of the redis client used by RedisLocker.
type lockStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	CompareAndDelete(ctx context.Context, key, token string) (bool, error)
	LockKey(scope string) string
}

// RedisLocker coordinates writers across processes sharing the same data
// directory. Each acquisition stores a random owner token with a TTL.
type RedisLocker struct {
	store    lockStore
	key      string
	ttl      time.Duration
	interval time.Duration
}

// NewRedisLocker builds a lock for the named collection.
func NewRedisLocker(store lockStore, collection string, ttl time.Duration) (*RedisLocker, error) {
	if store == nil {
		return nil, errors.New("redis client required for lock")
	}
	if collection == "" {
		return nil, errors.New("collection name is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLocker{
		store:    store,
		key:      store.LockKey("collection:" + collection),
		ttl:      ttl,
		interval: defaultLockInterval,
	}, nil
}

func (l *RedisLocker) Lock(ctx context.Context) (ReleaseFunc, error) {
	token := uuid.NewString()
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
		ok, err := l.store.SetNX(ctx, l.key, token, l.ttl)
		if err != nil {
			return nil, fmt.Errorf("setnx %s: %w", l.key, err)
		}
		if ok {
			return func(releaseCtx context.Context) error {
				if _, err := l.store.CompareAndDelete(releaseCtx, l.key, token); err != nil {
					return fmt.Errorf("release %s: %w", l.key, err)
				}
				return nil
			}, nil
		}
		timer.Reset(l.interval)
	}
}
