package redisrepo

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/srgjo27/concert-reservation/internal/core/domain"
	"github.com/srgjo27/concert-reservation/internal/core/ports"
)

const seatLockKeyPrefix = "lock:seat:"

// Release only deletes the key while this holder still owns it, so a lock
// whose lease already lapsed cannot delete a successor's lock.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// SeatLocker serializes all operations against a seat with a leased Redis
// lock. The lease outlives the expected operation latency so a crashed holder
// frees the seat on its own; waiters poll up to waitTimeout before giving up
// with domain.ErrSeatBusy.
type SeatLocker struct {
	client        *redis.Client
	leaseTTL      time.Duration
	waitTimeout   time.Duration
	retryInterval time.Duration
	newToken      func() string
}

func NewSeatLocker(client *redis.Client) *SeatLocker {
	return &SeatLocker{
		client:        client,
		leaseTTL:      30 * time.Second,
		waitTimeout:   3 * time.Second,
		retryInterval: 50 * time.Millisecond,
		newToken:      uuid.NewString,
	}
}

func seatLockKey(seatID int64) string {
	return seatLockKeyPrefix + strconv.FormatInt(seatID, 10)
}

func (l *SeatLocker) Acquire(ctx context.Context, seatID int64) (ports.SeatLock, error) {
	key := seatLockKey(seatID)
	token := l.newToken()
	deadline := time.Now().Add(l.waitTimeout)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.leaseTTL).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return &seatLock{client: l.client, key: key, token: token}, nil
		}

		if time.Now().After(deadline) {
			return nil, domain.ErrSeatBusy
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retryInterval):
		}
	}
}

type seatLock struct {
	client *redis.Client
	key    string
	token  string
}

func (l *seatLock) Release(ctx context.Context) error {
	return releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Err()
}
