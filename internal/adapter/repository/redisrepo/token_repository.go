package redisrepo

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/srgjo27/concert-reservation/internal/core/domain"
)

const (
	tokenKeyPrefix = "token:id:"
	counterKey     = "token:id:counter"
	waitingKey     = "token:queue"
	activeKey      = "token:active"
	userKeyPrefix  = "token:user:"

	// MaxTTL caps how far a single grant or extension can push an admission
	// expiry past the present moment. Repeated extensions keep moving the cap
	// forward, so total session length is unbounded across calls.
	MaxTTL = 30 * time.Minute

	// TTLIncrement is the sliding-window step added by each extension.
	TTLIncrement = time.Minute
)

// TokenRepository keeps the admission queue in Redis: a hash per token for
// metadata, a ZSET ordered by arrival for the waiting order, a ZSET scored by
// expiry epoch for the active set, and a plain key indexing user to token.
// The hash carries a native TTL so the record garbage-collects itself, but
// only the active-set score decides validity; the two expirations are written
// together on every grant.
type TokenRepository struct {
	client *redis.Client
	now    func() time.Time
}

func NewTokenRepository(client *redis.Client) *TokenRepository {
	return &TokenRepository{
		client: client,
		now:    time.Now,
	}
}

func tokenKey(tokenID int64) string {
	return tokenKeyPrefix + strconv.FormatInt(tokenID, 10)
}

func userKey(userID int64) string {
	return userKeyPrefix + strconv.FormatInt(userID, 10)
}

func member(tokenID int64) string {
	return strconv.FormatInt(tokenID, 10)
}

// NextTokenID hands out token ids from a shared atomic counter, never reused.
func (r *TokenRepository) NextTokenID(ctx context.Context) (int64, error) {
	return r.client.Incr(ctx, counterKey).Result()
}

// Enqueue writes PENDING metadata and appends the token to the waiting order.
// The token id doubles as the arrival score since ids are monotonic. Callers
// enqueue each token id once.
func (r *TokenRepository) Enqueue(ctx context.Context, tokenID, userID int64) error {
	key := tokenKey(tokenID)
	if err := r.client.HSet(ctx, key,
		"user_id", strconv.FormatInt(userID, 10),
		"status", string(domain.TokenPending),
	).Err(); err != nil {
		return err
	}

	if err := r.client.ZAdd(ctx, waitingKey, redis.Z{
		Score:  float64(tokenID),
		Member: member(tokenID),
	}).Err(); err != nil {
		return err
	}

	return r.client.Set(ctx, userKey(userID), member(tokenID), 0).Err()
}

// GrantAdmission activates a token: metadata flips to ACTIVE with a native TTL
// equal to the granted duration, and the expiry epoch lands in the active set.
// The requested TTL is clamped to [1s, MaxTTL]. Returns the expiry granted.
func (r *TokenRepository) GrantAdmission(ctx context.Context, tokenID int64, ttl time.Duration) (int64, error) {
	if ttl < time.Second {
		ttl = time.Second
	}
	if ttl > MaxTTL {
		ttl = MaxTTL
	}
	expiry := r.now().Add(ttl).Unix()

	key := tokenKey(tokenID)
	if err := r.client.HSet(ctx, key, "status", string(domain.TokenActive)).Err(); err != nil {
		return 0, err
	}
	if err := r.client.Expire(ctx, key, ttl).Err(); err != nil {
		return 0, err
	}
	if err := r.client.ZAdd(ctx, activeKey, redis.Z{
		Score:  float64(expiry),
		Member: member(tokenID),
	}).Err(); err != nil {
		return 0, err
	}

	// An admitted token no longer waits.
	if err := r.client.ZRem(ctx, waitingKey, member(tokenID)).Err(); err != nil {
		return 0, err
	}

	return expiry, nil
}

// ExtendTTL slides an active token's expiry by TTLIncrement, capped at MaxTTL
// from now. Returns false when the token has no active entry.
func (r *TokenRepository) ExtendTTL(ctx context.Context, tokenID int64) (bool, error) {
	score, err := r.client.ZScore(ctx, activeKey, member(tokenID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	newExpiry := score + TTLIncrement.Seconds()
	if ceiling := float64(r.now().Add(MaxTTL).Unix()); newExpiry > ceiling {
		newExpiry = ceiling
	}

	if err := r.client.ZAdd(ctx, activeKey, redis.Z{
		Score:  newExpiry,
		Member: member(tokenID),
	}).Err(); err != nil {
		return false, err
	}

	return true, nil
}

// IsValid is the authoritative liveness check: only a live active-set score
// counts, regardless of whether the metadata record still exists.
func (r *TokenRepository) IsValid(ctx context.Context, tokenID int64) (bool, error) {
	score, err := r.client.ZScore(ctx, activeKey, member(tokenID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return score > float64(r.now().Unix()), nil
}

func (r *TokenRepository) QueuePosition(ctx context.Context, tokenID int64) (int64, bool, error) {
	rank, err := r.client.ZRank(ctx, waitingKey, member(tokenID)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return rank, true, nil
}

func (r *TokenRepository) Expiration(ctx context.Context, tokenID int64) (int64, bool, error) {
	score, err := r.client.ZScore(ctx, activeKey, member(tokenID)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return int64(score), true, nil
}

func (r *TokenRepository) TokenByUser(ctx context.Context, userID int64) (int64, bool, error) {
	raw, err := r.client.Get(ctx, userKey(userID)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	tokenID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return tokenID, true, nil
}

func (r *TokenRepository) Metadata(ctx context.Context, tokenID int64) (*domain.Token, error) {
	fields, err := r.client.HGetAll(ctx, tokenKey(tokenID)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, domain.ErrTokenNotFound
	}

	userID, err := strconv.ParseInt(fields["user_id"], 10, 64)
	if err != nil {
		return nil, err
	}

	return &domain.Token{
		ID:     tokenID,
		UserID: userID,
		Status: domain.TokenStatus(fields["status"]),
	}, nil
}

// SweepExpired prunes every active-set entry whose expiry has passed. The
// native hash TTL removes metadata on its own, but ZSET members never expire
// by themselves. Removing absent members is a no-op, so the sweep is safe to
// run concurrently and repeatedly.
func (r *TokenRepository) SweepExpired(ctx context.Context) (int64, error) {
	return r.client.ZRemRangeByScore(ctx, activeKey, "-inf", strconv.FormatInt(r.now().Unix(), 10)).Result()
}

// Withdraw drops the token from both ordered structures.
func (r *TokenRepository) Withdraw(ctx context.Context, tokenID int64) error {
	if err := r.client.ZRem(ctx, activeKey, member(tokenID)).Err(); err != nil {
		return err
	}
	return r.client.ZRem(ctx, waitingKey, member(tokenID)).Err()
}

// Remove deletes the metadata record and the user index pointing at it.
func (r *TokenRepository) Remove(ctx context.Context, tokenID int64) error {
	key := tokenKey(tokenID)

	rawUser, err := r.client.HGet(ctx, key, "user_id").Result()
	if err != nil && err != redis.Nil {
		return err
	}
	if err == nil {
		if err := r.client.Del(ctx, userKeyPrefix+rawUser).Err(); err != nil {
			return err
		}
	}

	return r.client.Del(ctx, key).Err()
}
