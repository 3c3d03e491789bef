package redisrepo

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/srgjo27/concert-reservation/internal/core/domain"
)

const frozenEpoch = int64(1_700_000_000)

func newTestRepository() (*TokenRepository, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	repo := NewTokenRepository(db)
	repo.now = func() time.Time { return time.Unix(frozenEpoch, 0) }
	return repo, mock
}

func TestGrantAdmissionThenIsValid(t *testing.T) {
	repo, mock := newTestRepository()
	ctx := context.Background()

	mock.ExpectHSet("token:id:42", "status", string(domain.TokenActive)).SetVal(1)
	mock.ExpectExpire("token:id:42", 60*time.Second).SetVal(true)
	mock.ExpectZAdd(activeKey, redis.Z{Score: float64(frozenEpoch + 60), Member: "42"}).SetVal(1)
	mock.ExpectZRem(waitingKey, "42").SetVal(1)

	expiry, err := repo.GrantAdmission(ctx, 42, 60*time.Second)
	assert.NoError(t, err)
	assert.Equal(t, frozenEpoch+60, expiry)

	mock.ExpectZScore(activeKey, "42").SetVal(float64(expiry))

	valid, err := repo.IsValid(ctx, 42)
	assert.NoError(t, err)
	assert.True(t, valid)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsValid_ExpiryElapsedBeforeSweep(t *testing.T) {
	repo, mock := newTestRepository()
	ctx := context.Background()

	// The entry is still in the active set but its score is in the past.
	mock.ExpectZScore(activeKey, "42").SetVal(float64(frozenEpoch - 1))

	valid, err := repo.IsValid(ctx, 42)
	assert.NoError(t, err)
	assert.False(t, valid)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGrantAdmission_ClampsTTLToMinimum(t *testing.T) {
	repo, mock := newTestRepository()
	ctx := context.Background()

	mock.ExpectHSet("token:id:42", "status", string(domain.TokenActive)).SetVal(1)
	mock.ExpectExpire("token:id:42", time.Second).SetVal(true)
	mock.ExpectZAdd(activeKey, redis.Z{Score: float64(frozenEpoch + 1), Member: "42"}).SetVal(1)
	mock.ExpectZRem(waitingKey, "42").SetVal(0)

	expiry, err := repo.GrantAdmission(ctx, 42, 0)
	assert.NoError(t, err)
	assert.Equal(t, frozenEpoch+1, expiry)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGrantAdmission_CapsTTLAtMax(t *testing.T) {
	repo, mock := newTestRepository()
	ctx := context.Background()

	capSeconds := int64(MaxTTL / time.Second)

	mock.ExpectHSet("token:id:42", "status", string(domain.TokenActive)).SetVal(1)
	mock.ExpectExpire("token:id:42", MaxTTL).SetVal(true)
	mock.ExpectZAdd(activeKey, redis.Z{Score: float64(frozenEpoch + capSeconds), Member: "42"}).SetVal(1)
	mock.ExpectZRem(waitingKey, "42").SetVal(1)

	expiry, err := repo.GrantAdmission(ctx, 42, 2*time.Hour)
	assert.NoError(t, err)
	assert.Equal(t, frozenEpoch+capSeconds, expiry)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExtendTTL_NoActiveEntry(t *testing.T) {
	repo, mock := newTestRepository()
	ctx := context.Background()

	mock.ExpectZScore(activeKey, "42").RedisNil()

	extended, err := repo.ExtendTTL(ctx, 42)
	assert.NoError(t, err)
	assert.False(t, extended)

	// No ZADD follows: nothing is mutated.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExtendTTL_SlidesWithinCap(t *testing.T) {
	repo, mock := newTestRepository()
	ctx := context.Background()

	current := float64(frozenEpoch + 120)
	mock.ExpectZScore(activeKey, "42").SetVal(current)
	mock.ExpectZAdd(activeKey, redis.Z{Score: current + TTLIncrement.Seconds(), Member: "42"}).SetVal(0)

	extended, err := repo.ExtendTTL(ctx, 42)
	assert.NoError(t, err)
	assert.True(t, extended)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExtendTTL_CappedAtMaxFromNow(t *testing.T) {
	repo, mock := newTestRepository()
	ctx := context.Background()

	capScore := float64(frozenEpoch + int64(MaxTTL/time.Second))

	// 30 seconds short of the cap; a full increment would overshoot it.
	mock.ExpectZScore(activeKey, "42").SetVal(capScore - 30)
	mock.ExpectZAdd(activeKey, redis.Z{Score: capScore, Member: "42"}).SetVal(0)

	extended, err := repo.ExtendTTL(ctx, 42)
	assert.NoError(t, err)
	assert.True(t, extended)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepExpired_Idempotent(t *testing.T) {
	repo, mock := newTestRepository()
	ctx := context.Background()

	nowStr := strconv.FormatInt(frozenEpoch, 10)

	mock.ExpectZRemRangeByScore(activeKey, "-inf", nowStr).SetVal(2)
	mock.ExpectZRemRangeByScore(activeKey, "-inf", nowStr).SetVal(0)

	removed, err := repo.SweepExpired(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	removed, err = repo.SweepExpired(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), removed)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnqueue_WritesMetadataWaitingOrderAndUserIndex(t *testing.T) {
	repo, mock := newTestRepository()
	ctx := context.Background()

	mock.ExpectHSet("token:id:42", "user_id", "77", "status", string(domain.TokenPending)).SetVal(2)
	mock.ExpectZAdd(waitingKey, redis.Z{Score: 42, Member: "42"}).SetVal(1)
	mock.ExpectSet("token:user:77", "42", 0).SetVal("OK")

	err := repo.Enqueue(ctx, 42, 77)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueuePosition_AbsentAfterAdmission(t *testing.T) {
	repo, mock := newTestRepository()
	ctx := context.Background()

	mock.ExpectZRank(waitingKey, "42").RedisNil()

	_, waiting, err := repo.QueuePosition(ctx, 42)
	assert.NoError(t, err)
	assert.False(t, waiting)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemove_DropsMetadataAndUserIndex(t *testing.T) {
	repo, mock := newTestRepository()
	ctx := context.Background()

	mock.ExpectHGet("token:id:42", "user_id").SetVal("77")
	mock.ExpectDel("token:user:77").SetVal(1)
	mock.ExpectDel("token:id:42").SetVal(1)

	err := repo.Remove(ctx, 42)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
