package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/concert-reservation/internal/core/domain"
)

// SeatRepository is the seat inventory authority. Status transitions are only
// AVAILABLE -> RESERVED -> PAID forward or RESERVED -> AVAILABLE backward, and
// callers mutate a seat exclusively while holding its lock.
type SeatRepository interface {
	ReserveSeat(ctx context.Context, concertID int64, scheduleDate time.Time, seatNumber int) (*domain.Seat, error)
	PayForSeat(ctx context.Context, seatID int64) (*domain.Seat, error)
	ReleaseSeat(ctx context.Context, seatID int64) error
	AvailableSeats(ctx context.Context, concertID int64, scheduleDate time.Time) ([]domain.Seat, error)
	CountAvailable(ctx context.Context, concertID int64, scheduleDate time.Time) (int64, error)
}

// ReservationRepository owns reservation rows. Create and UpdatePaid take the
// outbox message produced by the transition so its insert commits in the same
// transaction as the reservation change.
type ReservationRepository interface {
	Create(ctx context.Context, reservation *domain.Reservation, msg *domain.OutboxMessage) error
	GetByID(ctx context.Context, reservationID uuid.UUID) (*domain.Reservation, error)
	UpdatePaid(ctx context.Context, reservation *domain.Reservation, msg *domain.OutboxMessage) error
	FindExpired(ctx context.Context) ([]domain.Reservation, error)
	Cancel(ctx context.Context, reservationID uuid.UUID) error
}

// BalanceService debits a user's balance and reports the balance remaining
// after the debit. Each call is its own transaction.
type BalanceService interface {
	ProcessPayment(ctx context.Context, userID, amount int64) (int64, error)
}

// TokenRepository is the admission store. The waiting order and the active set
// are two score-ordered structures over the same store: waiting is scored by
// arrival, active by absolute expiry epoch seconds. The active-set score is the
// authoritative liveness check; the metadata record's native TTL only garbage
// collects the record itself.
type TokenRepository interface {
	NextTokenID(ctx context.Context) (int64, error)
	Enqueue(ctx context.Context, tokenID, userID int64) error
	GrantAdmission(ctx context.Context, tokenID int64, ttl time.Duration) (int64, error)
	ExtendTTL(ctx context.Context, tokenID int64) (bool, error)
	IsValid(ctx context.Context, tokenID int64) (bool, error)
	QueuePosition(ctx context.Context, tokenID int64) (int64, bool, error)
	Expiration(ctx context.Context, tokenID int64) (int64, bool, error)
	TokenByUser(ctx context.Context, userID int64) (int64, bool, error)
	Metadata(ctx context.Context, tokenID int64) (*domain.Token, error)
	SweepExpired(ctx context.Context) (int64, error)
	Withdraw(ctx context.Context, tokenID int64) error
	Remove(ctx context.Context, tokenID int64) error
}

// SeatLocker hands out per-seat lease locks. Acquire waits a bounded time on
// contention and returns domain.ErrSeatBusy once that wait is exhausted.
type SeatLocker interface {
	Acquire(ctx context.Context, seatID int64) (SeatLock, error)
}

type SeatLock interface {
	Release(ctx context.Context) error
}

// OutboxRepository exposes the persisted event records to the relay.
type OutboxRepository interface {
	FetchUnpublished(ctx context.Context, limit int) ([]domain.OutboxMessage, error)
	MarkPublished(ctx context.Context, messageID uuid.UUID) error
}

// EventPublisher forwards a persisted event to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}
