package services_test

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/srgjo27/concert-reservation/internal/core/domain"
	"github.com/srgjo27/concert-reservation/internal/core/ports/mocks"
	"github.com/srgjo27/concert-reservation/internal/core/services"
)

func newReservationService(t *testing.T) (
	*services.ReservationService,
	*mocks.SeatRepository,
	*mocks.ReservationRepository,
	*mocks.BalanceService,
	*mocks.TokenRepository,
	*mocks.SeatLocker,
) {
	seatRepo := mocks.NewSeatRepository(t)
	reservationRepo := mocks.NewReservationRepository(t)
	balance := mocks.NewBalanceService(t)
	tokens := mocks.NewTokenRepository(t)
	locker := mocks.NewSeatLocker(t)

	logger := log.New(io.Discard, "", 0)
	svc := services.NewReservationService(seatRepo, reservationRepo, balance, tokens, locker, logger, 5*time.Minute)

	return svc, seatRepo, reservationRepo, balance, tokens, locker
}

func grantLock(t *testing.T, locker *mocks.SeatLocker, seatID int64) *mocks.SeatLock {
	lock := mocks.NewSeatLock(t)
	lock.On("Release", mock.Anything).Return(nil)
	locker.On("Acquire", mock.Anything, seatID).Return(lock, nil)
	return lock
}

func TestReserve_Success(t *testing.T) {
	svc, seatRepo, reservationRepo, _, _, locker := newReservationService(t)

	ctx := context.Background()
	grantLock(t, locker, 7)

	scheduleDate := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	seat := &domain.Seat{
		ID:           7,
		ConcertID:    1,
		ScheduleDate: scheduleDate,
		SeatNumber:   12,
		Price:        10000,
		Status:       domain.SeatReserved,
	}

	seatRepo.On("ReserveSeat", ctx, int64(1), scheduleDate, 12).Return(seat, nil)
	reservationRepo.On("Create", ctx, mock.AnythingOfType("*domain.Reservation"), mock.AnythingOfType("*domain.OutboxMessage")).Return(nil)

	resp, err := svc.Reserve(ctx, services.ReserveRequest{
		SeatID:       7,
		ConcertID:    1,
		ScheduleDate: "2025-11-01",
		SeatNumber:   12,
		UserID:       42,
	})

	assert.NoError(t, err)
	if assert.NotNil(t, resp) {
		assert.Equal(t, string(domain.SeatReserved), resp.SeatStatus)
		_, parseErr := uuid.Parse(resp.ReservationID)
		assert.NoError(t, parseErr)
	}
}

func TestReserve_SeatConflict(t *testing.T) {
	svc, seatRepo, reservationRepo, _, _, locker := newReservationService(t)

	ctx := context.Background()
	grantLock(t, locker, 7)

	scheduleDate := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	seat := &domain.Seat{ID: 7, Price: 10000, Status: domain.SeatReserved}

	// The lock serializes the two callers; the second observes RESERVED.
	seatRepo.On("ReserveSeat", ctx, int64(1), scheduleDate, 12).Return(seat, nil).Once()
	seatRepo.On("ReserveSeat", ctx, int64(1), scheduleDate, 12).Return(nil, domain.ErrSeatUnavailable).Once()
	reservationRepo.On("Create", ctx, mock.Anything, mock.Anything).Return(nil).Once()

	req := services.ReserveRequest{
		SeatID:       7,
		ConcertID:    1,
		ScheduleDate: "2025-11-01",
		SeatNumber:   12,
		UserID:       42,
	}

	first, err := svc.Reserve(ctx, req)
	assert.NoError(t, err)
	assert.NotNil(t, first)

	second, err := svc.Reserve(ctx, req)
	assert.ErrorIs(t, err, domain.ErrSeatUnavailable)
	assert.Nil(t, second)
}

func TestReserve_SeatBusy(t *testing.T) {
	svc, _, _, _, _, locker := newReservationService(t)

	ctx := context.Background()
	locker.On("Acquire", mock.Anything, int64(7)).Return(nil, domain.ErrSeatBusy)

	resp, err := svc.Reserve(ctx, services.ReserveRequest{
		SeatID:       7,
		ConcertID:    1,
		ScheduleDate: "2025-11-01",
		SeatNumber:   12,
		UserID:       42,
	})

	assert.ErrorIs(t, err, domain.ErrSeatBusy)
	assert.Nil(t, resp)
}

func TestReserve_ReleasesSeatOnCreateFailure(t *testing.T) {
	svc, seatRepo, reservationRepo, _, _, locker := newReservationService(t)

	ctx := context.Background()
	grantLock(t, locker, 7)

	scheduleDate := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	seat := &domain.Seat{ID: 7, Price: 10000, Status: domain.SeatReserved}

	seatRepo.On("ReserveSeat", ctx, int64(1), scheduleDate, 12).Return(seat, nil)
	reservationRepo.On("Create", ctx, mock.Anything, mock.Anything).Return(assert.AnError)
	seatRepo.On("ReleaseSeat", ctx, int64(7)).Return(nil)

	resp, err := svc.Reserve(ctx, services.ReserveRequest{
		SeatID:       7,
		ConcertID:    1,
		ScheduleDate: "2025-11-01",
		SeatNumber:   12,
		UserID:       42,
	})

	assert.Error(t, err)
	assert.Nil(t, resp)
	seatRepo.AssertCalled(t, "ReleaseSeat", ctx, int64(7))
}

func TestPay_PinnedPaidAmountArithmetic(t *testing.T) {
	svc, seatRepo, reservationRepo, balance, tokens, locker := newReservationService(t)

	ctx := context.Background()
	grantLock(t, locker, 7)

	reservation := &domain.Reservation{
		ID:        uuid.New(),
		SeatID:    7,
		UserID:    42,
		Price:     10000,
		Status:    domain.ReservationReserved,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}

	reservationRepo.On("GetByID", ctx, reservation.ID).Return(reservation, nil)
	balance.On("ProcessPayment", ctx, int64(42), int64(10000)).Return(int64(0), nil)
	seatRepo.On("PayForSeat", ctx, int64(7)).Return(&domain.Seat{ID: 7, Status: domain.SeatPaid}, nil)
	reservationRepo.On("UpdatePaid", ctx, reservation, mock.AnythingOfType("*domain.OutboxMessage")).Return(nil)
	tokens.On("TokenByUser", ctx, int64(42)).Return(int64(3), true, nil)
	tokens.On("Withdraw", ctx, int64(3)).Return(nil)
	tokens.On("Remove", ctx, int64(3)).Return(nil)

	resp, err := svc.Pay(ctx, services.PayRequest{
		ReservationID: reservation.ID.String(),
		SeatID:        7,
		UserID:        42,
		PaymentAmount: 10000,
	})

	assert.NoError(t, err)
	if assert.NotNil(t, resp) {
		// price 10000, remaining 0, payment 10000 -> 10000 - 0 + 10000.
		assert.Equal(t, int64(20000), resp.PaidAmount)
		assert.Equal(t, int64(0), resp.RemainingBalance)
		assert.Equal(t, int64(10000), resp.Price)
		assert.Equal(t, string(domain.SeatPaid), resp.SeatStatus)
	}
}

func TestPay_ExpiredHoldReleasesSeat(t *testing.T) {
	svc, seatRepo, reservationRepo, _, _, locker := newReservationService(t)

	ctx := context.Background()
	grantLock(t, locker, 7)

	reservation := &domain.Reservation{
		ID:        uuid.New(),
		SeatID:    7,
		UserID:    42,
		Price:     10000,
		Status:    domain.ReservationReserved,
		CreatedAt: time.Now().Add(-10 * time.Minute),
		ExpiresAt: time.Now().Add(-5 * time.Minute),
	}

	reservationRepo.On("GetByID", ctx, reservation.ID).Return(reservation, nil)
	seatRepo.On("ReleaseSeat", ctx, int64(7)).Return(nil)

	resp, err := svc.Pay(ctx, services.PayRequest{
		ReservationID: reservation.ID.String(),
		SeatID:        7,
		UserID:        42,
		PaymentAmount: 10000,
	})

	assert.ErrorIs(t, err, domain.ErrReservationExpired)
	assert.NotErrorIs(t, err, domain.ErrReservationNotFound)
	assert.Nil(t, resp)
	seatRepo.AssertCalled(t, "ReleaseSeat", ctx, int64(7))
}

func TestPay_ReservationNotFound(t *testing.T) {
	svc, seatRepo, reservationRepo, _, _, locker := newReservationService(t)

	ctx := context.Background()
	grantLock(t, locker, 7)

	reservationID := uuid.New()
	reservationRepo.On("GetByID", ctx, reservationID).Return(nil, domain.ErrReservationNotFound)

	resp, err := svc.Pay(ctx, services.PayRequest{
		ReservationID: reservationID.String(),
		SeatID:        7,
		UserID:        42,
		PaymentAmount: 10000,
	})

	assert.ErrorIs(t, err, domain.ErrReservationNotFound)
	assert.Nil(t, resp)
	seatRepo.AssertNotCalled(t, "ReleaseSeat", mock.Anything, mock.Anything)
}

func TestPay_InsufficientBalanceIsNotCompensated(t *testing.T) {
	svc, seatRepo, reservationRepo, balance, _, locker := newReservationService(t)

	ctx := context.Background()
	grantLock(t, locker, 7)

	reservation := &domain.Reservation{
		ID:        uuid.New(),
		SeatID:    7,
		UserID:    42,
		Price:     10000,
		Status:    domain.ReservationReserved,
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}

	reservationRepo.On("GetByID", ctx, reservation.ID).Return(reservation, nil)
	balance.On("ProcessPayment", ctx, int64(42), int64(10000)).Return(int64(0), domain.ErrInsufficientBalance)

	resp, err := svc.Pay(ctx, services.PayRequest{
		ReservationID: reservation.ID.String(),
		SeatID:        7,
		UserID:        42,
		PaymentAmount: 10000,
	})

	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.Nil(t, resp)
	// Only the pre-debit validation failure releases the seat.
	seatRepo.AssertNotCalled(t, "ReleaseSeat", mock.Anything, mock.Anything)
}

func TestCleanupExpiredReservations_IsolatesFailures(t *testing.T) {
	svc, seatRepo, reservationRepo, _, _, locker := newReservationService(t)

	ctx := context.Background()

	expired := []domain.Reservation{
		{ID: uuid.New(), SeatID: 1, Status: domain.ReservationReserved},
		{ID: uuid.New(), SeatID: 2, Status: domain.ReservationReserved},
		{ID: uuid.New(), SeatID: 3, Status: domain.ReservationReserved},
	}

	reservationRepo.On("FindExpired", ctx).Return(expired, nil)
	for _, r := range expired {
		grantLock(t, locker, r.SeatID)
		reservationRepo.On("Cancel", ctx, r.ID).Return(nil)
	}

	seatRepo.On("ReleaseSeat", ctx, int64(1)).Return(nil)
	seatRepo.On("ReleaseSeat", ctx, int64(2)).Return(assert.AnError)
	seatRepo.On("ReleaseSeat", ctx, int64(3)).Return(nil)

	svc.CleanupExpiredReservations(ctx)

	// The failure on seat 2 never stops seats 1 and 3 from being handled.
	seatRepo.AssertNumberOfCalls(t, "ReleaseSeat", 3)
	reservationRepo.AssertNumberOfCalls(t, "Cancel", 3)
}

func TestCleanupExpiredReservations_SkipsConcurrentlySettled(t *testing.T) {
	svc, seatRepo, reservationRepo, _, _, locker := newReservationService(t)

	ctx := context.Background()

	reservation := domain.Reservation{ID: uuid.New(), SeatID: 9, Status: domain.ReservationReserved}
	reservationRepo.On("FindExpired", ctx).Return([]domain.Reservation{reservation}, nil)
	grantLock(t, locker, 9)

	// A pay beat the sweep to this seat between the scan and the lock.
	reservationRepo.On("Cancel", ctx, reservation.ID).Return(domain.ErrReservationNotFound)

	svc.CleanupExpiredReservations(ctx)

	seatRepo.AssertNotCalled(t, "ReleaseSeat", mock.Anything, mock.Anything)
}
