// Package mocks provides testify mocks for the core ports.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/srgjo27/concert-reservation/internal/core/domain"
	"github.com/srgjo27/concert-reservation/internal/core/ports"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

type SeatRepository struct {
	mock.Mock
}

func NewSeatRepository(t testingT) *SeatRepository {
	m := &SeatRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *SeatRepository) ReserveSeat(ctx context.Context, concertID int64, scheduleDate time.Time, seatNumber int) (*domain.Seat, error) {
	args := _m.Called(ctx, concertID, scheduleDate, seatNumber)
	seat, _ := args.Get(0).(*domain.Seat)
	return seat, args.Error(1)
}

func (_m *SeatRepository) PayForSeat(ctx context.Context, seatID int64) (*domain.Seat, error) {
	args := _m.Called(ctx, seatID)
	seat, _ := args.Get(0).(*domain.Seat)
	return seat, args.Error(1)
}

func (_m *SeatRepository) ReleaseSeat(ctx context.Context, seatID int64) error {
	args := _m.Called(ctx, seatID)
	return args.Error(0)
}

func (_m *SeatRepository) AvailableSeats(ctx context.Context, concertID int64, scheduleDate time.Time) ([]domain.Seat, error) {
	args := _m.Called(ctx, concertID, scheduleDate)
	seats, _ := args.Get(0).([]domain.Seat)
	return seats, args.Error(1)
}

func (_m *SeatRepository) CountAvailable(ctx context.Context, concertID int64, scheduleDate time.Time) (int64, error) {
	args := _m.Called(ctx, concertID, scheduleDate)
	return args.Get(0).(int64), args.Error(1)
}

type ReservationRepository struct {
	mock.Mock
}

func NewReservationRepository(t testingT) *ReservationRepository {
	m := &ReservationRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *ReservationRepository) Create(ctx context.Context, reservation *domain.Reservation, msg *domain.OutboxMessage) error {
	args := _m.Called(ctx, reservation, msg)
	return args.Error(0)
}

func (_m *ReservationRepository) GetByID(ctx context.Context, reservationID uuid.UUID) (*domain.Reservation, error) {
	args := _m.Called(ctx, reservationID)
	reservation, _ := args.Get(0).(*domain.Reservation)
	return reservation, args.Error(1)
}

func (_m *ReservationRepository) UpdatePaid(ctx context.Context, reservation *domain.Reservation, msg *domain.OutboxMessage) error {
	args := _m.Called(ctx, reservation, msg)
	return args.Error(0)
}

func (_m *ReservationRepository) FindExpired(ctx context.Context) ([]domain.Reservation, error) {
	args := _m.Called(ctx)
	reservations, _ := args.Get(0).([]domain.Reservation)
	return reservations, args.Error(1)
}

func (_m *ReservationRepository) Cancel(ctx context.Context, reservationID uuid.UUID) error {
	args := _m.Called(ctx, reservationID)
	return args.Error(0)
}

type BalanceService struct {
	mock.Mock
}

func NewBalanceService(t testingT) *BalanceService {
	m := &BalanceService{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *BalanceService) ProcessPayment(ctx context.Context, userID, amount int64) (int64, error) {
	args := _m.Called(ctx, userID, amount)
	return args.Get(0).(int64), args.Error(1)
}

type TokenRepository struct {
	mock.Mock
}

func NewTokenRepository(t testingT) *TokenRepository {
	m := &TokenRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *TokenRepository) NextTokenID(ctx context.Context) (int64, error) {
	args := _m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (_m *TokenRepository) Enqueue(ctx context.Context, tokenID, userID int64) error {
	args := _m.Called(ctx, tokenID, userID)
	return args.Error(0)
}

func (_m *TokenRepository) GrantAdmission(ctx context.Context, tokenID int64, ttl time.Duration) (int64, error) {
	args := _m.Called(ctx, tokenID, ttl)
	return args.Get(0).(int64), args.Error(1)
}

func (_m *TokenRepository) ExtendTTL(ctx context.Context, tokenID int64) (bool, error) {
	args := _m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func (_m *TokenRepository) IsValid(ctx context.Context, tokenID int64) (bool, error) {
	args := _m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func (_m *TokenRepository) QueuePosition(ctx context.Context, tokenID int64) (int64, bool, error) {
	args := _m.Called(ctx, tokenID)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (_m *TokenRepository) Expiration(ctx context.Context, tokenID int64) (int64, bool, error) {
	args := _m.Called(ctx, tokenID)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (_m *TokenRepository) TokenByUser(ctx context.Context, userID int64) (int64, bool, error) {
	args := _m.Called(ctx, userID)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (_m *TokenRepository) Metadata(ctx context.Context, tokenID int64) (*domain.Token, error) {
	args := _m.Called(ctx, tokenID)
	token, _ := args.Get(0).(*domain.Token)
	return token, args.Error(1)
}

func (_m *TokenRepository) SweepExpired(ctx context.Context) (int64, error) {
	args := _m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (_m *TokenRepository) Withdraw(ctx context.Context, tokenID int64) error {
	args := _m.Called(ctx, tokenID)
	return args.Error(0)
}

func (_m *TokenRepository) Remove(ctx context.Context, tokenID int64) error {
	args := _m.Called(ctx, tokenID)
	return args.Error(0)
}

type SeatLocker struct {
	mock.Mock
}

func NewSeatLocker(t testingT) *SeatLocker {
	m := &SeatLocker{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *SeatLocker) Acquire(ctx context.Context, seatID int64) (ports.SeatLock, error) {
	args := _m.Called(ctx, seatID)
	lock, _ := args.Get(0).(ports.SeatLock)
	return lock, args.Error(1)
}

type SeatLock struct {
	mock.Mock
}

func NewSeatLock(t testingT) *SeatLock {
	m := &SeatLock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *SeatLock) Release(ctx context.Context) error {
	args := _m.Called(ctx)
	return args.Error(0)
}

type OutboxRepository struct {
	mock.Mock
}

func NewOutboxRepository(t testingT) *OutboxRepository {
	m := &OutboxRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *OutboxRepository) FetchUnpublished(ctx context.Context, limit int) ([]domain.OutboxMessage, error) {
	args := _m.Called(ctx, limit)
	messages, _ := args.Get(0).([]domain.OutboxMessage)
	return messages, args.Error(1)
}

func (_m *OutboxRepository) MarkPublished(ctx context.Context, messageID uuid.UUID) error {
	args := _m.Called(ctx, messageID)
	return args.Error(0)
}

type EventPublisher struct {
	mock.Mock
}

func NewEventPublisher(t testingT) *EventPublisher {
	m := &EventPublisher{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *EventPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	args := _m.Called(ctx, topic, payload)
	return args.Error(0)
}
