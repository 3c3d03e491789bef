package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/concert-reservation/internal/core/domain"
	"github.com/srgjo27/concert-reservation/internal/core/ports"
)

const scheduleDateLayout = "2006-01-02"

type ReserveRequest struct {
	SeatID       int64  `json:"seat_id"`
	ConcertID    int64  `json:"concert_id"`
	ScheduleDate string `json:"schedule_date"`
	SeatNumber   int    `json:"seat_number"`
	UserID       int64  `json:"user_id"`
}

type ReserveResponse struct {
	ReservationID string `json:"reservation_id"`
	SeatStatus    string `json:"seat_status"`
	ExpiresAt     string `json:"expires_at"`
}

type PayRequest struct {
	ReservationID string `json:"reservation_id"`
	SeatID        int64  `json:"seat_id"`
	UserID        int64  `json:"user_id"`
	PaymentAmount int64  `json:"payment_amount"`
}

type PayResponse struct {
	ReservationID    string `json:"reservation_id"`
	SeatStatus       string `json:"seat_status"`
	RemainingBalance int64  `json:"remaining_balance"`
	Price            int64  `json:"price"`
	PaidAmount       int64  `json:"paid_amount"`
	PaidAt           string `json:"paid_at"`
}

// ReservationService drives the reserve -> pay saga. Every seat-affecting path
// runs under that seat's lease lock; the sub-steps of Pay each commit in their
// own transactional authority, so failures after the balance debit are
// surfaced for reconciliation rather than rolled back.
type ReservationService struct {
	seatRepo        ports.SeatRepository
	reservationRepo ports.ReservationRepository
	balance         ports.BalanceService
	tokens          ports.TokenRepository
	locker          ports.SeatLocker
	logger          *log.Logger
	holdTTL         time.Duration
	now             func() time.Time
}

func NewReservationService(
	seatRepo ports.SeatRepository,
	reservationRepo ports.ReservationRepository,
	balance ports.BalanceService,
	tokens ports.TokenRepository,
	locker ports.SeatLocker,
	logger *log.Logger,
	holdTTL time.Duration,
) *ReservationService {
	return &ReservationService{
		seatRepo:        seatRepo,
		reservationRepo: reservationRepo,
		balance:         balance,
		tokens:          tokens,
		locker:          locker,
		logger:          logger,
		holdTTL:         holdTTL,
		now:             time.Now,
	}
}

func (s *ReservationService) Reserve(ctx context.Context, req ReserveRequest) (*ReserveResponse, error) {
	scheduleDate, err := time.Parse(scheduleDateLayout, req.ScheduleDate)
	if err != nil {
		return nil, errors.New("invalid schedule date")
	}

	lock, err := s.locker.Acquire(ctx, req.SeatID)
	if err != nil {
		return nil, err
	}
	defer s.release(lock)

	seat, err := s.seatRepo.ReserveSeat(ctx, req.ConcertID, scheduleDate, req.SeatNumber)
	if err != nil {
		return nil, err
	}

	now := s.now()
	reservation := domain.NewReservation(seat.ID, req.UserID, seat.Price, now, s.holdTTL)

	msg, err := domain.NewSeatReservedMessage(reservation.ID, seat.SeatNumber, now)
	if err != nil {
		return nil, fmt.Errorf("failed to build reserved event: %w", err)
	}

	if err := s.reservationRepo.Create(ctx, reservation, msg); err != nil {
		if relErr := s.seatRepo.ReleaseSeat(ctx, seat.ID); relErr != nil {
			s.logger.Printf("Failed to release seat %d after reservation create failure: %v", seat.ID, relErr)
		}
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	return &ReserveResponse{
		ReservationID: reservation.ID.String(),
		SeatStatus:    string(seat.Status),
		ExpiresAt:     reservation.ExpiresAt.Format(time.RFC3339),
	}, nil
}

func (s *ReservationService) Pay(ctx context.Context, req PayRequest) (*PayResponse, error) {
	reservationID, err := uuid.Parse(req.ReservationID)
	if err != nil {
		return nil, errors.New("invalid reservation id")
	}

	lock, err := s.locker.Acquire(ctx, req.SeatID)
	if err != nil {
		return nil, err
	}
	defer s.release(lock)

	reservation, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	if err := reservation.Validate(s.now()); err != nil {
		// Compensating action: an invalid hold gives the seat back before the
		// validation error reaches the caller.
		if relErr := s.seatRepo.ReleaseSeat(ctx, reservation.SeatID); relErr != nil {
			s.logger.Printf("Failed to release seat %d for invalid reservation %s: %v", reservation.SeatID, reservation.ID, relErr)
		}
		return nil, err
	}

	remaining, err := s.balance.ProcessPayment(ctx, req.UserID, req.PaymentAmount)
	if err != nil {
		return nil, err
	}

	// Contractual arithmetic, kept exactly as upstream defines it.
	paidAmount := reservation.Price - remaining + req.PaymentAmount

	seat, err := s.seatRepo.PayForSeat(ctx, reservation.SeatID)
	if err != nil {
		s.logger.Printf("Seat %d payment transition failed after debit of user %d, manual reconciliation required: %v", reservation.SeatID, req.UserID, err)
		return nil, fmt.Errorf("failed to mark seat paid after debit: %w", err)
	}

	now := s.now()
	reservation.Pay(paidAmount, now)

	msg, err := domain.NewSeatPaidMessage(reservation.ID, reservation.UserID, reservation.SeatID, paidAmount, now)
	if err != nil {
		return nil, fmt.Errorf("failed to build paid event: %w", err)
	}

	if err := s.reservationRepo.UpdatePaid(ctx, reservation, msg); err != nil {
		s.logger.Printf("Reservation %s paid update failed after debit of user %d, manual reconciliation required: %v", reservation.ID, req.UserID, err)
		return nil, fmt.Errorf("failed to update reservation after debit: %w", err)
	}

	s.expireUserToken(ctx, reservation.UserID)

	return &PayResponse{
		ReservationID:    reservation.ID.String(),
		SeatStatus:       string(seat.Status),
		RemainingBalance: remaining,
		Price:            reservation.Price,
		PaidAmount:       paidAmount,
		PaidAt:           now.Format(time.RFC3339),
	}, nil
}

// expireUserToken reclaims the user's admission slot once payment completes.
// The payment has already settled, so failures here are logged, not returned.
func (s *ReservationService) expireUserToken(ctx context.Context, userID int64) {
	tokenID, ok, err := s.tokens.TokenByUser(ctx, userID)
	if err != nil {
		s.logger.Printf("Failed to look up queue token for user %d: %v", userID, err)
		return
	}
	if !ok {
		return
	}

	if err := s.tokens.Withdraw(ctx, tokenID); err != nil {
		s.logger.Printf("Failed to withdraw queue token %d: %v", tokenID, err)
		return
	}
	if err := s.tokens.Remove(ctx, tokenID); err != nil {
		s.logger.Printf("Failed to remove queue token %d: %v", tokenID, err)
	}
}

// CleanupExpiredReservations cancels reservations whose hold lapsed and
// releases their seats. Each item is handled in isolation; one failure never
// aborts the rest of the batch.
func (s *ReservationService) CleanupExpiredReservations(ctx context.Context) {
	expired, err := s.reservationRepo.FindExpired(ctx)
	if err != nil {
		s.logger.Printf("Error fetching expired reservations: %v", err)
		return
	}

	if len(expired) == 0 {
		return
	}

	s.logger.Printf("Found %d expired reservations. Cleaning up...", len(expired))

	for i := range expired {
		reservation := &expired[i]
		if err := s.cleanupOne(ctx, reservation); err != nil {
			s.logger.Printf("Failed to cancel reservation %s: %v", reservation.ID, err)
			continue
		}
		s.logger.Printf("Reservation %s expired and seat %d released.", reservation.ID, reservation.SeatID)
	}
}

func (s *ReservationService) cleanupOne(ctx context.Context, reservation *domain.Reservation) error {
	// The seat lock keeps the sweep from racing an in-flight pay on the same
	// seat.
	lock, err := s.locker.Acquire(ctx, reservation.SeatID)
	if err != nil {
		return err
	}
	defer s.release(lock)

	if err := s.reservationRepo.Cancel(ctx, reservation.ID); err != nil {
		if errors.Is(err, domain.ErrReservationNotFound) {
			// Settled by a concurrent pay between the scan and the lock.
			return nil
		}
		return err
	}

	return s.seatRepo.ReleaseSeat(ctx, reservation.SeatID)
}

func (s *ReservationService) release(lock ports.SeatLock) {
	if err := lock.Release(context.Background()); err != nil {
		s.logger.Printf("Failed to release seat lock: %v", err)
	}
}

func (s *ReservationService) RunCleanupWorker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Printf("Reservation cleanup worker started: checking expired holds every %s...", interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Println("Reservation cleanup worker stopped.")
			return
		case <-ticker.C:
			s.CleanupExpiredReservations(ctx)
		}
	}
}
