package domain

import (
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	ReservationReserved  ReservationStatus = "RESERVED"
	ReservationPaid      ReservationStatus = "PAID"
	ReservationCancelled ReservationStatus = "CANCELLED"
)

// Reservation is the record of one user's hold on one seat. Price is captured
// at reservation time and never changes; PaidAmount and PaidAt are written
// exactly once, on the PAID transition. A reservation is never deleted, its
// state machine ends at PAID or CANCELLED.
type Reservation struct {
	ID         uuid.UUID
	SeatID     int64
	UserID     int64
	Price      int64
	Status     ReservationStatus
	CreatedAt  time.Time
	ExpiresAt  time.Time
	PaidAmount *int64
	PaidAt     *time.Time
}

func NewReservation(seatID, userID, price int64, now time.Time, holdTTL time.Duration) *Reservation {
	return &Reservation{
		ID:        uuid.New(),
		SeatID:    seatID,
		UserID:    userID,
		Price:     price,
		Status:    ReservationReserved,
		CreatedAt: now,
		ExpiresAt: now.Add(holdTTL),
	}
}

// Validate reports whether the reservation can still be paid for.
func (r *Reservation) Validate(now time.Time) error {
	if r.Status != ReservationReserved {
		return ErrReservationNotPayable
	}
	if now.After(r.ExpiresAt) {
		return ErrReservationExpired
	}
	return nil
}

func (r *Reservation) Pay(paidAmount int64, now time.Time) {
	r.Status = ReservationPaid
	r.PaidAmount = &paidAmount
	r.PaidAt = &now
}
