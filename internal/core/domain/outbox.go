package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	TopicSeatReserved = "concert.seat.reserved"
	TopicSeatPaid     = "concert.seat.paid"
)

// OutboxMessage is the durable record of a domain event. It is inserted in
// the same transaction as the state change that produced it; a relay forwards
// unpublished rows to the broker later (at-least-once).
type OutboxMessage struct {
	ID          uuid.UUID
	Topic       string
	Payload     []byte
	CreatedAt   time.Time
	PublishedAt *time.Time
}

type SeatReservedEvent struct {
	ReservationID string `json:"reservation_id"`
	SeatNumber    int    `json:"seat_number"`
}

type SeatPaidEvent struct {
	ReservationID string `json:"reservation_id"`
	UserID        int64  `json:"user_id"`
	SeatID        int64  `json:"seat_id"`
	PaidAmount    int64  `json:"paid_amount"`
}

func NewSeatReservedMessage(reservationID uuid.UUID, seatNumber int, now time.Time) (*OutboxMessage, error) {
	payload, err := json.Marshal(SeatReservedEvent{
		ReservationID: reservationID.String(),
		SeatNumber:    seatNumber,
	})
	if err != nil {
		return nil, err
	}

	return &OutboxMessage{
		ID:        uuid.New(),
		Topic:     TopicSeatReserved,
		Payload:   payload,
		CreatedAt: now,
	}, nil
}

func NewSeatPaidMessage(reservationID uuid.UUID, userID, seatID, paidAmount int64, now time.Time) (*OutboxMessage, error) {
	payload, err := json.Marshal(SeatPaidEvent{
		ReservationID: reservationID.String(),
		UserID:        userID,
		SeatID:        seatID,
		PaidAmount:    paidAmount,
	})
	if err != nil {
		return nil, err
	}

	return &OutboxMessage{
		ID:        uuid.New(),
		Topic:     TopicSeatPaid,
		Payload:   payload,
		CreatedAt: now,
	}, nil
}
