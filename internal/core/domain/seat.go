package domain

import "time"

type SeatStatus string

const (
	SeatAvailable SeatStatus = "AVAILABLE"
	SeatReserved  SeatStatus = "RESERVED"
	SeatPaid      SeatStatus = "PAID"
)

type Seat struct {
	ID           int64
	ConcertID    int64
	ScheduleDate time.Time
	SeatNumber   int
	Price        int64
	Status       SeatStatus
}

func (s *Seat) IsAvailable() bool {
	return s.Status == SeatAvailable
}
