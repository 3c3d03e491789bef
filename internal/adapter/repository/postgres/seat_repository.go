package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/srgjo27/concert-reservation/internal/core/domain"
)

type SeatRepository struct {
	db *sql.DB
}

func NewSeatRepository(db *sql.DB) *SeatRepository {
	return &SeatRepository{db: db}
}

// ReserveSeat transitions a seat AVAILABLE -> RESERVED. The conditional UPDATE
// guards against lost updates even though callers hold the seat lock.
func (r *SeatRepository) ReserveSeat(ctx context.Context, concertID int64, scheduleDate time.Time, seatNumber int) (*domain.Seat, error) {
	query := `
	SELECT id, price, status
	FROM seats
	WHERE concert_id = $1 AND schedule_date = $2 AND seat_number = $3
	`

	seat := domain.Seat{
		ConcertID:    concertID,
		ScheduleDate: scheduleDate,
		SeatNumber:   seatNumber,
	}

	err := r.db.QueryRowContext(ctx, query, concertID, scheduleDate, seatNumber).Scan(
		&seat.ID,
		&seat.Price,
		&seat.Status,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrSeatNotFound
		}
		return nil, err
	}

	update := `
	UPDATE seats
	SET status = $1
	WHERE id = $2 AND status = $3
	`

	result, err := r.db.ExecContext(ctx, update, domain.SeatReserved, seat.ID, domain.SeatAvailable)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, domain.ErrSeatUnavailable
	}

	seat.Status = domain.SeatReserved
	return &seat, nil
}

// PayForSeat transitions a seat RESERVED -> PAID.
func (r *SeatRepository) PayForSeat(ctx context.Context, seatID int64) (*domain.Seat, error) {
	query := `
	UPDATE seats
	SET status = $1
	WHERE id = $2 AND status = $3
	RETURNING id, concert_id, schedule_date, seat_number, price, status
	`

	var seat domain.Seat
	err := r.db.QueryRowContext(ctx, query, domain.SeatPaid, seatID, domain.SeatReserved).Scan(
		&seat.ID,
		&seat.ConcertID,
		&seat.ScheduleDate,
		&seat.SeatNumber,
		&seat.Price,
		&seat.Status,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrSeatUnavailable
		}
		return nil, err
	}

	return &seat, nil
}

// ReleaseSeat puts a seat back to AVAILABLE. Unconditional so it can serve as
// the compensating action on any failed hold.
func (r *SeatRepository) ReleaseSeat(ctx context.Context, seatID int64) error {
	query := `
	UPDATE seats
	SET status = $1
	WHERE id = $2
	`

	_, err := r.db.ExecContext(ctx, query, domain.SeatAvailable, seatID)
	return err
}

func (r *SeatRepository) AvailableSeats(ctx context.Context, concertID int64, scheduleDate time.Time) ([]domain.Seat, error) {
	query := `
	SELECT id, concert_id, schedule_date, seat_number, price, status
	FROM seats
	WHERE concert_id = $1 AND schedule_date = $2 AND status = $3
	ORDER BY seat_number
	`

	rows, err := r.db.QueryContext(ctx, query, concertID, scheduleDate, domain.SeatAvailable)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var seats []domain.Seat
	for rows.Next() {
		var seat domain.Seat
		if err := rows.Scan(
			&seat.ID,
			&seat.ConcertID,
			&seat.ScheduleDate,
			&seat.SeatNumber,
			&seat.Price,
			&seat.Status,
		); err != nil {
			return nil, err
		}

		seats = append(seats, seat)
	}

	return seats, rows.Err()
}

func (r *SeatRepository) CountAvailable(ctx context.Context, concertID int64, scheduleDate time.Time) (int64, error) {
	query := `
	SELECT COUNT(*)
	FROM seats
	WHERE concert_id = $1 AND schedule_date = $2 AND status = $3
	`

	var count int64
	err := r.db.QueryRowContext(ctx, query, concertID, scheduleDate, domain.SeatAvailable).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}
