package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/srgjo27/concert-reservation/internal/core/domain"
)

type ReservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// Create inserts the reservation and its outbox message in one transaction,
// so the reserved event is exactly as durable as the reservation itself.
func (r *ReservationRepository) Create(ctx context.Context, reservation *domain.Reservation, msg *domain.OutboxMessage) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	query := `
	INSERT INTO reservations (id, seat_id, user_id, price, status, created_at, expires_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = tx.ExecContext(ctx, query,
		reservation.ID,
		reservation.SeatID,
		reservation.UserID,
		reservation.Price,
		reservation.Status,
		reservation.CreatedAt,
		reservation.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reservation: %w", err)
	}

	if msg != nil {
		if err := insertOutboxTx(ctx, tx, msg); err != nil {
			return fmt.Errorf("failed to insert outbox message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, reservationID uuid.UUID) (*domain.Reservation, error) {
	query := `
	SELECT id, seat_id, user_id, price, status, created_at, expires_at, paid_amount, paid_at
	FROM reservations
	WHERE id = $1
	`

	var reservation domain.Reservation
	var paidAmount sql.NullInt64
	var paidAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, reservationID).Scan(
		&reservation.ID,
		&reservation.SeatID,
		&reservation.UserID,
		&reservation.Price,
		&reservation.Status,
		&reservation.CreatedAt,
		&reservation.ExpiresAt,
		&paidAmount,
		&paidAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrReservationNotFound
		}
		return nil, err
	}

	if paidAmount.Valid {
		reservation.PaidAmount = &paidAmount.Int64
	}
	if paidAt.Valid {
		reservation.PaidAt = &paidAt.Time
	}

	return &reservation, nil
}

// UpdatePaid records the PAID transition and the paid event atomically.
func (r *ReservationRepository) UpdatePaid(ctx context.Context, reservation *domain.Reservation, msg *domain.OutboxMessage) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	query := `
	UPDATE reservations
	SET status = $1, paid_amount = $2, paid_at = $3
	WHERE id = $4
	`

	_, err = tx.ExecContext(ctx, query,
		reservation.Status,
		reservation.PaidAmount,
		reservation.PaidAt,
		reservation.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update reservation: %w", err)
	}

	if msg != nil {
		if err := insertOutboxTx(ctx, tx, msg); err != nil {
			return fmt.Errorf("failed to insert outbox message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *ReservationRepository) FindExpired(ctx context.Context) ([]domain.Reservation, error) {
	query := `
	SELECT id, seat_id, user_id, price, status, created_at, expires_at
	FROM reservations
	WHERE status = $1 AND expires_at < NOW()
	LIMIT 100
	`

	rows, err := r.db.QueryContext(ctx, query, domain.ReservationReserved)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var reservations []domain.Reservation
	for rows.Next() {
		var reservation domain.Reservation
		if err := rows.Scan(
			&reservation.ID,
			&reservation.SeatID,
			&reservation.UserID,
			&reservation.Price,
			&reservation.Status,
			&reservation.CreatedAt,
			&reservation.ExpiresAt,
		); err != nil {
			return nil, err
		}

		reservations = append(reservations, reservation)
	}

	return reservations, rows.Err()
}

// Cancel moves a reservation to CANCELLED, but only from RESERVED. A zero row
// count means a concurrent pay settled it first and reports not-found.
func (r *ReservationRepository) Cancel(ctx context.Context, reservationID uuid.UUID) error {
	query := `
	UPDATE reservations
	SET status = $1
	WHERE id = $2 AND status = $3
	`

	result, err := r.db.ExecContext(ctx, query, domain.ReservationCancelled, reservationID, domain.ReservationReserved)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrReservationNotFound
	}

	return nil
}
