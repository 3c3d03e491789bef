package postgres

import (
	"context"
	"database/sql"

	"github.com/srgjo27/concert-reservation/internal/core/domain"
)

type BalanceRepository struct {
	db *sql.DB
}

func NewBalanceRepository(db *sql.DB) *BalanceRepository {
	return &BalanceRepository{db: db}
}

// ProcessPayment debits the user's balance in a single conditional UPDATE and
// returns the balance remaining after the debit.
func (r *BalanceRepository) ProcessPayment(ctx context.Context, userID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}

	query := `
	UPDATE users
	SET balance = balance - $1
	WHERE id = $2 AND balance >= $1
	RETURNING balance
	`

	var remaining int64
	err := r.db.QueryRowContext(ctx, query, amount, userID).Scan(&remaining)
	if err == nil {
		return remaining, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}

	// No row matched: tell a missing user apart from an underfunded one.
	var balance int64
	err = r.db.QueryRowContext(ctx, `SELECT balance FROM users WHERE id = $1`, userID).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, domain.ErrUserNotFound
	}
	if err != nil {
		return 0, err
	}

	return 0, domain.ErrInsufficientBalance
}
