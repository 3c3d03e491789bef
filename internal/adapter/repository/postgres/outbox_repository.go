package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/srgjo27/concert-reservation/internal/core/domain"
)

type OutboxRepository struct {
	db *sql.DB
}

func NewOutboxRepository(db *sql.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// insertOutboxTx appends an event record inside the caller's transaction. This
// is the only write path into the outbox table, which keeps every event
// atomic with the state change that produced it.
func insertOutboxTx(ctx context.Context, tx *sql.Tx, msg *domain.OutboxMessage) error {
	query := `
	INSERT INTO outbox (id, topic, payload, created_at)
	VALUES ($1, $2, $3, $4)
	`

	_, err := tx.ExecContext(ctx, query, msg.ID, msg.Topic, msg.Payload, msg.CreatedAt)
	return err
}

func (r *OutboxRepository) FetchUnpublished(ctx context.Context, limit int) ([]domain.OutboxMessage, error) {
	query := `
	SELECT id, topic, payload, created_at
	FROM outbox
	WHERE published_at IS NULL
	ORDER BY created_at
	LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var messages []domain.OutboxMessage
	for rows.Next() {
		var msg domain.OutboxMessage
		if err := rows.Scan(&msg.ID, &msg.Topic, &msg.Payload, &msg.CreatedAt); err != nil {
			return nil, err
		}

		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, messageID uuid.UUID) error {
	query := `
	UPDATE outbox
	SET published_at = NOW()
	WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, messageID)
	return err
}
