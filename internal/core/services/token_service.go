package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/srgjo27/concert-reservation/internal/core/domain"
	"github.com/srgjo27/concert-reservation/internal/core/ports"
)

type IssueTokenResponse struct {
	TokenID  int64 `json:"token_id"`
	Position int64 `json:"position"`
}

type TokenStatusResponse struct {
	TokenID   int64  `json:"token_id"`
	Status    string `json:"status"`
	Position  *int64 `json:"position,omitempty"`
	ExpiresAt *int64 `json:"expires_at,omitempty"`
}

type TokenService struct {
	tokens   ports.TokenRepository
	logger   *log.Logger
	admitTTL time.Duration
}

func NewTokenService(tokens ports.TokenRepository, logger *log.Logger, admitTTL time.Duration) *TokenService {
	return &TokenService{
		tokens:   tokens,
		logger:   logger,
		admitTTL: admitTTL,
	}
}

// Issue creates a new PENDING token for the user and reports its position in
// the waiting order.
func (s *TokenService) Issue(ctx context.Context, userID int64) (*IssueTokenResponse, error) {
	tokenID, err := s.tokens.NextTokenID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token id: %w", err)
	}

	if err := s.tokens.Enqueue(ctx, tokenID, userID); err != nil {
		return nil, fmt.Errorf("failed to enqueue token %d: %w", tokenID, err)
	}

	position, ok, err := s.tokens.QueuePosition(ctx, tokenID)
	if err != nil {
		return nil, fmt.Errorf("failed to read queue position: %w", err)
	}
	if !ok {
		position = 0
	}

	return &IssueTokenResponse{TokenID: tokenID, Position: position}, nil
}

// Status reports where a token stands: its active expiry when admitted, its
// waiting position when pending, or EXPIRED when only stale metadata remains.
func (s *TokenService) Status(ctx context.Context, tokenID int64) (*TokenStatusResponse, error) {
	expiry, active, err := s.tokens.Expiration(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if active {
		return &TokenStatusResponse{
			TokenID:   tokenID,
			Status:    string(domain.TokenActive),
			ExpiresAt: &expiry,
		}, nil
	}

	position, waiting, err := s.tokens.QueuePosition(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if waiting {
		return &TokenStatusResponse{
			TokenID:  tokenID,
			Status:   string(domain.TokenPending),
			Position: &position,
		}, nil
	}

	if _, err := s.tokens.Metadata(ctx, tokenID); err != nil {
		return nil, err
	}

	return &TokenStatusResponse{TokenID: tokenID, Status: string(domain.TokenExpired)}, nil
}

// Activate admits a pending token with the configured session TTL and returns
// the expiry epoch granted. The promotion policy deciding which tokens to
// admit lives with the caller.
func (s *TokenService) Activate(ctx context.Context, tokenID int64) (int64, error) {
	expiry, err := s.tokens.GrantAdmission(ctx, tokenID, s.admitTTL)
	if err != nil {
		return 0, fmt.Errorf("failed to admit token %d: %w", tokenID, err)
	}
	return expiry, nil
}

// Extend slides an active token's expiry forward. Returns false when the token
// has no active entry to extend.
func (s *TokenService) Extend(ctx context.Context, tokenID int64) (bool, error) {
	return s.tokens.ExtendTTL(ctx, tokenID)
}

// Validate gates protected operations on the active-set score.
func (s *TokenService) Validate(ctx context.Context, tokenID int64) error {
	valid, err := s.tokens.IsValid(ctx, tokenID)
	if err != nil {
		return err
	}
	if !valid {
		return domain.ErrTokenNotActive
	}
	return nil
}

// Consume retires a token, whether its purchase completed or the holder walked
// away, reclaiming the slot immediately instead of waiting for the sweep.
func (s *TokenService) Consume(ctx context.Context, tokenID int64) error {
	if err := s.tokens.Withdraw(ctx, tokenID); err != nil {
		return err
	}
	return s.tokens.Remove(ctx, tokenID)
}

func (s *TokenService) RunSweepWorker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Printf("Token sweep worker started: pruning expired admissions every %s...", interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Println("Token sweep worker stopped.")
			return
		case <-ticker.C:
			removed, err := s.tokens.SweepExpired(ctx)
			if err != nil {
				s.logger.Printf("Error sweeping expired tokens: %v", err)
				continue
			}
			if removed > 0 {
				s.logger.Printf("Swept %d expired tokens from the active set.", removed)
			}
		}
	}
}
