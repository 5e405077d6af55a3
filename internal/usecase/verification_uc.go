package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"marketplace-entitlements/internal/domain"
	"marketplace-entitlements/internal/domain/model"
	"marketplace-entitlements/internal/domain/ports/repository"
	"marketplace-entitlements/internal/infra/logging"
	"marketplace-entitlements/internal/infra/metrics"
)

// VerificationUseCase handles age/ID verification attempts and their review.
type VerificationUseCase struct {
	verifications repository.VerificationRepository
	tm            repository.TransactionManager
	log           *zerolog.Logger
}

func NewVerificationUseCase(verifications repository.VerificationRepository, tm repository.TransactionManager, logger *zerolog.Logger) *VerificationUseCase {
	l := logger.With().Str("component", "VerificationUC").Logger()
	return &VerificationUseCase{verifications: verifications, tm: tm, log: &l}
}

// Submit opens a pending attempt. Submitting while an attempt is pending or
// after approval returns the existing record instead of opening another.
func (uc *VerificationUseCase) Submit(ctx context.Context, userID string) (*model.VerificationRecord, error) {
	defer logging.TraceDuration(uc.log, "VerificationUC.Submit")()
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}

	// Find-then-insert runs in one transaction so two concurrent submissions
	// cannot both open a pending attempt.
	var rec *model.VerificationRecord
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err := uc.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		latest, err := uc.verifications.FindLatestByUser(ctx, tx, userID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("verification submit lookup: %w", err)
		}
		if latest != nil {
			switch latest.Status {
			case model.VerificationStatusPending, model.VerificationStatusApproved:
				rec = latest
				return nil
			}
		}

		fresh, err := model.NewVerificationRecord(uuid.NewString(), userID)
		if err != nil {
			return err
		}
		if err := uc.verifications.Save(ctx, tx, fresh); err != nil {
			return fmt.Errorf("verification submit save: %w", err)
		}
		rec = fresh
		uc.log.Info().Str("verification_id", fresh.ID).Msg("verification attempt opened")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Review approves or rejects a pending attempt.
func (uc *VerificationUseCase) Review(ctx context.Context, id string, approve bool, note string) (*model.VerificationRecord, error) {
	defer logging.TraceDuration(uc.log, "VerificationUC.Review")()
	// Read-modify-save under one transaction so two moderators cannot both
	// decide the same attempt.
	var rec *model.VerificationRecord
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err := uc.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		found, err := uc.verifications.FindByID(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("verification review lookup: %w", err)
		}
		if err := found.Review(approve, note); err != nil {
			return err
		}
		if err := uc.verifications.Save(ctx, tx, found); err != nil {
			return fmt.Errorf("verification review save: %w", err)
		}
		rec = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	decision := "rejected"
	if approve {
		decision = "approved"
	}
	metrics.IncVerificationReview(decision)
	uc.log.Info().Str("verification_id", rec.ID).Str("decision", decision).Msg("verification reviewed")
	return rec, nil
}

// ListPending returns open attempts for the moderation queue.
func (uc *VerificationUseCase) ListPending(ctx context.Context, limit int) ([]*model.VerificationRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return uc.verifications.ListByStatus(ctx, nil, model.VerificationStatusPending, limit)
}

// StatusForUser resolves the gating status (most-recent-wins, none if absent).
func (uc *VerificationUseCase) StatusForUser(ctx context.Context, userID string) (model.VerificationStatus, error) {
	rec, err := uc.verifications.FindLatestByUser(ctx, nil, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return model.VerificationStatusNone, nil
	}
	if err != nil {
		return model.VerificationStatusNone, err
	}
	return rec.Status, nil
}
