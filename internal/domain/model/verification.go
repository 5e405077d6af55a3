package model

import (
	"time"

	"marketplace-entitlements/internal/domain"
)

// VerificationStatus is the state of one age/ID verification attempt.
type VerificationStatus string

const (
	VerificationStatusNone     VerificationStatus = "none"
	VerificationStatusPending  VerificationStatus = "pending"
	VerificationStatusApproved VerificationStatus = "approved"
	VerificationStatusRejected VerificationStatus = "rejected"
)

// VerificationRecord is one attempt. A user may have several; the most recent
// one wins for gating decisions.
type VerificationRecord struct {
	ID           string
	UserID       string
	Status       VerificationStatus
	CreatedAt    time.Time
	ReviewedAt   *time.Time
	ReviewerNote string
}

func (r *VerificationRecord) IsZero() bool { return r == nil || r.ID == "" }

// NewVerificationRecord opens a pending attempt for a user.
func NewVerificationRecord(id, userID string) (*VerificationRecord, error) {
	if id == "" || userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &VerificationRecord{
		ID:        id,
		UserID:    userID,
		Status:    VerificationStatusPending,
		CreatedAt: time.Now(),
	}, nil
}

// Review closes a pending attempt. Only pending records can be reviewed.
func (r *VerificationRecord) Review(approve bool, note string) error {
	if r.Status != VerificationStatusPending {
		return domain.ErrInvalidArgument
	}
	now := time.Now()
	r.ReviewedAt = &now
	r.ReviewerNote = note
	if approve {
		r.Status = VerificationStatusApproved
	} else {
		r.Status = VerificationStatusRejected
	}
	return nil
}

// LatestVerificationStatus resolves a record set to the status that drives the
// market gate: most-recent-wins, none when the set is empty.
func LatestVerificationStatus(records []*VerificationRecord) VerificationStatus {
	var latest *VerificationRecord
	for _, r := range records {
		if r.IsZero() {
			continue
		}
		if latest == nil || r.CreatedAt.After(latest.CreatedAt) {
			latest = r
		}
	}
	if latest == nil {
		return VerificationStatusNone
	}
	return latest.Status
}
