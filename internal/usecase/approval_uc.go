// File: internal/usecase/approval_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"ssfi-membership-portal/internal/domain"
	"ssfi-membership-portal/internal/domain/model"
	"ssfi-membership-portal/internal/domain/ports/repository"
	"ssfi-membership-portal/internal/infra/metrics"
)

// Compile-time check
var _ ApprovalUseCase = (*approvalUC)(nil)

// Approver identifies who is acting on an application: the role they hold
// and the slice of the hierarchy they administer.
type Approver struct {
	Role         model.Role
	Jurisdiction model.Jurisdiction
}

// ApprovalUseCase decides verified registrants' applications.
type ApprovalUseCase interface {
	// Decide moves a verified, pending registrant to approved or rejected.
	// Approval is the only path to transacting eligibility; rejection is
	// terminal.
	Decide(ctx context.Context, registrantID string, approver Approver, decision model.ApprovalState, reason *string) (*model.Registrant, error)

	// ListPending returns the approver's queue: verified, undecided
	// registrants inside their jurisdiction.
	ListPending(ctx context.Context, approver Approver, limit int) ([]*model.Registrant, error)
}

type approvalUC struct {
	registrants repository.RegistrantRepository
	log         *zerolog.Logger
}

func NewApprovalUseCase(registrants repository.RegistrantRepository, logger *zerolog.Logger) *approvalUC {
	return &approvalUC{registrants: registrants, log: logger}
}

func (u *approvalUC) Decide(ctx context.Context, registrantID string, approver Approver, decision model.ApprovalState, reason *string) (*model.Registrant, error) {
	if decision != model.ApprovalApproved && decision != model.ApprovalRejected {
		return nil, domain.ErrInvalidArgument
	}

	reg, err := u.registrants.FindByID(ctx, repository.NoTX, registrantID)
	if err != nil {
		return nil, err
	}
	if reg.ApprovalState != model.ApprovalPending {
		return nil, domain.ErrAlreadyDecided
	}
	if reg.VerificationState != model.VerificationVerified {
		return nil, domain.ErrNotEligible
	}
	if !approver.Role.ApproverRole() || !approver.Jurisdiction.Contains(reg.Jurisdiction) {
		return nil, domain.ErrOutOfJurisdiction
	}

	now := time.Now()
	// The conditional update is the serialization point: of two concurrent
	// decisions, exactly one matches the pending row.
	ok, err := u.registrants.Decide(ctx, repository.NoTX, registrantID, decision, reason, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrAlreadyDecided
	}
	metrics.IncApproval(string(decision))
	u.log.Info().
		Str("registrant_id", registrantID).
		Str("decision", string(decision)).
		Str("approver_role", string(approver.Role)).
		Msg("application decided")

	reg.ApprovalState = decision
	reg.RejectReason = reason
	reg.UpdatedAt = now
	return reg, nil
}

func (u *approvalUC) ListPending(ctx context.Context, approver Approver, limit int) ([]*model.Registrant, error) {
	if !approver.Role.ApproverRole() {
		return nil, domain.ErrOutOfJurisdiction
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return u.registrants.ListPending(ctx, repository.NoTX, approver.Jurisdiction, limit)
}
