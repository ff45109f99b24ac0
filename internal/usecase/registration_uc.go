// File: internal/usecase/registration_uc.go
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
var _ RegistrationUseCase = (*registrationUC)(nil)

// RegisterInput is what the form/validation layer hands the core once field
// validation has passed.
type RegisterInput struct {
	Role         model.Role
	Name         string
	Contact      string
	StateCode    string
	DistrictCode string
	ClubCode     string
}

// RegisterResult is reported back to the intake layer.
type RegisterResult struct {
	RegistrantID string
	PublicCode   string
}

// RegistrationUseCase admits a new registrant: validates the hierarchy scope,
// issues the public code, persists the registrant unverified, and kicks off
// the OTP challenge.
type RegistrationUseCase interface {
	Register(ctx context.Context, in RegisterInput) (*RegisterResult, error)
}

type registrationUC struct {
	hierarchy   repository.HierarchyRepository
	registrants repository.RegistrantRepository
	allocator   SequenceAllocator
	verifier    VerificationUseCase
	log         *zerolog.Logger
}

func NewRegistrationUseCase(
	hierarchy repository.HierarchyRepository,
	registrants repository.RegistrantRepository,
	allocator SequenceAllocator,
	verifier VerificationUseCase,
	logger *zerolog.Logger,
) *registrationUC {
	return &registrationUC{
		hierarchy:   hierarchy,
		registrants: registrants,
		allocator:   allocator,
		verifier:    verifier,
		log:         logger,
	}
}

func (u *registrationUC) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	kind, err := entityKindFor(in.Role)
	if err != nil {
		return nil, err
	}
	scope := model.HierarchyScope{
		StateCode:    in.StateCode,
		DistrictCode: in.DistrictCode,
		ClubCode:     in.ClubCode,
	}
	if err := u.checkScope(ctx, kind, scope); err != nil {
		return nil, err
	}

	seq, err := u.allocator.Allocate(ctx, scope)
	if err != nil {
		return nil, err
	}
	code, err := model.ComposePublicCode(kind, scope, seq)
	if err != nil {
		return nil, err
	}

	reg, err := model.NewRegistrant("", in.Role, in.Name, in.Contact, code, model.Jurisdiction{
		StateCode:    in.StateCode,
		DistrictCode: in.DistrictCode,
		ClubCode:     in.ClubCode,
	})
	if err != nil {
		return nil, err
	}
	if err := u.registrants.Save(ctx, repository.NoTX, reg); err != nil {
		return nil, err
	}
	metrics.IncRegistration(string(in.Role))

	// The registrant exists; a failed first challenge is recovered through
	// the resend endpoint, not by unwinding the registration.
	if _, err := u.verifier.IssueCode(ctx, reg.ID, model.PurposeRegistration, time.Now()); err != nil {
		u.log.Warn().Err(err).
			Str("registrant_id", reg.ID).
			Msg("initial otp issuance failed")
	}

	return &RegisterResult{RegistrantID: reg.ID, PublicCode: reg.PublicCode}, nil
}

// checkScope confirms every hierarchy code the kind requires actually exists.
// Unknown codes fail with ErrInvalidScope; nothing is ever substituted.
func (u *registrationUC) checkScope(ctx context.Context, kind model.EntityKind, scope model.HierarchyScope) error {
	if scope.StateCode == "" {
		return domain.ErrInvalidScope
	}
	if _, err := u.hierarchy.FindState(ctx, repository.NoTX, scope.StateCode); err != nil {
		return scopeErr(err)
	}
	if kind == model.KindStateSecretary {
		return nil
	}
	if scope.DistrictCode == "" || scope.ClubCode == "" {
		return domain.ErrInvalidScope
	}
	if _, err := u.hierarchy.FindDistrict(ctx, repository.NoTX, scope.StateCode, scope.DistrictCode); err != nil {
		return scopeErr(err)
	}
	if _, err := u.hierarchy.FindClub(ctx, repository.NoTX, scope.StateCode, scope.DistrictCode, scope.ClubCode); err != nil {
		return scopeErr(err)
	}
	return nil
}

func scopeErr(err error) error {
	if err == domain.ErrNotFound {
		return domain.ErrInvalidScope
	}
	return err
}

func entityKindFor(role model.Role) (model.EntityKind, error) {
	switch role {
	case model.RoleStateAdmin:
		return model.KindStateSecretary, nil
	case model.RoleDistrictAdmin:
		return model.KindDistrictSecretary, nil
	case model.RoleClub, model.RoleClubAdmin:
		return model.KindClub, nil
	case model.RoleStudent:
		return model.KindSkater, nil
	default:
		return "", domain.ErrInvalidArgument
	}
}
