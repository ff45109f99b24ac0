package model

import (
	"time"

	"ssfi-membership-portal/internal/domain"

	"github.com/google/uuid"
)

// Role is the position a registrant holds (or applies for) in the federation.
type Role string

const (
	RoleGlobalAdmin   Role = "GLOBAL_ADMIN"
	RoleStateAdmin    Role = "STATE_ADMIN"
	RoleDistrictAdmin Role = "DISTRICT_ADMIN"
	RoleClubAdmin     Role = "CLUB_ADMIN"
	RoleClub          Role = "CLUB"
	RoleStudent       Role = "STUDENT"
)

// VerificationState tracks the OTP challenge lifecycle.
type VerificationState string

const (
	VerificationUnverified VerificationState = "unverified"
	VerificationVerified   VerificationState = "verified"
)

// ApprovalState tracks the role-scoped approval lifecycle. APPROVED and
// REJECTED are terminal; a rejected registrant must re-register under a fresh
// public code rather than being reopened.
type ApprovalState string

const (
	ApprovalPending  ApprovalState = "pending"
	ApprovalApproved ApprovalState = "approved"
	ApprovalRejected ApprovalState = "rejected"
)

// Jurisdiction places a registrant (or an approver) in the hierarchy.
type Jurisdiction struct {
	StateCode    string
	DistrictCode string
	ClubCode     string
}

// Contains reports whether an approver holding jurisdiction j may act on a
// registrant placed at target. An empty field in j means "all of them":
// the global admin has an entirely empty jurisdiction, a state admin fixes
// only the state, a district admin fixes state and district.
func (j Jurisdiction) Contains(target Jurisdiction) bool {
	if j.StateCode != "" && j.StateCode != target.StateCode {
		return false
	}
	if j.DistrictCode != "" && j.DistrictCode != target.DistrictCode {
		return false
	}
	if j.ClubCode != "" && j.ClubCode != target.ClubCode {
		return false
	}
	return true
}

// Registrant is any entity (user or club) moving through OTP verification and
// approval. It is never deleted, only soft-deactivated.
type Registrant struct {
	ID                string
	PublicCode        string // immutable once issued
	Role              Role
	Name              string
	Contact           string // phone or email; OTP delivery destination
	VerificationState VerificationState
	ApprovalState     ApprovalState
	Jurisdiction      Jurisdiction
	RejectReason      *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeactivatedAt     *time.Time
}

func NewRegistrant(id string, role Role, name, contact, publicCode string, jur Jurisdiction) (*Registrant, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if name == "" || contact == "" || publicCode == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Registrant{
		ID:                id,
		PublicCode:        publicCode,
		Role:              role,
		Name:              name,
		Contact:           contact,
		VerificationState: VerificationUnverified,
		ApprovalState:     ApprovalPending,
		Jurisdiction:      jur,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// Active reports whether the registrant may authenticate and transact:
// verified, approved and not deactivated.
func (r *Registrant) Active() bool {
	return r != nil &&
		r.VerificationState == VerificationVerified &&
		r.ApprovalState == ApprovalApproved &&
		r.DeactivatedAt == nil
}

// ApproverRole reports whether the role is allowed to decide applications at
// all. Club admins and students administer nothing.
func (r Role) ApproverRole() bool {
	switch r {
	case RoleGlobalAdmin, RoleStateAdmin, RoleDistrictAdmin:
		return true
	}
	return false
}
