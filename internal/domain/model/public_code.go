package model

import (
	"fmt"

	"ssfi-membership-portal/internal/domain"
)

// EntityKind selects the public-code layout for a registrant.
type EntityKind string

const (
	KindStateSecretary    EntityKind = "state_secretary"
	KindDistrictSecretary EntityKind = "district_secretary"
	KindClub              EntityKind = "club"
	KindSkater            EntityKind = "skater"
)

const codePrefix = "SSFI"

// ComposePublicCode formats the human-readable membership code for an entity.
// It is a pure function: the sequence number is the only input that varies
// between two otherwise identical registrations, so all concurrency control
// lives with the allocator that produced it.
//
// Layouts:
//
//	state secretary:                  SSFI-<STATE>-<SEQ4>
//	district secretary, club, skater: SSFI-<STATE>-<DISTRICT4>-<CLUB4>-<SEQ4>
func ComposePublicCode(kind EntityKind, scope HierarchyScope, seq uint32) (string, error) {
	if scope.StateCode == "" {
		return "", domain.ErrInvalidScope
	}
	switch kind {
	case KindStateSecretary:
		return fmt.Sprintf("%s-%s-%04d", codePrefix, scope.StateCode, seq), nil
	case KindDistrictSecretary, KindClub, KindSkater:
		if scope.DistrictCode == "" || scope.ClubCode == "" {
			return "", domain.ErrInvalidScope
		}
		return fmt.Sprintf("%s-%s-%s-%s-%04d", codePrefix, scope.StateCode, scope.DistrictCode, scope.ClubCode, seq), nil
	default:
		return "", domain.ErrInvalidScope
	}
}
