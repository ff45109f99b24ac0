package model

import (
	"strings"
	"time"
)

// State, District and Club are the federation hierarchy reference entities.
// Codes are short stable identifiers: states use postal-style letters ("TN"),
// districts and clubs use zero-padded numerics ("0001").
type State struct {
	Code      string
	Name      string
	CreatedAt time.Time
}

type District struct {
	StateCode string
	Code      string
	Name      string
	CreatedAt time.Time
}

type Club struct {
	StateCode    string
	DistrictCode string
	Code         string
	Name         string
	CreatedAt    time.Time
}

// HierarchyScope identifies a counting scope for sequence allocation.
// District and Club may be empty for higher-level scopes; a district without
// a state (or a club without a district) is not a valid scope.
type HierarchyScope struct {
	StateCode    string
	DistrictCode string
	ClubCode     string
}

// Valid reports whether the scope is structurally well formed.
func (s HierarchyScope) Valid() bool {
	if s.StateCode == "" {
		return false
	}
	if s.ClubCode != "" && s.DistrictCode == "" {
		return false
	}
	return true
}

// Key returns the canonical counter key for this scope, e.g. "TN",
// "TN/0001", "TN/0001/0001". Scopes with distinct keys count independently.
func (s HierarchyScope) Key() string {
	parts := []string{s.StateCode}
	if s.DistrictCode != "" {
		parts = append(parts, s.DistrictCode)
	}
	if s.ClubCode != "" {
		parts = append(parts, s.ClubCode)
	}
	return strings.Join(parts, "/")
}
