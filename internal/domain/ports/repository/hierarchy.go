package repository

import (
	"context"

	"ssfi-membership-portal/internal/domain/model"
)

// HierarchyRepository reads the state/district/club reference data used to
// validate a registration's scope before any identifier is issued.
type HierarchyRepository interface {
	FindState(ctx context.Context, tx Tx, code string) (*model.State, error)
	FindDistrict(ctx context.Context, tx Tx, stateCode, code string) (*model.District, error)
	FindClub(ctx context.Context, tx Tx, stateCode, districtCode, code string) (*model.Club, error)

	SaveState(ctx context.Context, tx Tx, s *model.State) error
	SaveDistrict(ctx context.Context, tx Tx, d *model.District) error
	SaveClub(ctx context.Context, tx Tx, c *model.Club) error
}
