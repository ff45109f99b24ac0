package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"ssfi-membership-portal/internal/domain"
	"ssfi-membership-portal/internal/domain/model"
	"ssfi-membership-portal/internal/domain/ports/repository"
)

var _ repository.RegistrantRepository = (*registrantRepo)(nil)

type registrantRepo struct{ pool *pgxpool.Pool }

func NewRegistrantRepo(pool *pgxpool.Pool) *registrantRepo {
	return &registrantRepo{pool: pool}
}

const registrantColumns = `id, public_code, role, name, contact, verification_state, approval_state,
  state_code, district_code, club_code, reject_reason, created_at, updated_at, deactivated_at`

func (r *registrantRepo) Save(ctx context.Context, tx repository.Tx, reg *model.Registrant) error {
	const q = `
INSERT INTO registrants (
  id, public_code, role, name, contact, verification_state, approval_state,
  state_code, district_code, club_code, reject_reason, created_at, updated_at, deactivated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14
) ON CONFLICT (id) DO UPDATE SET
  role=$3, name=$4, contact=$5, verification_state=$6, approval_state=$7,
  state_code=$8, district_code=$9, club_code=$10, reject_reason=$11, updated_at=$13, deactivated_at=$14;`

	_, err := execSQL(ctx, r.pool, tx, q,
		reg.ID, reg.PublicCode, reg.Role, reg.Name, reg.Contact,
		reg.VerificationState, reg.ApprovalState,
		reg.Jurisdiction.StateCode, reg.Jurisdiction.DistrictCode, reg.Jurisdiction.ClubCode,
		reg.RejectReason, reg.CreatedAt, reg.UpdatedAt, reg.DeactivatedAt)
	if err != nil {
		return storeErr(err)
	}
	return nil
}

func (r *registrantRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Registrant, error) {
	q := `SELECT ` + registrantColumns + ` FROM registrants WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	return r.scanOne(ctx, tx, q, id)
}

func (r *registrantRepo) FindByPublicCode(ctx context.Context, tx repository.Tx, code string) (*model.Registrant, error) {
	q := `SELECT ` + registrantColumns + ` FROM registrants WHERE public_code=$1;`
	return r.scanOne(ctx, tx, q, code)
}

func (r *registrantRepo) scanOne(ctx context.Context, tx repository.Tx, q string, arg interface{}) (*model.Registrant, error) {
	row, err := pickRow(ctx, r.pool, tx, q, arg)
	if err != nil {
		return nil, err
	}
	reg := &model.Registrant{}
	err = row.Scan(&reg.ID, &reg.PublicCode, &reg.Role, &reg.Name, &reg.Contact,
		&reg.VerificationState, &reg.ApprovalState,
		&reg.Jurisdiction.StateCode, &reg.Jurisdiction.DistrictCode, &reg.Jurisdiction.ClubCode,
		&reg.RejectReason, &reg.CreatedAt, &reg.UpdatedAt, &reg.DeactivatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return reg, nil
}

// MarkVerified is a conditional update: the WHERE clause names the state the
// transition leaves, so of two racing verifications only one row-matches.
func (r *registrantRepo) MarkVerified(ctx context.Context, tx repository.Tx, id string, at time.Time) (bool, error) {
	const q = `
UPDATE registrants SET verification_state='verified', updated_at=$2
WHERE id=$1 AND verification_state='unverified';`
	tag, err := execSQL(ctx, r.pool, tx, q, id, at)
	if err != nil {
		return false, storeErr(err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *registrantRepo) Decide(ctx context.Context, tx repository.Tx, id string, decision model.ApprovalState, reason *string, at time.Time) (bool, error) {
	const q = `
UPDATE registrants SET approval_state=$2, reject_reason=$3, updated_at=$4
WHERE id=$1 AND approval_state='pending' AND verification_state='verified';`
	tag, err := execSQL(ctx, r.pool, tx, q, id, decision, reason, at)
	if err != nil {
		return false, storeErr(err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *registrantRepo) Deactivate(ctx context.Context, tx repository.Tx, id string, at time.Time) error {
	const q = `UPDATE registrants SET deactivated_at=$2, updated_at=$2 WHERE id=$1 AND deactivated_at IS NULL;`
	_, err := execSQL(ctx, r.pool, tx, q, id, at)
	if err != nil {
		return storeErr(err)
	}
	return nil
}

// ListPending matches Jurisdiction.Contains: an empty approver field imposes
// no constraint on that level.
func (r *registrantRepo) ListPending(ctx context.Context, tx repository.Tx, within model.Jurisdiction, limit int) ([]*model.Registrant, error) {
	const q = `
SELECT ` + registrantColumns + `
FROM registrants
WHERE verification_state='verified' AND approval_state='pending' AND deactivated_at IS NULL
  AND ($1 = '' OR state_code = $1)
  AND ($2 = '' OR district_code = $2)
  AND ($3 = '' OR club_code = $3)
ORDER BY created_at
LIMIT $4;`

	rows, err := pickRows(ctx, r.pool, tx, q, within.StateCode, within.DistrictCode, within.ClubCode, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Registrant
	for rows.Next() {
		reg := &model.Registrant{}
		err := rows.Scan(&reg.ID, &reg.PublicCode, &reg.Role, &reg.Name, &reg.Contact,
			&reg.VerificationState, &reg.ApprovalState,
			&reg.Jurisdiction.StateCode, &reg.Jurisdiction.DistrictCode, &reg.Jurisdiction.ClubCode,
			&reg.RejectReason, &reg.CreatedAt, &reg.UpdatedAt, &reg.DeactivatedAt)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}
