package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"ssfi-membership-portal/internal/domain"
	"ssfi-membership-portal/internal/domain/model"
	"ssfi-membership-portal/internal/domain/ports/repository"
)

var _ repository.HierarchyRepository = (*hierarchyRepo)(nil)

type hierarchyRepo struct{ pool *pgxpool.Pool }

func NewHierarchyRepo(pool *pgxpool.Pool) *hierarchyRepo {
	return &hierarchyRepo{pool: pool}
}

func (r *hierarchyRepo) FindState(ctx context.Context, tx repository.Tx, code string) (*model.State, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT code, name, created_at FROM states WHERE code=$1;`, code)
	if err != nil {
		return nil, err
	}
	s := &model.State{}
	if err := row.Scan(&s.Code, &s.Name, &s.CreatedAt); err != nil {
		return nil, rowErr(err)
	}
	return s, nil
}

func (r *hierarchyRepo) FindDistrict(ctx context.Context, tx repository.Tx, stateCode, code string) (*model.District, error) {
	row, err := pickRow(ctx, r.pool, tx,
		`SELECT state_code, code, name, created_at FROM districts WHERE state_code=$1 AND code=$2;`, stateCode, code)
	if err != nil {
		return nil, err
	}
	d := &model.District{}
	if err := row.Scan(&d.StateCode, &d.Code, &d.Name, &d.CreatedAt); err != nil {
		return nil, rowErr(err)
	}
	return d, nil
}

func (r *hierarchyRepo) FindClub(ctx context.Context, tx repository.Tx, stateCode, districtCode, code string) (*model.Club, error) {
	row, err := pickRow(ctx, r.pool, tx,
		`SELECT state_code, district_code, code, name, created_at FROM clubs WHERE state_code=$1 AND district_code=$2 AND code=$3;`,
		stateCode, districtCode, code)
	if err != nil {
		return nil, err
	}
	c := &model.Club{}
	if err := row.Scan(&c.StateCode, &c.DistrictCode, &c.Code, &c.Name, &c.CreatedAt); err != nil {
		return nil, rowErr(err)
	}
	return c, nil
}

func (r *hierarchyRepo) SaveState(ctx context.Context, tx repository.Tx, s *model.State) error {
	const q = `INSERT INTO states (code, name, created_at) VALUES ($1,$2,$3)
ON CONFLICT (code) DO UPDATE SET name=$2;`
	_, err := execSQL(ctx, r.pool, tx, q, s.Code, s.Name, s.CreatedAt)
	if err != nil {
		return storeErr(err)
	}
	return nil
}

func (r *hierarchyRepo) SaveDistrict(ctx context.Context, tx repository.Tx, d *model.District) error {
	const q = `INSERT INTO districts (state_code, code, name, created_at) VALUES ($1,$2,$3,$4)
ON CONFLICT (state_code, code) DO UPDATE SET name=$3;`
	_, err := execSQL(ctx, r.pool, tx, q, d.StateCode, d.Code, d.Name, d.CreatedAt)
	if err != nil {
		return storeErr(err)
	}
	return nil
}

func (r *hierarchyRepo) SaveClub(ctx context.Context, tx repository.Tx, c *model.Club) error {
	const q = `INSERT INTO clubs (state_code, district_code, code, name, created_at) VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (state_code, district_code, code) DO UPDATE SET name=$4;`
	_, err := execSQL(ctx, r.pool, tx, q, c.StateCode, c.DistrictCode, c.Code, c.Name, c.CreatedAt)
	if err != nil {
		return storeErr(err)
	}
	return nil
}

func rowErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return domain.ErrReadDatabaseRow
}
