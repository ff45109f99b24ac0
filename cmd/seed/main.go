// File: cmd/seed/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"ssfi-membership-portal/internal/config"
	"ssfi-membership-portal/internal/domain"
	"ssfi-membership-portal/internal/domain/model"
	"ssfi-membership-portal/internal/domain/ports/repository"
	pg "ssfi-membership-portal/internal/infra/db/postgres"
)

// Seeds the hierarchy reference data a fresh install needs before any
// registration can resolve a scope.
func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	hierarchy := pg.NewHierarchyRepo(pool)

	// If states already exist, do nothing.
	if _, err := hierarchy.FindState(ctx, repository.NoTX, "TN"); err == nil {
		fmt.Println("hierarchy already seeded. No changes.")
		return
	} else if err != domain.ErrNotFound {
		log.Fatalf("check existing seed: %v", err)
	}

	now := time.Now()
	states := []model.State{
		{Code: "TN", Name: "Tamil Nadu", CreatedAt: now},
		{Code: "KA", Name: "Karnataka", CreatedAt: now},
		{Code: "MH", Name: "Maharashtra", CreatedAt: now},
	}
	districts := []model.District{
		{StateCode: "TN", Code: "0001", Name: "Chennai", CreatedAt: now},
		{StateCode: "TN", Code: "0002", Name: "Coimbatore", CreatedAt: now},
		{StateCode: "KA", Code: "0001", Name: "Bengaluru Urban", CreatedAt: now},
		{StateCode: "MH", Code: "0001", Name: "Mumbai", CreatedAt: now},
	}
	clubs := []model.Club{
		{StateCode: "TN", DistrictCode: "0001", Code: "0001", Name: "Chennai Skating Club", CreatedAt: now},
		{StateCode: "TN", DistrictCode: "0002", Code: "0001", Name: "Coimbatore Rollers", CreatedAt: now},
		{StateCode: "KA", DistrictCode: "0001", Code: "0001", Name: "Bengaluru Speed Club", CreatedAt: now},
	}

	for i := range states {
		if err := hierarchy.SaveState(ctx, repository.NoTX, &states[i]); err != nil {
			log.Fatalf("seed state %s: %v", states[i].Code, err)
		}
	}
	for i := range districts {
		if err := hierarchy.SaveDistrict(ctx, repository.NoTX, &districts[i]); err != nil {
			log.Fatalf("seed district %s/%s: %v", districts[i].StateCode, districts[i].Code, err)
		}
	}
	for i := range clubs {
		if err := hierarchy.SaveClub(ctx, repository.NoTX, &clubs[i]); err != nil {
			log.Fatalf("seed club %s/%s/%s: %v", clubs[i].StateCode, clubs[i].DistrictCode, clubs[i].Code, err)
		}
	}

	fmt.Printf("seeded %d states, %d districts, %d clubs\n", len(states), len(districts), len(clubs))
}
