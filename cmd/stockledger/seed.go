package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/erazemk/stockledger/internal/auth"
	"github.com/erazemk/stockledger/internal/model"
	"github.com/erazemk/stockledger/internal/store"
)

type seedSite struct {
	name, location string
}

type seedEquipment struct {
	name, category string
}

type seedUser struct {
	username string
	role     string
	site     string
}

var demoSites = []seedSite{
	{"Base Alpha", "Northern Region"},
	{"Base Beta", "Southern Region"},
	{"Base Gamma", "Eastern Region"},
	{"Base Delta", "Western Region"},
}

var demoEquipment = []seedEquipment{
	{"M4 Carbine", model.CategoryWeapon},
	{"M9 Pistol", model.CategoryWeapon},
	{"Humvee", model.CategoryVehicle},
	{"Truck", model.CategoryVehicle},
	{"5.56mm Ammunition", model.CategoryAmmunition},
	{"9mm Ammunition", model.CategoryAmmunition},
	{"Grenade", model.CategoryAmmunition},
}

var demoUsers = []seedUser{
	{"commander1", model.RoleBaseCommander, "Base Alpha"},
	{"logistics1", model.RoleLogisticsOfficer, "Base Alpha"},
	{"commander2", model.RoleBaseCommander, "Base Beta"},
	{"logistics2", model.RoleLogisticsOfficer, "Base Beta"},
}

// credential is a generated login printed once after creation.
type credential struct {
	Username string
	Password string
}

// seedDemoData creates the demo sites, equipment types and staff accounts.
// Existing rows are left untouched, so running it twice is harmless.
func seedDemoData(ctx context.Context, st *store.Store) ([]credential, error) {
	siteIDs := map[string]int64{}
	for _, s := range demoSites {
		site, err := st.FindSiteByName(ctx, s.name)
		if err != nil {
			return nil, err
		}
		if site == nil {
			if site, err = st.CreateSite(ctx, s.name, s.location); err != nil {
				return nil, fmt.Errorf("creating site %s: %w", s.name, err)
			}
		}
		siteIDs[s.name] = site.ID
	}

	for _, e := range demoEquipment {
		et, err := st.FindEquipmentTypeByName(ctx, e.name)
		if err != nil {
			return nil, err
		}
		if et == nil {
			if _, err := st.CreateEquipmentType(ctx, e.name, e.category); err != nil {
				return nil, fmt.Errorf("creating equipment type %s: %w", e.name, err)
			}
		}
	}

	var created []credential
	for _, u := range demoUsers {
		existing, err := st.GetUserByUsername(ctx, u.username)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			continue
		}

		password, err := generatePassword(16)
		if err != nil {
			return nil, fmt.Errorf("generating password: %w", err)
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		site := siteIDs[u.site]
		if _, err := st.CreateUser(ctx, u.username, hash, u.role, &site); err != nil {
			return nil, fmt.Errorf("creating user %s: %w", u.username, err)
		}
		created = append(created, credential{Username: u.username, Password: password})
	}

	return created, nil
}

// bootstrapAdmin creates the first administrator when the database has no
// active users. It returns nil if users already exist.
func bootstrapAdmin(ctx context.Context, st *store.Store, username string) (*credential, error) {
	users, err := st.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if len(users) > 0 {
		return nil, nil
	}

	password, err := generatePassword(16)
	if err != nil {
		return nil, fmt.Errorf("generating password: %w", err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	if _, err := st.CreateUser(ctx, username, hash, model.RoleAdmin, nil); err != nil {
		return nil, fmt.Errorf("creating admin user: %w", err)
	}
	return &credential{Username: username, Password: password}, nil
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
