package model

import "time"

// EquipmentType is a kind of stocked equipment (quantity-based, not individual tracking).
type EquipmentType struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	HasImage  bool      `json:"has_image"`
	CreatedAt time.Time `json:"created_at"`
}

// Equipment categories used by the seed data. Other categories are accepted.
const (
	CategoryWeapon     = "WEAPON"
	CategoryVehicle    = "VEHICLE"
	CategoryAmmunition = "AMMUNITION"
)
