package model

import (
	"fmt"
	"time"
)

// MovementType classifies a ledger row. The direction of a movement is
// derived from its type only; quantities are always positive.
type MovementType string

// Movement types.
const (
	MovementPurchase    MovementType = "PURCHASE"
	MovementTransferIn  MovementType = "TRANSFER_IN"
	MovementTransferOut MovementType = "TRANSFER_OUT"
)

// Valid reports whether t is a known movement type.
func (t MovementType) Valid() bool {
	switch t {
	case MovementPurchase, MovementTransferIn, MovementTransferOut:
		return true
	}
	return false
}

// Sign returns +1 for movements that add stock and -1 for movements that remove it.
func (t MovementType) Sign() int64 {
	if t == MovementTransferOut {
		return -1
	}
	return 1
}

// ParseMovementType parses a movement type as sent by clients.
func ParseMovementType(s string) (MovementType, error) {
	t := MovementType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown movement type %q", s)
	}
	return t, nil
}

// Movement is an immutable stock ledger entry at one site.
type Movement struct {
	ID              int64        `json:"id"`
	SiteID          int64        `json:"site_id"`
	EquipmentTypeID int64        `json:"equipment_type_id"`
	MovementType    MovementType `json:"movement_type"`
	Quantity        int64        `json:"quantity"`
	RefTransferID   *int64       `json:"ref_transfer_id,omitempty"`
	CreatedBy       *int64       `json:"created_by,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`

	// Joined fields (not always populated).
	SiteName      string `json:"site_name,omitempty"`
	EquipmentName string `json:"equipment_name,omitempty"`
}
