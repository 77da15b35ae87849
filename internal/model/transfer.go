package model

import "time"

// Transfer records the intent to move stock between two sites. Every transfer
// owns exactly two movements: TRANSFER_OUT at the source and TRANSFER_IN at
// the destination.
type Transfer struct {
	ID              int64     `json:"id"`
	FromSiteID      int64     `json:"from_site_id"`
	ToSiteID        int64     `json:"to_site_id"`
	EquipmentTypeID int64     `json:"equipment_type_id"`
	Quantity        int64     `json:"quantity"`
	CreatedBy       *int64    `json:"created_by,omitempty"`
	CreatedAt       time.Time `json:"created_at"`

	// Joined fields (not always populated).
	FromSiteName  string     `json:"from_site_name,omitempty"`
	ToSiteName    string     `json:"to_site_name,omitempty"`
	EquipmentName string     `json:"equipment_name,omitempty"`
	Movements     []Movement `json:"movements,omitempty"`
}
