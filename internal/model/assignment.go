package model

import "time"

// Assignment records equipment issued to a person. It permanently debits the
// site balance; IsExpended only classifies the debit as attrition.
type Assignment struct {
	ID              int64     `json:"id"`
	SiteID          int64     `json:"site_id"`
	EquipmentTypeID int64     `json:"equipment_type_id"`
	AssignedTo      string    `json:"assigned_to"`
	Quantity        int64     `json:"quantity"`
	IsExpended      bool      `json:"is_expended"`
	CreatedBy       *int64    `json:"created_by,omitempty"`
	CreatedAt       time.Time `json:"created_at"`

	// Joined fields (not always populated).
	SiteName      string `json:"site_name,omitempty"`
	EquipmentName string `json:"equipment_name,omitempty"`
}
