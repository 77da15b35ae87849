package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/stockledger/internal/model"
	"github.com/erazemk/stockledger/internal/store"
)

// PurchasesHandler records and lists stock purchases.
type PurchasesHandler struct {
	Store *store.Store
}

type createPurchaseRequest struct {
	SiteID          int64 `json:"site_id" validate:"required,gt=0"`
	EquipmentTypeID int64 `json:"equipment_type_id" validate:"required,gt=0"`
	Quantity        int64 `json:"quantity" validate:"required,gt=0"`
}

// Create handles POST /api/purchases.
func (h *PurchasesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPurchaseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	a := actor(r)
	if err := a.CheckSite(req.SiteID); err != nil {
		writeError(w, r, err)
		return
	}

	id, err := h.Store.AppendMovement(r.Context(), store.NewMovement{
		SiteID:          req.SiteID,
		EquipmentTypeID: req.EquipmentTypeID,
		MovementType:    model.MovementPurchase,
		Quantity:        req.Quantity,
		CreatedBy:       &a.UserID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("purchase recorded", "user", a.Username, "movement_id", id,
		"site_id", req.SiteID, "equipment_type_id", req.EquipmentTypeID, "quantity", req.Quantity)
	jsonResponse(w, http.StatusCreated, map[string]any{"success": true, "movement_id": id})
}

// List handles GET /api/purchases.
func (h *PurchasesHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := movementFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	f.MovementType = model.MovementPurchase

	listMovements(w, r, h.Store, f)
}
