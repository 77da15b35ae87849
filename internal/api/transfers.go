package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/stockledger/internal/apperr"
	"github.com/erazemk/stockledger/internal/model"
	"github.com/erazemk/stockledger/internal/store"
)

// TransfersHandler handles inter-site transfers.
type TransfersHandler struct {
	Store *store.Store
}

type createTransferRequest struct {
	FromSiteID      int64 `json:"from_site_id" validate:"required,gt=0"`
	ToSiteID        int64 `json:"to_site_id" validate:"required,gt=0"`
	EquipmentTypeID int64 `json:"equipment_type_id" validate:"required,gt=0"`
	Quantity        int64 `json:"quantity" validate:"required,gt=0"`
}

// Create handles POST /api/transfers.
func (h *TransfersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTransferRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	a := actor(r)
	if err := a.CheckSite(req.FromSiteID); err != nil {
		writeError(w, r, err)
		return
	}

	transfer, err := h.Store.CreateTransfer(r.Context(), store.NewTransfer{
		FromSiteID:      req.FromSiteID,
		ToSiteID:        req.ToSiteID,
		EquipmentTypeID: req.EquipmentTypeID,
		Quantity:        req.Quantity,
		CreatedBy:       &a.UserID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("transfer created",
		"user", a.Username,
		"transfer_id", transfer.ID,
		"from_site_id", req.FromSiteID,
		"to_site_id", req.ToSiteID,
		"equipment_type_id", req.EquipmentTypeID,
		"quantity", req.Quantity,
	)
	jsonResponse(w, http.StatusCreated, map[string]any{"success": true, "transfer_id": transfer.ID})
}

// List handles GET /api/transfers.
func (h *TransfersHandler) List(w http.ResponseWriter, r *http.Request) {
	var f store.TransferFilter

	site, err := queryID(r, "site_id")
	if err == nil {
		f.SiteID, err = actor(r).ScopeSite(site)
	}
	if err == nil {
		f.EquipmentTypeID, err = queryID(r, "equipment_type_id")
	}
	if err == nil {
		f.Range, err = queryRange(r)
	}
	if err == nil {
		f.Limit, err = queryLimit(r, 50, 500)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	transfers, err := h.Store.ListTransfers(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if transfers == nil {
		transfers = []model.Transfer{}
	}
	jsonResponse(w, http.StatusOK, transfers)
}

// Get handles GET /api/transfers/{id}.
func (h *TransfersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	transfer, err := h.Store.GetTransfer(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	a := actor(r)
	if a.CheckSite(transfer.FromSiteID) != nil && a.CheckSite(transfer.ToSiteID) != nil {
		writeError(w, r, apperr.Authorization("access limited to home site"))
		return
	}

	jsonResponse(w, http.StatusOK, transfer)
}
