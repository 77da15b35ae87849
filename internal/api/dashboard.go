package api

import (
	"net/http"

	"github.com/erazemk/stockledger/internal/store"
)

// DashboardHandler serves balance metrics.
type DashboardHandler struct {
	Store *store.Store
}

// Metrics handles GET /api/dashboard/metrics.
func (h *DashboardHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	var f store.BalanceFilter

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
	if err != nil {
		writeError(w, r, err)
		return
	}

	balance, err := h.Store.ComputeBalance(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, balance)
}
