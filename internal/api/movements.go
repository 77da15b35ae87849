package api

import (
	"net/http"

	"github.com/erazemk/stockledger/internal/apperr"
	"github.com/erazemk/stockledger/internal/model"
	"github.com/erazemk/stockledger/internal/store"
)

// MovementsHandler lists the raw stock ledger.
type MovementsHandler struct {
	Store *store.Store
}

// List handles GET /api/movements.
func (h *MovementsHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := movementFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if raw := r.URL.Query().Get("movement_type"); raw != "" {
		mt, err := model.ParseMovementType(raw)
		if err != nil {
			writeError(w, r, apperr.Validation("invalid movement_type"))
			return
		}
		f.MovementType = mt
	}

	listMovements(w, r, h.Store, f)
}

// movementFilter reads the shared ledger query parameters and applies the
// caller's site scope.
func movementFilter(r *http.Request) (store.MovementFilter, error) {
	var f store.MovementFilter

	site, err := queryID(r, "site_id")
	if err != nil {
		return f, err
	}
	if f.SiteID, err = actor(r).ScopeSite(site); err != nil {
		return f, err
	}
	if f.EquipmentTypeID, err = queryID(r, "equipment_type_id"); err != nil {
		return f, err
	}
	if f.Range, err = queryRange(r); err != nil {
		return f, err
	}
	if f.Limit, err = queryLimit(r, 0, 1000); err != nil {
		return f, err
	}
	return f, nil
}

func listMovements(w http.ResponseWriter, r *http.Request, st *store.Store, f store.MovementFilter) {
	movements, err := st.ListMovements(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if movements == nil {
		movements = []model.Movement{}
	}
	jsonResponse(w, http.StatusOK, movements)
}
