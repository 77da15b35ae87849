package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/stockledger/internal/model"
	"github.com/erazemk/stockledger/internal/store"
)

// AssignmentsHandler records equipment issued to personnel.
type AssignmentsHandler struct {
	Store *store.Store
}

type createAssignmentRequest struct {
	SiteID          int64  `json:"site_id" validate:"required,gt=0"`
	EquipmentTypeID int64  `json:"equipment_type_id" validate:"required,gt=0"`
	AssignedTo      string `json:"assigned_to" validate:"required,max=200"`
	Quantity        int64  `json:"quantity" validate:"required,gt=0"`
	IsExpended      bool   `json:"is_expended"`
}

// Create handles POST /api/assignments.
func (h *AssignmentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAssignmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	a := actor(r)
	if err := a.CheckSite(req.SiteID); err != nil {
		writeError(w, r, err)
		return
	}

	id, err := h.Store.CreateAssignment(r.Context(), store.NewAssignment{
		SiteID:          req.SiteID,
		EquipmentTypeID: req.EquipmentTypeID,
		AssignedTo:      req.AssignedTo,
		Quantity:        req.Quantity,
		IsExpended:      req.IsExpended,
		CreatedBy:       &a.UserID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("assignment recorded", "user", a.Username, "assignment_id", id,
		"site_id", req.SiteID, "assigned_to", req.AssignedTo, "quantity", req.Quantity, "expended", req.IsExpended)
	jsonResponse(w, http.StatusCreated, map[string]any{"success": true, "assignment_id": id})
}

// List handles GET /api/assignments.
func (h *AssignmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	var f store.AssignmentFilter

	site, err := queryID(r, "site_id")
	if err == nil {
		f.SiteID, err = actor(r).ScopeSite(site)
	}
	if err == nil {
		f.EquipmentTypeID, err = queryID(r, "equipment_type_id")
	}
	if err == nil {
		f.Expended, err = queryBool(r, "is_expended")
	}
	if err == nil {
		f.Range, err = queryRange(r)
	}
	if err == nil {
		f.Limit, err = queryLimit(r, 0, 1000)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	assignments, err := h.Store.ListAssignments(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if assignments == nil {
		assignments = []model.Assignment{}
	}
	jsonResponse(w, http.StatusOK, assignments)
}
