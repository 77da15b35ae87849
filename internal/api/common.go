package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/stockledger/internal/apperr"
	"github.com/erazemk/stockledger/internal/imaging"
	"github.com/erazemk/stockledger/internal/model"
	"github.com/erazemk/stockledger/internal/store"
)

// CommonHandler serves reference data shared by every site.
type CommonHandler struct {
	Store *store.Store
}

type createSiteRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Location string `json:"location" validate:"max=200"`
}

type createEquipmentTypeRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Category string `json:"category" validate:"required,max=50"`
}

// Health handles GET /api/health.
func (h *CommonHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		slog.Error("health check failed", "error", err)
		jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "UNAVAILABLE"})
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "OK"})
}

// ListSites handles GET /api/common/sites.
func (h *CommonHandler) ListSites(w http.ResponseWriter, r *http.Request) {
	sites, err := h.Store.ListSites(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if sites == nil {
		sites = []model.Site{}
	}
	jsonResponse(w, http.StatusOK, sites)
}

// CreateSite handles POST /api/common/sites.
func (h *CommonHandler) CreateSite(w http.ResponseWriter, r *http.Request) {
	var req createSiteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	site, err := h.Store.CreateSite(r.Context(), req.Name, req.Location)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("site created", "user", actor(r).Username, "site", site.Name, "site_id", site.ID)
	jsonResponse(w, http.StatusCreated, site)
}

// ListEquipmentTypes handles GET /api/common/equipment-types.
func (h *CommonHandler) ListEquipmentTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Store.ListEquipmentTypes(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if types == nil {
		types = []model.EquipmentType{}
	}
	jsonResponse(w, http.StatusOK, types)
}

// CreateEquipmentType handles POST /api/common/equipment-types.
func (h *CommonHandler) CreateEquipmentType(w http.ResponseWriter, r *http.Request) {
	var req createEquipmentTypeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	et, err := h.Store.CreateEquipmentType(r.Context(), req.Name, req.Category)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("equipment type created", "user", actor(r).Username, "equipment_type", et.Name, "category", et.Category)
	jsonResponse(w, http.StatusCreated, et)
}

// UploadImage handles PUT /api/common/equipment-types/{id}/image.
func (h *CommonHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Leave room for multipart framing around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+64<<10)
	file, _, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, http.StatusRequestEntityTooLarge, "image too large")
			return
		}
		writeError(w, r, apperr.Validation("image file required"))
		return
	}
	defer file.Close()

	photo, err := imaging.NormalizePhoto(file)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.Store.SetEquipmentImage(r.Context(), id, photo.Data, imaging.MIME); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("equipment image uploaded", "user", actor(r).Username, "equipment_type_id", id,
		"width", photo.Width, "height", photo.Height)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "image uploaded"})
}

// GetImage handles GET /api/common/equipment-types/{id}/image.
func (h *CommonHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	data, mime, err := h.Store.GetEquipmentImage(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
