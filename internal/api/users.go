package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/erazemk/stockledger/internal/apperr"
	"github.com/erazemk/stockledger/internal/auth"
	"github.com/erazemk/stockledger/internal/model"
	"github.com/erazemk/stockledger/internal/store"
)

// UsersHandler handles user management endpoints (admin only).
type UsersHandler struct {
	Store *store.Store
}

type createUserRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=ADMIN BASE_COMMANDER LOGISTICS_OFFICER"`
	SiteID   *int64 `json:"site_id" validate:"omitempty,gt=0"`
}

type updateUserRequest struct {
	Role   string `json:"role" validate:"required,oneof=ADMIN BASE_COMMANDER LOGISTICS_OFFICER"`
	SiteID *int64 `json:"site_id" validate:"omitempty,gt=0"`
}

type resetPasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

// List handles GET /api/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonResponse(w, http.StatusOK, users)
}

// Create handles POST /api/users.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := model.ValidatePassword(req.Password); err != nil {
		writeError(w, r, apperr.Validation("%s", err))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.Store.CreateUser(r.Context(), req.Username, hash, req.Role, req.SiteID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("user created", "user", actor(r).Username, "new_user", user.Username, "role", user.Role)
	jsonResponse(w, http.StatusCreated, user)
}

// Get handles GET /api/users/{id}.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.Store.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if user.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}

	jsonResponse(w, http.StatusOK, user)
}

// Update handles PUT /api/users/{id}.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.Store.UpdateUser(r.Context(), id, req.Role, req.SiteID); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.Store.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("user updated", "user", actor(r).Username, "target_user", user.Username, "new_role", user.Role)
	jsonResponse(w, http.StatusOK, user)
}

// ResetPassword handles PUT /api/users/{id}/password.
func (h *UsersHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req resetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := model.ValidatePassword(req.Password); err != nil {
		writeError(w, r, apperr.Validation("%s", err))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Store.UpdateUserPassword(r.Context(), id, hash); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("user password reset", "user", actor(r).Username, "target_user", targetName(r, h.Store, id))
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password reset"})
}

// Delete handles DELETE /api/users/{id}.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	a := actor(r)
	if a.UserID == id {
		writeError(w, r, apperr.Validation("cannot delete yourself"))
		return
	}

	// Look up target name before deleting.
	name := targetName(r, h.Store, id)

	if err := h.Store.DeleteUser(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("user deleted", "user", a.Username, "deleted_user", name)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

func targetName(r *http.Request, st *store.Store, id int64) string {
	if u, err := st.GetUser(r.Context(), id); err == nil {
		return u.Username
	}
	return fmt.Sprintf("id:%d", id)
}
