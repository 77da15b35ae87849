package api

import (
	"net/http"

	"github.com/erazemk/stockledger/internal/store"
)

// LogsHandler exposes the API request log to administrators.
type LogsHandler struct {
	Store *store.Store
}

// List handles GET /api/logs.
func (h *LogsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r, 100, 1000)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logs, err := h.Store.ListAPILogs(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if logs == nil {
		logs = []store.APILog{}
	}
	jsonResponse(w, http.StatusOK, logs)
}
