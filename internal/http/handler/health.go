package handler

import "net/http"

// HealthHandler reports liveness and which fixture source is being served.
type HealthHandler struct {
	source string
}

func NewHealthHandler(source string) *HealthHandler {
	return &HealthHandler{source: source}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "only GET is allowed")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "fixtures": h.source})
}
