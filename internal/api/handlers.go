// Package api exposes HTTP handlers for the workout log.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"example.com/workouts/internal/auth"
	"example.com/workouts/internal/domain"
	"example.com/workouts/internal/query"
	"example.com/workouts/internal/service"
)

// Handler coordinates HTTP requests with the workout service.
type Handler struct {
	service *service.Service
}

// NewHandler builds a Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{service: svc}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/activities", h.activities)
	mux.HandleFunc("/v1/activities/", h.activityByID)
	mux.HandleFunc("/v1/activities/bounds", h.bounds)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) activities(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createActivity(w, r)
	case http.MethodGet:
		h.listActivities(w, r)
	case http.MethodDelete:
		h.clearActivities(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) activityByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/activities/"), "/")
	if rest == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing activity id")
		return
	}

	id, action, _ := strings.Cut(rest, "/")
	switch {
	case action == "visit" && r.Method == http.MethodPost:
		h.visitActivity(w, r, id)
	case action != "":
		writeError(w, http.StatusNotFound, "not_found", "unknown resource")
	case r.Method == http.MethodGet:
		h.getActivity(w, r, id)
	case r.Method == http.MethodPatch:
		h.editActivity(w, r, id)
	case r.Method == http.MethodDelete:
		h.removeActivity(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) createActivity(w http.ResponseWriter, r *http.Request) {
	if !authorize(w, r, true) {
		return
	}

	var req CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	create, err := req.toDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	activity, err := h.service.Log(r.Context(), create)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toActivityView(activity))
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	if !authorize(w, r, false) {
		return
	}

	params := r.URL.Query()
	rawSort := strings.TrimSpace(params.Get("sort"))
	if rawSort == "" {
		writeJSON(w, http.StatusOK, ListActivitiesResponse{Items: toActivityViews(h.service.List())})
		return
	}

	metric, err := domain.ParseMetric(rawSort)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}
	direction, ok := query.ParseDirection(params.Get("direction"))
	if !ok {
		writeError(w, http.StatusBadRequest, "validation_failed", "direction must be ascending or insertion")
		return
	}

	writeJSON(w, http.StatusOK, ListActivitiesResponse{
		Items:         toActivityViews(h.service.Sorted(metric, direction)),
		Sort:          string(metric),
		Direction:     string(direction),
		NextDirection: string(direction.Flip()),
	})
}

func (h *Handler) clearActivities(w http.ResponseWriter, r *http.Request) {
	if !authorize(w, r, true) {
		return
	}

	removed, err := h.service.Clear(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ClearResponse{Removed: removed})
}

func (h *Handler) getActivity(w http.ResponseWriter, r *http.Request, id string) {
	if !authorize(w, r, false) {
		return
	}

	activity, err := h.service.Get(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityView(activity))
}

func (h *Handler) editActivity(w http.ResponseWriter, r *http.Request, id string) {
	if !authorize(w, r, true) {
		return
	}

	var req EditActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	activity, err := h.service.Patch(r.Context(), id, req.patch())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityView(activity))
}

func (h *Handler) removeActivity(w http.ResponseWriter, r *http.Request, id string) {
	if !authorize(w, r, true) {
		return
	}

	removed, err := h.service.Remove(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityView(removed))
}

func (h *Handler) visitActivity(w http.ResponseWriter, r *http.Request, id string) {
	if !authorize(w, r, true) {
		return
	}

	activity, err := h.service.Visit(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityView(activity))
}

func (h *Handler) bounds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if !authorize(w, r, false) {
		return
	}

	b, err := h.service.Bounds()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BoundsView{MinLat: b.MinLat, MaxLat: b.MaxLat, MinLng: b.MinLng, MaxLng: b.MaxLng})
}

// authorize writes 401/403 and returns false when the caller lacks the scope.
func authorize(w http.ResponseWriter, r *http.Request, write bool) bool {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return false
	}
	if write && !claims.HasScope(auth.ScopeWorkoutsWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope "+auth.ScopeWorkoutsWrite+" required")
		return false
	}
	if !write && !claims.CanRead() {
		writeError(w, http.StatusForbidden, "forbidden", "scope "+auth.ScopeWorkoutsRead+" required")
		return false
	}
	return true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, domain.ErrActivityNotFound):
		writeError(w, http.StatusNotFound, "not_found", "activity not found")
	case errors.Is(err, domain.ErrEmptyInput):
		writeError(w, http.StatusConflict, "empty_input", err.Error())
	case errors.Is(err, domain.ErrDuplicateID):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, domain.ErrPersistence):
		writeError(w, http.StatusInternalServerError, "persistence_failed", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
