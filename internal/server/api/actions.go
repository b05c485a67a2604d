package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/tadasana/internal/posture"
	"github.com/ayusman/tadasana/internal/store"
)

// ActionHandler handles HTTP requests for alert action bindings.
type ActionHandler struct {
	store *store.Store
}

// NewActionHandler creates a new ActionHandler with the given store.
func NewActionHandler(s *store.Store) *ActionHandler {
	return &ActionHandler{store: s}
}

// ServeHTTP routes /api/actions (collection) and /api/actions/{id} (item)
// requests to the matching handler.
func (h *ActionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/actions"), "/")

	switch {
	case id == "" && r.Method == http.MethodGet:
		h.list(w)
	case id == "" && r.Method == http.MethodPost:
		h.create(w, r)
	case id != "" && r.Method == http.MethodGet:
		h.get(w, id)
	case id != "" && r.Method == http.MethodPut:
		h.update(w, r, id)
	case id != "" && r.Method == http.MethodDelete:
		h.delete(w, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// actionRequest is the body for both POST and PUT. On update, empty fields
// keep their stored values; Enabled is a pointer so "not sent" and "false"
// stay distinguishable.
type actionRequest struct {
	Metric     string          `json:"metric"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    *bool           `json:"enabled"`
}

// missingField returns the name of the first required field that is empty,
// or "" when the request is complete.
func (req *actionRequest) missingField() string {
	switch {
	case req.Metric == "":
		return "metric"
	case req.PluginName == "":
		return "plugin_name"
	case req.ActionName == "":
		return "action_name"
	}
	return ""
}

type actionResponse struct {
	ID         string          `json:"id"`
	Metric     string          `json:"metric"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    bool            `json:"enabled"`
	CreatedAt  string          `json:"created_at"`
}

type listActionsResponse struct {
	Actions []actionResponse `json:"actions"`
}

// validMetric reports whether name is one of the posture metrics an action
// can be bound to.
func validMetric(name string) bool {
	for _, m := range posture.MetricNames() {
		if m == name {
			return true
		}
	}
	return false
}

// renderAction shapes a stored binding for the wire. A nil config goes out
// as an empty object rather than JSON null.
func renderAction(a *store.AlertAction) actionResponse {
	resp := actionResponse{
		ID:         a.ID,
		Metric:     a.Metric,
		PluginName: a.PluginName,
		ActionName: a.ActionName,
		Config:     a.Config,
		Enabled:    a.Enabled,
		CreatedAt:  a.CreatedAt.Format(time.RFC3339),
	}
	if resp.Config == nil {
		resp.Config = json.RawMessage("{}")
	}
	return resp
}

// metricConflict reports whether a different binding already claims the
// metric. Each metric holds at most one action.
func (h *ActionHandler) metricConflict(metric, selfID string) (bool, error) {
	existing, err := h.store.AlertActions().GetByMetric(metric)
	if err != nil {
		return false, err
	}
	return existing != nil && existing.ID != selfID, nil
}

// list handles GET /api/actions.
func (h *ActionHandler) list(w http.ResponseWriter) {
	actions, err := h.store.AlertActions().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list actions")
		return
	}

	response := listActionsResponse{Actions: make([]actionResponse, 0, len(actions))}
	for _, a := range actions {
		response.Actions = append(response.Actions, renderAction(a))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/actions/{id}.
func (h *ActionHandler) get(w http.ResponseWriter, id string) {
	action, err := h.store.AlertActions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Action not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get action")
		return
	}

	writeJSON(w, http.StatusOK, renderAction(action))
}

// create handles POST /api/actions. New bindings start enabled unless the
// request says otherwise.
func (h *ActionHandler) create(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if name := req.missingField(); name != "" {
		writeError(w, http.StatusBadRequest, name+" is required")
		return
	}
	if !validMetric(req.Metric) {
		writeError(w, http.StatusBadRequest, "Unknown metric")
		return
	}

	taken, err := h.metricConflict(req.Metric, "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check existing action")
		return
	}
	if taken {
		writeError(w, http.StatusConflict, "Action already bound to this metric")
		return
	}

	action := &store.AlertAction{
		ID:         uuid.New().String(),
		Metric:     req.Metric,
		PluginName: req.PluginName,
		ActionName: req.ActionName,
		Config:     req.Config,
		Enabled:    true,
	}
	if action.Config == nil {
		action.Config = json.RawMessage("{}")
	}
	if req.Enabled != nil {
		action.Enabled = *req.Enabled
	}

	if err := h.store.AlertActions().Create(action); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create action")
		return
	}

	writeJSON(w, http.StatusCreated, renderAction(action))
}

// update handles PUT /api/actions/{id}. Only fields present in the body
// change; the rest carry over from the stored binding.
func (h *ActionHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	action, err := h.store.AlertActions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Action not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get action")
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Metric != "" && req.Metric != action.Metric {
		if !validMetric(req.Metric) {
			writeError(w, http.StatusBadRequest, "Unknown metric")
			return
		}
		taken, err := h.metricConflict(req.Metric, action.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to check existing action")
			return
		}
		if taken {
			writeError(w, http.StatusConflict, "Action already bound to this metric")
			return
		}
		action.Metric = req.Metric
	}
	if req.PluginName != "" {
		action.PluginName = req.PluginName
	}
	if req.ActionName != "" {
		action.ActionName = req.ActionName
	}
	if req.Config != nil {
		action.Config = req.Config
	}
	if req.Enabled != nil {
		action.Enabled = *req.Enabled
	}

	if err := h.store.AlertActions().Update(action); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update action")
		return
	}

	writeJSON(w, http.StatusOK, renderAction(action))
}

// delete handles DELETE /api/actions/{id}.
func (h *ActionHandler) delete(w http.ResponseWriter, id string) {
	if err := h.store.AlertActions().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Action not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete action")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
