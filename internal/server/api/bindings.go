package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/ayusman/mudra/internal/action"
	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
)

// BindingHandler handles HTTP requests for gesture to action bindings.
type BindingHandler struct {
	app   *app.App
	store *store.Store
}

// NewBindingHandler creates a BindingHandler. Changes are written to s and
// reloaded into a.
func NewBindingHandler(a *app.App, s *store.Store) *BindingHandler {
	return &BindingHandler{app: a, store: s}
}

type updateBindingRequest struct {
	Action     string          `json:"action"`
	PluginName string          `json:"plugin_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    *bool           `json:"enabled"`
}

type bindingResponse struct {
	Gesture    string          `json:"gesture"`
	Action     *string         `json:"action"`
	PluginName string          `json:"plugin_name,omitempty"`
	Config     json.RawMessage `json:"config,omitempty"`
	Enabled    bool            `json:"enabled"`
	Custom     bool            `json:"custom"`
	UpdatedAt  string          `json:"updated_at,omitempty"`
}

type listBindingsResponse struct {
	Bindings []bindingResponse `json:"bindings"`
}

// ServeHTTP routes /api/bindings and /api/bindings/{gesture}.
func (h *BindingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/bindings")
	path = strings.Trim(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	g, err := gesture.Parse(path)
	if err != nil || g == gesture.None {
		writeError(w, http.StatusNotFound, "Unknown gesture")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, g)
	case http.MethodPut:
		h.update(w, r, g)
	case http.MethodDelete:
		h.delete(w, r, g)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// effective describes what g currently triggers: its stored binding if any,
// otherwise the built-in mapping.
func (h *BindingHandler) effective(g gesture.Gesture) (bindingResponse, error) {
	resp := bindingResponse{Gesture: string(g)}

	b, err := h.store.Bindings().Get(string(g))
	switch {
	case err == nil:
		a := b.Action
		resp.Action = &a
		resp.PluginName = b.PluginName
		resp.Config = b.Config
		resp.Enabled = b.Enabled
		resp.Custom = true
		resp.UpdatedAt = b.UpdatedAt.Format(time.RFC3339)
	case errors.Is(err, store.ErrNotFound):
		if a, ok := action.DefaultMappings()[g]; ok {
			s := string(a)
			resp.Action = &s
			resp.Enabled = true
		}
	default:
		return resp, err
	}
	return resp, nil
}

// list handles GET /api/bindings and returns the binding of every gesture.
func (h *BindingHandler) list(w http.ResponseWriter, r *http.Request) {
	response := listBindingsResponse{Bindings: []bindingResponse{}}
	for _, g := range gesture.All() {
		if g == gesture.None {
			continue
		}
		b, err := h.effective(g)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to list bindings")
			return
		}
		response.Bindings = append(response.Bindings, b)
	}
	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/bindings/{gesture}.
func (h *BindingHandler) get(w http.ResponseWriter, r *http.Request, g gesture.Gesture) {
	b, err := h.effective(g)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get binding")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// update handles PUT /api/bindings/{gesture} and stores a custom binding.
func (h *BindingHandler) update(w http.ResponseWriter, r *http.Request, g gesture.Gesture) {
	var req updateBindingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Action == "" {
		writeError(w, http.StatusBadRequest, "action is required")
		return
	}
	if _, err := action.Parse(req.Action); err != nil {
		writeError(w, http.StatusBadRequest, "Unknown action")
		return
	}
	if req.PluginName != "" {
		p, err := h.app.PluginManager().Get(req.PluginName)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Plugin not found")
			return
		}
		if !p.Manifest.Supports(req.Action) {
			writeError(w, http.StatusBadRequest, "Plugin does not support action")
			return
		}
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	b := &store.Binding{
		Gesture:    string(g),
		Action:     req.Action,
		PluginName: req.PluginName,
		Config:     req.Config,
		Enabled:    enabled,
	}
	if err := h.store.Bindings().Upsert(b); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save binding")
		return
	}
	h.reload()

	resp, err := h.effective(g)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get binding")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// delete handles DELETE /api/bindings/{gesture} and restores the default.
func (h *BindingHandler) delete(w http.ResponseWriter, r *http.Request, g gesture.Gesture) {
	if err := h.store.Bindings().Delete(string(g)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Binding not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete binding")
		return
	}
	h.reload()

	w.WriteHeader(http.StatusNoContent)
}

func (h *BindingHandler) reload() {
	if err := h.app.LoadBindings(); err != nil {
		log.Printf("Failed to reload bindings: %v", err)
	}
}
