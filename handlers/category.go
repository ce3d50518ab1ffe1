package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"spendly/backend/middleware"
	"spendly/backend/models"
	"spendly/backend/services"
	"spendly/backend/store"
)

// CategoryHandler exposes category CRUD and seeding.
type CategoryHandler struct {
	workspaces *services.WorkspaceManager
}

// NewCategoryHandler builds the category handler.
func NewCategoryHandler(workspaces *services.WorkspaceManager) *CategoryHandler {
	return &CategoryHandler{workspaces: workspaces}
}

func (h *CategoryHandler) categories(w http.ResponseWriter, r *http.Request) (*store.CategoryStore, bool) {
	userID := middleware.GetUserIDFromContext(r)
	if userID == "" {
		http.Error(w, "Unauthorized: No user ID found", http.StatusUnauthorized)
		return nil, false
	}

	ws, err := h.workspaces.Get(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return ws.Categories, true
}

// List handles GET /categories for an authenticated user. The
// returned set is never empty: with no live categories the defaults
// are served.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, ok := h.categories(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, categories.Categories())
}

// Defaults handles GET /categories/defaults, the read-only set served
// to unauthenticated visitors.
func (h *CategoryHandler) Defaults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.DefaultCategorySet())
}

// Add handles POST /categories.
func (h *CategoryHandler) Add(w http.ResponseWriter, r *http.Request) {
	categories, ok := h.categories(w, r)
	if !ok {
		return
	}

	var data models.CategoryData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if categories.Exists(data.Name, "") {
		http.Error(w, "A category with this name already exists", http.StatusBadRequest)
		return
	}

	if err := categories.Add(r.Context(), data); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// Update handles PUT /categories/{id}.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	categories, ok := h.categories(w, r)
	if !ok {
		return
	}

	var data models.CategoryData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id := mux.Vars(r)["id"]
	if categories.Exists(data.Name, id) {
		http.Error(w, "A category with this name already exists", http.StatusBadRequest)
		return
	}

	if err := categories.Update(r.Context(), id, data); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Delete handles DELETE /categories/{id}. This is a soft delete; the
// record stays in the backend with isActive false.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	categories, ok := h.categories(w, r)
	if !ok {
		return
	}

	if err := categories.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Seed handles POST /categories/seed. Seeding is best-effort; the
// response does not depend on its outcome.
func (h *CategoryHandler) Seed(w http.ResponseWriter, r *http.Request) {
	categories, ok := h.categories(w, r)
	if !ok {
		return
	}

	// Failures are logged inside Seed and deliberately not surfaced.
	_ = categories.Seed(r.Context())
	w.WriteHeader(http.StatusAccepted)
}
