package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"spendly/backend/middleware"
	"spendly/backend/models"
	"spendly/backend/services"
	"spendly/backend/store"
)

// ExpenseHandler exposes expense CRUD backed by the caller's
// workspace.
type ExpenseHandler struct {
	workspaces *services.WorkspaceManager
}

// NewExpenseHandler builds the expense handler.
func NewExpenseHandler(workspaces *services.WorkspaceManager) *ExpenseHandler {
	return &ExpenseHandler{workspaces: workspaces}
}

type expenseListResponse struct {
	Expenses []models.Expense `json:"expenses"`
	Loading  bool             `json:"loading"`
	Error    string           `json:"error,omitempty"`
}

func (h *ExpenseHandler) expenses(ctx context.Context, w http.ResponseWriter, r *http.Request) (*store.ExpenseStore, bool) {
	userID := middleware.GetUserIDFromContext(r)
	if userID == "" {
		http.Error(w, "Unauthorized: No user ID found", http.StatusUnauthorized)
		return nil, false
	}

	ws, err := h.workspaces.Get(ctx, userID)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return ws.Expenses, true
}

// List handles GET /expenses. A subscription failure reports the
// error state alongside whatever data was last loaded.
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	expenses, ok := h.expenses(r.Context(), w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, expenseListResponse{
		Expenses: expenses.Expenses(),
		Loading:  expenses.Loading(),
		Error:    expenses.Err(),
	})
}

// Add handles POST /expenses.
func (h *ExpenseHandler) Add(w http.ResponseWriter, r *http.Request) {
	expenses, ok := h.expenses(r.Context(), w, r)
	if !ok {
		return
	}

	var data models.ExpenseData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := expenses.Add(r.Context(), data)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// Update handles PUT /expenses/{id}.
func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	expenses, ok := h.expenses(r.Context(), w, r)
	if !ok {
		return
	}

	var data models.ExpenseData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := expenses.Update(r.Context(), mux.Vars(r)["id"], data); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Delete handles DELETE /expenses/{id}. Expenses are removed for
// good, unlike categories.
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	expenses, ok := h.expenses(r.Context(), w, r)
	if !ok {
		return
	}

	if err := expenses.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
