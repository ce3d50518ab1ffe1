package handlers

import (
	"net/http"
	"strconv"
	"time"

	"spendly/backend/middleware"
	"spendly/backend/services"
)

// AnalyticsHandler serves the aggregation views computed over the
// in-memory expense list.
type AnalyticsHandler struct {
	workspaces *services.WorkspaceManager
}

// NewAnalyticsHandler builds the analytics handler.
func NewAnalyticsHandler(workspaces *services.WorkspaceManager) *AnalyticsHandler {
	return &AnalyticsHandler{workspaces: workspaces}
}

func (h *AnalyticsHandler) workspace(w http.ResponseWriter, r *http.Request) (*services.Workspace, bool) {
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
	return ws, true
}

// MonthlyTotal handles GET /analytics/monthly-total?month=1..12&year=YYYY.
// Defaults to the current month.
func (h *AnalyticsHandler) MonthlyTotal(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	now := time.Now()
	month := int(now.Month())
	year := now.Year()

	if v := r.URL.Query().Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			http.Error(w, "month must be between 1 and 12", http.StatusBadRequest)
			return
		}
		month = m
	}
	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "year must be a number", http.StatusBadRequest)
			return
		}
		year = y
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"month": month,
		"year":  year,
		"total": ws.Expenses.MonthlyTotal(time.Month(month), year),
	})
}

// CategoryBreakdown handles GET /analytics/breakdown.
func (h *AnalyticsHandler) CategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, ws.Expenses.CategoryBreakdown())
}

// MonthlyTrend handles GET /analytics/trend?months=N. Defaults to six
// months.
func (h *AnalyticsHandler) MonthlyTrend(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	months := 6
	if v := r.URL.Query().Get("months"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 60 {
			http.Error(w, "months must be between 1 and 60", http.StatusBadRequest)
			return
		}
		months = n
	}

	writeJSON(w, http.StatusOK, ws.Expenses.MonthlyTrend(months))
}
