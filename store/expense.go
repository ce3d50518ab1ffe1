package store

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"spendly/backend/models"
)

// dateLayout is the calendar-date format accepted on expense
// payloads. No time-of-day semantics are attached.
const dateLayout = "2006-01-02"

const loadExpensesError = "Failed to load expenses"

// ExpenseStore keeps a user's expenses in memory, ordered by date
// descending, synced with the live backend collection. Aggregations
// run over the in-memory slice only.
type ExpenseStore struct {
	backend  DocumentStore
	uid      string
	validate *validator.Validate
	onChange func()

	mu       sync.RWMutex
	expenses []models.Expense
	loading  bool
	loadErr  string

	sub  *Subscription
	done chan struct{}
}

// NewExpenseStore establishes the snapshot subscription for the given
// user. onChange, if non-nil, is invoked after every applied
// snapshot. Close must be called to release the backend listener.
func NewExpenseStore(ctx context.Context, backend DocumentStore, uid string, onChange func()) (*ExpenseStore, error) {
	s := &ExpenseStore{
		backend:  backend,
		uid:      uid,
		validate: validator.New(),
		onChange: onChange,
		loading:  true,
		done:     make(chan struct{}),
	}

	sub, err := backend.Subscribe(ctx, s.path(), Query{OrderBy: "date", Descending: true})
	if err != nil {
		log.Printf("Error setting up expenses listener for %s: %v", uid, err)
		return nil, &models.BackendError{Op: "subscribe expenses", Err: err}
	}
	s.sub = sub

	go s.consume()
	return s, nil
}

func (s *ExpenseStore) path() string {
	return "users/" + s.uid + "/expenses"
}

func (s *ExpenseStore) consume() {
	defer close(s.done)
	for snap := range s.sub.C {
		s.apply(snap)
		if s.onChange != nil {
			s.onChange()
		}
	}
}

// apply replaces the in-memory list with the snapshot contents. A
// failed snapshot keeps previously loaded data and only records the
// error state.
func (s *ExpenseStore) apply(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loading = false
	if snap.Err != nil {
		s.loadErr = loadExpensesError
		return
	}

	expenses := make([]models.Expense, 0, len(snap.Docs))
	for _, doc := range snap.Docs {
		expenses = append(expenses, decodeExpense(doc))
	}
	sort.SliceStable(expenses, func(i, j int) bool {
		return expenses[i].Date.After(expenses[j].Date)
	})

	s.expenses = expenses
	s.loadErr = ""
}

func decodeExpense(doc Document) models.Expense {
	e := models.Expense{
		ID:          doc.ID,
		Amount:      toFloat(doc.Data["amount"]),
		Category:    toString(doc.Data["category"]),
		Description: toString(doc.Data["description"]),
		Note:        toString(doc.Data["note"]),
	}

	if d, ok := doc.Data["date"].(time.Time); ok {
		e.Date = d
	} else {
		// Malformed date field, keep the record visible anyway.
		e.Date = time.Now()
	}
	if t, ok := doc.Data["createdAt"].(time.Time); ok {
		e.CreatedAt = t
	}
	if t, ok := doc.Data["updatedAt"].(time.Time); ok {
		e.UpdatedAt = t
	}
	return e
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}

func toString(v interface{}) string {
	s, _ := v.(string)
	return s
}

// Expenses returns a copy of the current in-memory list, newest date
// first.
func (s *ExpenseStore) Expenses() []models.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Expense, len(s.expenses))
	copy(out, s.expenses)
	return out
}

// Loading reports whether the first snapshot is still pending.
func (s *ExpenseStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the current load-error state, or "" when healthy.
func (s *ExpenseStore) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// validateData enforces the expense invariants and parses the date.
func (s *ExpenseStore) validateData(data models.ExpenseData) (time.Time, error) {
	if err := s.validate.Struct(data); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return time.Time{}, expenseFieldError(errs[0].Field())
		}
		return time.Time{}, &models.ValidationError{Message: err.Error()}
	}

	date, err := time.Parse(dateLayout, data.Date)
	if err != nil {
		return time.Time{}, &models.ValidationError{Field: "date", Message: "Date must be a valid calendar date (YYYY-MM-DD)"}
	}
	return date, nil
}

func expenseFieldError(field string) *models.ValidationError {
	switch field {
	case "Amount":
		return &models.ValidationError{Field: "amount", Message: "Amount must be greater than 0"}
	case "Category":
		return &models.ValidationError{Field: "category", Message: "Category is required"}
	case "Date":
		return &models.ValidationError{Field: "date", Message: "Date is required"}
	}
	return &models.ValidationError{Field: field, Message: "Invalid value"}
}

// Add validates and writes a new expense, returning the generated id.
func (s *ExpenseStore) Add(ctx context.Context, data models.ExpenseData) (string, error) {
	date, err := s.validateData(data)
	if err != nil {
		return "", err
	}

	id, err := s.backend.Add(ctx, s.path(), expenseDoc(data, date, map[string]interface{}{
		"createdAt": time.Now(),
	}))
	if err != nil {
		log.Printf("Error adding expense for %s: %v", s.uid, err)
		return "", &models.BackendError{Op: "add expense", Err: err}
	}
	return id, nil
}

// Update validates and overwrites an existing expense's fields.
func (s *ExpenseStore) Update(ctx context.Context, id string, data models.ExpenseData) error {
	date, err := s.validateData(data)
	if err != nil {
		return err
	}

	err = s.backend.Update(ctx, s.path(), id, expenseDoc(data, date, map[string]interface{}{
		"updatedAt": time.Now(),
	}))
	if err != nil {
		log.Printf("Error updating expense %s for %s: %v", id, s.uid, err)
		return &models.BackendError{Op: "update expense", Err: err}
	}
	return nil
}

// Delete removes an expense permanently.
func (s *ExpenseStore) Delete(ctx context.Context, id string) error {
	if err := s.backend.Delete(ctx, s.path(), id); err != nil {
		log.Printf("Error deleting expense %s for %s: %v", id, s.uid, err)
		return &models.BackendError{Op: "delete expense", Err: err}
	}
	return nil
}

func expenseDoc(data models.ExpenseData, date time.Time, extra map[string]interface{}) map[string]interface{} {
	doc := map[string]interface{}{
		"amount":   data.Amount,
		"category": data.Category,
		"date":     date,
	}
	if data.Description != "" {
		doc["description"] = data.Description
	}
	if data.Note != "" {
		doc["note"] = data.Note
	}
	for k, v := range extra {
		doc[k] = v
	}
	return doc
}

// MonthlyTotal sums the amounts of all in-memory expenses whose date
// falls in the given month and year.
func (s *ExpenseStore) MonthlyTotal(month time.Month, year int) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total float64
	for _, e := range s.expenses {
		if e.Date.Month() == month && e.Date.Year() == year {
			total += e.Amount
		}
	}
	return total
}

// CategoryBreakdown maps each category name present in the in-memory
// list to its summed amount.
func (s *ExpenseStore) CategoryBreakdown() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	breakdown := make(map[string]float64)
	for _, e := range s.expenses {
		breakdown[e.Category] += e.Amount
	}
	return breakdown
}

// MonthlyTrend returns one bucket per calendar month, oldest first,
// ending at the current month.
func (s *ExpenseStore) MonthlyTrend(months int) []models.MonthlyTrendItem {
	return s.monthlyTrendAt(time.Now(), months)
}

func (s *ExpenseStore) monthlyTrendAt(now time.Time, months int) []models.MonthlyTrendItem {
	trend := make([]models.MonthlyTrendItem, 0, months)
	for i := months - 1; i >= 0; i-- {
		m := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, now.Location())
		trend = append(trend, models.MonthlyTrendItem{
			Month: m.Format("Jan 2006"),
			Total: s.MonthlyTotal(m.Month(), m.Year()),
		})
	}
	return trend
}

// Close releases the subscription and waits for the consumer to
// drain.
func (s *ExpenseStore) Close() {
	s.sub.Close()
	<-s.done
}
