package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendly/backend/models"
	"spendly/backend/store"
	"spendly/backend/store/storetest"
)

const testUID = "test-user"

const expensesPath = "users/" + testUID + "/expenses"

func newExpenseStore(t *testing.T, fake *storetest.Fake) *store.ExpenseStore {
	t.Helper()

	s, err := store.NewExpenseStore(context.Background(), fake, testUID, nil)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	require.Eventually(t, func() bool {
		return !s.Loading()
	}, time.Second, 5*time.Millisecond, "first snapshot never arrived")
	return s
}

func addExpenseDoc(t *testing.T, fake *storetest.Fake, amount float64, category string, date time.Time) {
	t.Helper()
	_, err := fake.Add(context.Background(), expensesPath, map[string]interface{}{
		"amount":   amount,
		"category": category,
		"date":     date,
	})
	require.NoError(t, err)
}

func waitForExpenses(t *testing.T, s *store.ExpenseStore, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(s.Expenses()) == n
	}, time.Second, 5*time.Millisecond, "expected %d expenses", n)
}

func TestExpenseStoreAddAppearsInSnapshot(t *testing.T) {
	fake := storetest.NewFake()
	s := newExpenseStore(t, fake)

	id, err := s.Add(context.Background(), models.ExpenseData{
		Amount:      50000,
		Category:    "Food & Dining",
		Date:        "2024-01-15",
		Description: "lunch",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	waitForExpenses(t, s, 1)

	got := s.Expenses()[0]
	assert.Equal(t, id, got.ID)
	assert.Equal(t, 50000.0, got.Amount)
	assert.Equal(t, "Food & Dining", got.Category)
	assert.Equal(t, "lunch", got.Description)
	assert.Equal(t, time.January, got.Date.Month())
	assert.Equal(t, 2024, got.Date.Year())
	assert.False(t, got.CreatedAt.IsZero())
}

func TestExpenseStoreAddValidation(t *testing.T) {
	testCases := []struct {
		name string
		data models.ExpenseData
	}{
		{
			name: "negative amount",
			data: models.ExpenseData{Amount: -10, Category: "Food & Dining", Date: "2024-01-15"},
		},
		{
			name: "zero amount",
			data: models.ExpenseData{Amount: 0, Category: "Food & Dining", Date: "2024-01-15"},
		},
		{
			name: "missing category",
			data: models.ExpenseData{Amount: 100, Date: "2024-01-15"},
		},
		{
			name: "missing date",
			data: models.ExpenseData{Amount: 100, Category: "Food & Dining"},
		},
		{
			name: "bad date format",
			data: models.ExpenseData{Amount: 100, Category: "Food & Dining", Date: "15/01/2024"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fake := storetest.NewFake()
			s := newExpenseStore(t, fake)

			_, err := s.Add(context.Background(), tc.data)

			var validationErr *models.ValidationError
			require.ErrorAs(t, err, &validationErr)
			// No backend write may happen on invalid input.
			assert.Equal(t, 0, fake.Count(expensesPath))
		})
	}
}

func TestExpenseStoreOrderedByDateDescending(t *testing.T) {
	fake := storetest.NewFake()
	s := newExpenseStore(t, fake)

	addExpenseDoc(t, fake, 10, "Food & Dining", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	addExpenseDoc(t, fake, 20, "Travel", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	addExpenseDoc(t, fake, 30, "Shopping", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	waitForExpenses(t, s, 3)

	expenses := s.Expenses()
	assert.Equal(t, "Travel", expenses[0].Category)
	assert.Equal(t, "Shopping", expenses[1].Category)
	assert.Equal(t, "Food & Dining", expenses[2].Category)
}

func TestExpenseStoreMonthlyTotal(t *testing.T) {
	fake := storetest.NewFake()
	s := newExpenseStore(t, fake)

	addExpenseDoc(t, fake, 50000, "Food & Dining", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	addExpenseDoc(t, fake, 25000, "Travel", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
	waitForExpenses(t, s, 2)

	assert.Equal(t, 75000.0, s.MonthlyTotal(time.January, 2024))

	// A record in another month must not change the January total.
	addExpenseDoc(t, fake, 99999, "Shopping", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	waitForExpenses(t, s, 3)

	assert.Equal(t, 75000.0, s.MonthlyTotal(time.January, 2024))
	assert.Equal(t, 99999.0, s.MonthlyTotal(time.February, 2024))
	assert.Equal(t, 0.0, s.MonthlyTotal(time.January, 2023))
}

func TestExpenseStoreCategoryBreakdown(t *testing.T) {
	fake := storetest.NewFake()
	s := newExpenseStore(t, fake)

	addExpenseDoc(t, fake, 50000, "Food & Dining", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	addExpenseDoc(t, fake, 20000, "Food & Dining", time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC))
	addExpenseDoc(t, fake, 12000, "Travel", time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC))
	waitForExpenses(t, s, 3)

	breakdown := s.CategoryBreakdown()
	require.Len(t, breakdown, 2)
	assert.Equal(t, 70000.0, breakdown["Food & Dining"])
	assert.Equal(t, 12000.0, breakdown["Travel"])

	var sum float64
	for _, v := range breakdown {
		sum += v
	}
	assert.Equal(t, 82000.0, sum)
}

func TestExpenseStoreMonthlyTrend(t *testing.T) {
	fake := storetest.NewFake()
	s := newExpenseStore(t, fake)

	now := time.Now()
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastMonth := thisMonth.AddDate(0, -1, 0)

	addExpenseDoc(t, fake, 100, "Food & Dining", thisMonth)
	addExpenseDoc(t, fake, 40, "Travel", lastMonth)
	waitForExpenses(t, s, 2)

	trend := s.MonthlyTrend(6)
	require.Len(t, trend, 6)

	// Buckets run oldest first and end at the current month.
	for i, item := range trend {
		expected := thisMonth.AddDate(0, i-5, 0)
		assert.Equal(t, expected.Format("Jan 2006"), item.Month)
	}
	assert.Equal(t, 40.0, trend[4].Total)
	assert.Equal(t, 100.0, trend[5].Total)
}

func TestExpenseStoreKeepsDataOnSubscriptionError(t *testing.T) {
	fake := storetest.NewFake()
	s := newExpenseStore(t, fake)

	addExpenseDoc(t, fake, 100, "Food & Dining", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	waitForExpenses(t, s, 1)

	fake.FailSubscriptions(expensesPath, errors.New("listener torn down"))

	require.Eventually(t, func() bool {
		return s.Err() != ""
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, "Failed to load expenses", s.Err())
	// Previously loaded data stays visible through the error.
	assert.Len(t, s.Expenses(), 1)
}

func TestExpenseStoreUpdateAndDelete(t *testing.T) {
	fake := storetest.NewFake()
	s := newExpenseStore(t, fake)

	id, err := s.Add(context.Background(), models.ExpenseData{
		Amount:   100,
		Category: "Food & Dining",
		Date:     "2024-01-15",
	})
	require.NoError(t, err)
	waitForExpenses(t, s, 1)

	err = s.Update(context.Background(), id, models.ExpenseData{
		Amount:   250,
		Category: "Groceries",
		Date:     "2024-01-16",
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		expenses := s.Expenses()
		return len(expenses) == 1 && expenses[0].Amount == 250
	}, time.Second, 5*time.Millisecond)

	got := s.Expenses()[0]
	assert.Equal(t, "Groceries", got.Category)
	assert.False(t, got.UpdatedAt.IsZero())

	// Expenses are hard deleted.
	require.NoError(t, s.Delete(context.Background(), id))
	waitForExpenses(t, s, 0)
	assert.Equal(t, 0, fake.Count(expensesPath))
}

func TestExpenseStoreWriteFailure(t *testing.T) {
	fake := storetest.NewFake()
	s := newExpenseStore(t, fake)

	fake.FailWrites(errors.New("permission denied"))

	_, err := s.Add(context.Background(), models.ExpenseData{
		Amount:   100,
		Category: "Food & Dining",
		Date:     "2024-01-15",
	})

	var backendErr *models.BackendError
	require.ErrorAs(t, err, &backendErr)
}
