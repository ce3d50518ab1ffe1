package models

import "time"

// User is the authenticated identity as reported by the auth
// provider.
type User struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// UserProfile is the profile document written under users/{uid} when
// an account is registered. Preference fields are edited by the
// frontend settings surface, not by this service.
type UserProfile struct {
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	Profile   Profile   `json:"profile"`
}

// Profile holds the user's display preferences.
type Profile struct {
	DisplayName   string  `json:"displayName"`
	MonthlyIncome float64 `json:"monthlyIncome"`
	BudgetGoal    float64 `json:"budgetGoal"`
	Currency      string  `json:"currency"`
}

// NewUserProfile returns the profile written for a freshly registered
// account. IDR is the launch currency.
func NewUserProfile(email string) UserProfile {
	return UserProfile{
		Email:     email,
		CreatedAt: time.Now(),
		Profile:   Profile{Currency: "IDR"},
	}
}

// Doc renders the profile as a backend document.
func (p UserProfile) Doc() map[string]interface{} {
	return map[string]interface{}{
		"email":     p.Email,
		"createdAt": p.CreatedAt,
		"profile": map[string]interface{}{
			"displayName":   p.Profile.DisplayName,
			"monthlyIncome": p.Profile.MonthlyIncome,
			"budgetGoal":    p.Profile.BudgetGoal,
			"currency":      p.Profile.Currency,
		},
	}
}
