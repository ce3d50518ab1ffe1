package models

import (
	"strconv"
	"time"
)

// Category is a spending category owned by a user. Deleting a
// category only flips IsActive so existing expenses keep resolving
// their category name.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	Color     string    `json:"color"`
	IsActive  bool      `json:"isActive"`
	UserID    string    `json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// CategoryData is the payload accepted when creating or updating a
// category.
type CategoryData struct {
	Name     string `json:"name" validate:"required"`
	Icon     string `json:"icon" validate:"required"`
	Color    string `json:"color" validate:"required"`
	IsActive bool   `json:"isActive"`
}

// DefaultCategories is the fixed set served to users who have no
// categories of their own, and the set written by seeding. Icon names
// and color gradient tokens are resolved by the frontend.
var DefaultCategories = []CategoryData{
	{Name: "Food & Dining", Icon: "FoodIcon", Color: "from-orange-500 to-red-500", IsActive: true},
	{Name: "Transportation", Icon: "TransportIcon", Color: "from-blue-500 to-cyan-500", IsActive: true},
	{Name: "Shopping", Icon: "ShoppingIcon", Color: "from-purple-500 to-pink-500", IsActive: true},
	{Name: "Entertainment", Icon: "EntertainmentIcon", Color: "from-green-500 to-emerald-500", IsActive: true},
	{Name: "Bills & Utilities", Icon: "BillsIcon", Color: "from-yellow-500 to-orange-500", IsActive: true},
	{Name: "Healthcare", Icon: "HealthIcon", Color: "from-red-500 to-pink-500", IsActive: true},
	{Name: "Travel", Icon: "TravelIcon", Color: "from-indigo-500 to-purple-500", IsActive: true},
	{Name: "Education", Icon: "EducationIcon", Color: "from-teal-500 to-cyan-500", IsActive: true},
	{Name: "Groceries", Icon: "FoodIcon", Color: "from-emerald-500 to-green-500", IsActive: true},
	{Name: "Other", Icon: "MoneyIcon", Color: "from-gray-500 to-slate-500", IsActive: true},
}

// DefaultCategorySet materializes DefaultCategories with the
// synthetic ids (default-0 .. default-9) used whenever the defaults
// stand in for live data.
func DefaultCategorySet() []Category {
	cats := make([]Category, len(DefaultCategories))
	for i, d := range DefaultCategories {
		cats[i] = Category{
			ID:       "default-" + strconv.Itoa(i),
			Name:     d.Name,
			Icon:     d.Icon,
			Color:    d.Color,
			IsActive: d.IsActive,
		}
	}
	return cats
}
