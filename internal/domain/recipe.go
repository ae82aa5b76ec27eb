package domain

import "time"

// Tag labels recipes for the user that owns it.
type Tag struct {
	ID     int64
	UserID int64
	Name   string
}

// Ingredient is a named component of a recipe, owned by a single user.
type Ingredient struct {
	ID     int64
	UserID int64
	Name   string
}

// Recipe is a user-owned recipe. Tags and Ingredients always belong to the
// same owner as the recipe itself. ImageKey is the object-storage key of the
// uploaded image, empty when none has been attached.
type Recipe struct {
	ID          int64
	UserID      int64
	Title       string
	TimeMinutes int
	Price       float64
	Link        string
	ImageKey    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Tags        []Tag
	Ingredients []Ingredient
}
