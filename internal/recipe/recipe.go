// Copyright (c) 2026 Forkful. All rights reserved.
// Author: dev@forkful.app

package recipe

import "time"

// Category classifies a recipe by meal occasion.
type Category string

const (
	CategoryBreakfast Category = "breakfast"
	CategoryLunch     Category = "lunch"
	CategoryDinner    Category = "dinner"
	CategoryDessert   Category = "dessert"
	CategorySnack     Category = "snack"
)

// IsValid reports whether c is a recognised [Category] value.
func (c Category) IsValid() bool {
	switch c {
	case CategoryBreakfast, CategoryLunch, CategoryDinner,
		CategoryDessert, CategorySnack:
		return true
	}
	return false
}

// Difficulty classifies the preparation skill level of a recipe.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// IsValid reports whether d is a recognised [Difficulty] value.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Recipe is the central aggregate of the Forkful domain.
//
// # Overview
//
// It represents a single published dish: its metadata, ingredient list and
// the engagement counters shown on browse pages.
type Recipe struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Slug        string       `json:"slug"`
	Description string       `json:"description"`
	ImageURL    string       `json:"imageUrl"`
	Category    Category     `json:"category"`
	Difficulty  Difficulty   `json:"difficulty"`
	CookMinutes int          `json:"cookMinutes"`
	Servings    int          `json:"servings"`
	Ingredients []Ingredient `json:"ingredients"`

	// AuthorID references the account that published the recipe.
	AuthorID   int64  `json:"authorId"`
	AuthorName string `json:"authorName,omitempty"`

	// # Engagement Counters
	//
	// Denormalized counts maintained by the like/save toggles; browse pages
	// read them without joining the edge tables.
	LikeCount int64 `json:"likeCount"`
	SaveCount int64 `json:"saveCount"`

	// IsLiked and IsSaved reflect the requesting user's own edges.
	// They are zero-valued for anonymous requests.
	IsLiked bool `json:"isLiked"`
	IsSaved bool `json:"isSaved"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Ingredient is one line of a recipe's ingredient list.
type Ingredient struct {
	Name    string `json:"name"`
	Measure string `json:"measure"`
}

// Filter holds the parameters for a filtered recipe list query.
//
// # Sorting
//
// Browse pages order by like count so popular dishes surface first;
// a search query orders by recency instead.
type Filter struct {
	Category Category
	Query    string // Title search term.
	AuthorID int64  // Non-zero restricts to one author's recipes.
}
