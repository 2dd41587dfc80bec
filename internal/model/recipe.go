package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// SourceType records where a recipe came from.
type SourceType string

const (
	SourceURL    SourceType = "url"
	SourceImage  SourceType = "image"
	SourceManual SourceType = "manual"
)

// Valid reports whether t is one of the known source types.
func (t SourceType) Valid() bool {
	switch t {
	case SourceURL, SourceImage, SourceManual:
		return true
	}
	return false
}

// RequiresSource reports whether recipes of this type must carry a source.
func (t SourceType) RequiresSource() bool {
	return t == SourceURL || t == SourceImage
}

// Recipe is a user's recipe document, stored under users/{uid}/recipes/{id}.
type Recipe struct {
	ID          string      `gorm:"type:varchar(36);primaryKey" json:"id" firestore:"id"`
	UserID      string      `gorm:"type:varchar(128);not null;index:idx_recipes_user_created,priority:1" json:"user_id" firestore:"userId"`
	Name        string      `gorm:"size:255;not null" json:"name" firestore:"name"`
	SourceType  SourceType  `gorm:"size:16;not null;default:'manual'" json:"source_type" firestore:"sourceType"`
	Source      *string     `gorm:"type:text" json:"source" firestore:"source"`
	Ingredients Ingredients `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients" firestore:"ingredients"`
	Steps       Steps       `gorm:"type:jsonb;not null;default:'[]'" json:"steps" firestore:"steps"`
	CreatedAt   time.Time   `gorm:"index:idx_recipes_user_created,priority:2,sort:desc" json:"created_at" firestore:"createdAt"`
	UpdatedAt   time.Time   `json:"updated_at" firestore:"updatedAt"`
}

func (Recipe) CollectionName() string { return "recipes" }

func (r *Recipe) DocID() string       { return r.ID }
func (r *Recipe) SetDocID(id string)  { r.ID = id }
func (r *Recipe) SetOwner(uid string) { r.UserID = uid }

// Stamp sets the creation and update times of a new document.
func (r *Recipe) Stamp(now time.Time) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
}

// Normalize upcasts legacy shapes and rejects documents that break the
// recipe invariants.
func (r *Recipe) Normalize() error {
	if r.SourceType == "" {
		r.SourceType = SourceManual
	}
	if !r.SourceType.Valid() {
		return fmt.Errorf("recipe %s: unknown source type %q", r.ID, r.SourceType)
	}
	if r.SourceType.RequiresSource() {
		if r.Source == nil || strings.TrimSpace(*r.Source) == "" {
			return fmt.Errorf("recipe %s: source type %s requires a source", r.ID, r.SourceType)
		}
	} else {
		r.Source = nil
	}
	if r.Ingredients == nil {
		r.Ingredients = Ingredients{}
	}
	if r.Steps == nil {
		r.Steps = Steps{}
	}
	seen := make(map[string]struct{}, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		if err := checkSubItem(seen, ing.ID, ing.Amount); err != nil {
			return fmt.Errorf("recipe %s: ingredient: %w", r.ID, err)
		}
	}
	return nil
}

// Matches reports whether query occurs in the recipe name or in any ingredient
// name, ignoring case. An empty query matches every recipe.
func (r *Recipe) Matches(query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(r.Name), q) {
		return true
	}
	for _, ing := range r.Ingredients {
		if strings.Contains(strings.ToLower(ing.Name), q) {
			return true
		}
	}
	return false
}

func checkSubItem(seen map[string]struct{}, id string, amount float64) error {
	if id == "" {
		return fmt.Errorf("missing id")
	}
	if _, dup := seen[id]; dup {
		return fmt.Errorf("duplicate id %q", id)
	}
	seen[id] = struct{}{}
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("%q has invalid amount %v", id, amount)
	}
	return nil
}
