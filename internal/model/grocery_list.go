package model

import (
	"fmt"
	"time"
)

// GroceryList is a user's shopping list document, stored under
// users/{uid}/groceryLists/{id}.
type GroceryList struct {
	ID        string       `gorm:"type:varchar(36);primaryKey" json:"id" firestore:"id"`
	UserID    string       `gorm:"type:varchar(128);not null;index:idx_grocery_lists_user_created,priority:1" json:"user_id" firestore:"userId"`
	Name      string       `gorm:"size:255;not null" json:"name" firestore:"name"`
	Items     GroceryItems `gorm:"type:jsonb;not null;default:'[]'" json:"items" firestore:"items"`
	CreatedAt time.Time    `gorm:"index:idx_grocery_lists_user_created,priority:2,sort:desc" json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time    `json:"updated_at" firestore:"updatedAt"`
}

func (GroceryList) CollectionName() string { return "groceryLists" }

func (l *GroceryList) DocID() string       { return l.ID }
func (l *GroceryList) SetDocID(id string)  { l.ID = id }
func (l *GroceryList) SetOwner(uid string) { l.UserID = uid }

func (l *GroceryList) Stamp(now time.Time) {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now
}

func (l *GroceryList) Normalize() error {
	if l.Items == nil {
		l.Items = GroceryItems{}
	}
	seen := make(map[string]struct{}, len(l.Items))
	for _, it := range l.Items {
		if err := checkSubItem(seen, it.ID, it.Amount); err != nil {
			return fmt.Errorf("grocery list %s: item: %w", l.ID, err)
		}
	}
	return nil
}

// NewGroceryItems turns aggregated ingredients into unchecked list items.
// Ingredient ids are kept unless missing or already used by an earlier item.
func NewGroceryItems(ingredients []Ingredient) GroceryItems {
	items := make(GroceryItems, 0, len(ingredients))
	seen := make(map[string]struct{}, len(ingredients))
	for _, ing := range ingredients {
		id := ing.ID
		if _, dup := seen[id]; dup || id == "" {
			id = NewID()
		}
		seen[id] = struct{}{}
		items = append(items, GroceryItem{
			ID:     id,
			Name:   ing.Name,
			Amount: ing.Amount,
			Unit:   ing.Unit,
		})
	}
	return items
}
