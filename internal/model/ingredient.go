package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Ingredient is a named amount of something, owned by a recipe or a grocery list.
type Ingredient struct {
	ID     string  `json:"id" firestore:"id"`
	Name   string  `json:"name" firestore:"name"`
	Amount float64 `json:"amount" firestore:"amount"`
	Unit   string  `json:"unit" firestore:"unit"`
}

// GroceryItem is an ingredient on a shopping list.
type GroceryItem struct {
	ID      string  `json:"id" firestore:"id"`
	Name    string  `json:"name" firestore:"name"`
	Amount  float64 `json:"amount" firestore:"amount"`
	Unit    string  `json:"unit" firestore:"unit"`
	Checked bool    `json:"checked" firestore:"checked"`
}

// Ingredient returns the item without its checked state.
func (i GroceryItem) Ingredient() Ingredient {
	return Ingredient{ID: i.ID, Name: i.Name, Amount: i.Amount, Unit: i.Unit}
}

// NewID returns a fresh identifier for a document or a sub-item.
func NewID() string {
	return uuid.NewString()
}

// ParseAmount parses user input into a non-negative, finite amount.
func ParseAmount(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("amount is required")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("amount %q is not a number", raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("amount %q is not a finite number", raw)
	}
	if v < 0 {
		return 0, fmt.Errorf("amount must not be negative")
	}
	return v, nil
}

// Ingredients is stored as a JSONB array.
type Ingredients []Ingredient

// Value implements the driver.Valuer interface
func (a Ingredients) Value() (driver.Value, error) {
	return jsonbValue(a, len(a))
}

// Scan implements the sql.Scanner interface
func (a *Ingredients) Scan(value interface{}) error {
	*a = Ingredients{}
	return jsonbScan(value, a)
}

// GroceryItems is stored as a JSONB array.
type GroceryItems []GroceryItem

// Value implements the driver.Valuer interface
func (a GroceryItems) Value() (driver.Value, error) {
	return jsonbValue(a, len(a))
}

// Scan implements the sql.Scanner interface
func (a *GroceryItems) Scan(value interface{}) error {
	*a = GroceryItems{}
	return jsonbScan(value, a)
}

// Steps is an ordered list of instructions stored as a JSONB array.
type Steps []string

// Value implements the driver.Valuer interface
func (a Steps) Value() (driver.Value, error) {
	return jsonbValue(a, len(a))
}

// Scan implements the sql.Scanner interface
func (a *Steps) Scan(value interface{}) error {
	*a = Steps{}
	return jsonbScan(value, a)
}

func jsonbValue(v any, n int) (driver.Value, error) {
	if n == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonbScan(value interface{}, dst any) error {
	var bytes []byte
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("model: cannot scan %T into JSONB array", value)
	}
	if len(bytes) == 0 {
		return nil
	}
	return json.Unmarshal(bytes, dst)
}
