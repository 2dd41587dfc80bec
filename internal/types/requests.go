package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pageza/larder/backend/internal/model"
)

// RegisterRequest represents the request body for creating an account
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents the request body for signing in
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Amount is user-entered quantity text. It accepts a JSON string or number
// so that parsing and its errors stay with the service.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("amount must be a string or number")
	}
	*a = Amount(n.String())
	return nil
}

// IngredientInput is an ingredient or grocery item as entered by the user.
type IngredientInput struct {
	Name   string `json:"name"`
	Amount Amount `json:"amount"`
	Unit   string `json:"unit"`
}

// CreateRecipeRequest represents the request body for creating a recipe
type CreateRecipeRequest struct {
	Name        string            `json:"name"`
	SourceType  model.SourceType  `json:"source_type"`
	Source      *string           `json:"source"`
	Ingredients []IngredientInput `json:"ingredients"`
	Steps       []string          `json:"steps"`
}

type RenameRequest struct {
	Name string `json:"name"`
}

type AddStepRequest struct {
	Step string `json:"step"`
}

// CreateGroceryListRequest creates a list from the ingredients of the given
// recipes, in selection order.
type CreateGroceryListRequest struct {
	Name      string   `json:"name"`
	RecipeIDs []string `json:"recipe_ids"`
}

type AggregateRequest struct {
	RecipeIDs []string `json:"recipe_ids"`
}

type SetAmountRequest struct {
	Amount Amount `json:"amount"`
}

// UpdateRecipeDraftRequest carries the fields of the recipe wizard's first
// two steps. Nil fields are left unchanged. Name belongs to step 1 and
// source_type/source to step 2; one request may only set one step's fields.
type UpdateRecipeDraftRequest struct {
	Name       *string           `json:"name"`
	SourceType *model.SourceType `json:"source_type"`
	Source     *string           `json:"source"`
}

type UpdateGroceryDraftRequest struct {
	Name *string `json:"name"`
}

type SourceImageResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
