package service

import (
	"fmt"
	"strings"

	"github.com/pageza/larder/backend/internal/model"
	"github.com/pageza/larder/backend/internal/types"
)

// requireName trims name and rejects it when nothing is left.
func requireName(field, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid(field, "is required")
	}
	return name, nil
}

// ParseIngredient validates user input and returns an ingredient with a fresh id.
func ParseIngredient(field string, in types.IngredientInput) (model.Ingredient, error) {
	name, err := requireName(field+".name", in.Name)
	if err != nil {
		return model.Ingredient{}, err
	}
	amount, err := model.ParseAmount(string(in.Amount))
	if err != nil {
		return model.Ingredient{}, invalid(field+".amount", "%v", err)
	}
	return model.Ingredient{
		ID:     model.NewID(),
		Name:   name,
		Amount: amount,
		Unit:   strings.TrimSpace(in.Unit),
	}, nil
}

func parseIngredients(in []types.IngredientInput) ([]model.Ingredient, error) {
	out := make([]model.Ingredient, 0, len(in))
	for i, raw := range in {
		ing, err := ParseIngredient(fmt.Sprintf("ingredients[%d]", i), raw)
		if err != nil {
			return nil, err
		}
		out = append(out, ing)
	}
	return out, nil
}

// dedupe keeps the first occurrence of every id, in order.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
