package model

// ingredientKey identifies ingredients that can be combined. Matching is exact:
// no case folding, no trimming, no unit conversion.
type ingredientKey struct {
	name string
	unit string
}

// AggregateIngredients combines the ingredients of the selected recipes into
// one list. Ingredients with the same name and unit are merged by summing
// their amounts; the first one seen keeps its id. Output follows first
// occurrence order across recipes in selection order.
func AggregateIngredients(recipes []Recipe) []Ingredient {
	out := []Ingredient{}
	index := make(map[ingredientKey]int)
	for _, r := range recipes {
		for _, ing := range r.Ingredients {
			k := ingredientKey{name: ing.Name, unit: ing.Unit}
			if i, ok := index[k]; ok {
				out[i].Amount += ing.Amount
				continue
			}
			index[k] = len(out)
			out = append(out, ing)
		}
	}
	return out
}
