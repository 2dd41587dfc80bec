package model

// The functions below never modify their receiver. Each returns the complete
// replacement sequence that gets written back in a single field update.

// Toggle flips the checked state of the item with the given id.
func (a GroceryItems) Toggle(id string) GroceryItems {
	out := make(GroceryItems, len(a))
	copy(out, a)
	for i := range out {
		if out[i].ID == id {
			out[i].Checked = !out[i].Checked
			break
		}
	}
	return out
}

// Append adds an unchecked item to the end of the list.
func (a GroceryItems) Append(item GroceryItem) GroceryItems {
	item.Checked = false
	out := make(GroceryItems, 0, len(a)+1)
	out = append(out, a...)
	return append(out, item)
}

// Remove drops the item with the given id. Unknown ids leave the list unchanged.
func (a GroceryItems) Remove(id string) GroceryItems {
	out := make(GroceryItems, 0, len(a))
	for _, it := range a {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}

// Find returns the item with the given id.
func (a GroceryItems) Find(id string) (GroceryItem, bool) {
	for _, it := range a {
		if it.ID == id {
			return it, true
		}
	}
	return GroceryItem{}, false
}

func (a Ingredients) Append(ing Ingredient) Ingredients {
	out := make(Ingredients, 0, len(a)+1)
	out = append(out, a...)
	return append(out, ing)
}

// Remove drops the ingredient with the given id. Unknown ids leave the list unchanged.
func (a Ingredients) Remove(id string) Ingredients {
	out := make(Ingredients, 0, len(a))
	for _, ing := range a {
		if ing.ID != id {
			out = append(out, ing)
		}
	}
	return out
}

// SetAmount replaces the amount of the ingredient with the given id.
func (a Ingredients) SetAmount(id string, amount float64) (Ingredients, bool) {
	out := make(Ingredients, len(a))
	copy(out, a)
	for i := range out {
		if out[i].ID == id {
			out[i].Amount = amount
			return out, true
		}
	}
	return out, false
}

func (a Steps) Append(step string) Steps {
	out := make(Steps, 0, len(a)+1)
	out = append(out, a...)
	return append(out, step)
}

// RemoveAt drops the step at index i and shifts the rest left. Out of range
// indexes leave the steps unchanged.
func (a Steps) RemoveAt(i int) Steps {
	out := make(Steps, 0, len(a))
	for j, s := range a {
		if j != i {
			out = append(out, s)
		}
	}
	return out
}
