package service_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/larder/backend/internal/model"
	"github.com/pageza/larder/backend/internal/service"
	"github.com/pageza/larder/backend/internal/store"
)

func TestCreateFromRecipesAggregates(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	pancakes := f.recipe(t, "u1", "Pancakes", ing("Flour", "2", "cup"))
	cake := f.recipe(t, "u1", "Cake", ing("Flour", "1", "cup"), ing("Egg", "2", ""))

	list, err := f.lists.CreateFromRecipes(ctx, "u1", "Weekend", []string{pancakes.ID, cake.ID})
	require.NoError(t, err)

	require.Len(t, list.Items, 2)
	assert.Equal(t, "Flour", list.Items[0].Name)
	assert.Equal(t, 3.0, list.Items[0].Amount)
	assert.Equal(t, pancakes.Ingredients[0].ID, list.Items[0].ID, "first-seen id is kept")
	assert.Equal(t, "Egg", list.Items[1].Name)
	assert.Equal(t, 2.0, list.Items[1].Amount)
	for _, it := range list.Items {
		assert.False(t, it.Checked)
	}

	stored, err := f.lists.Get(ctx, "u1", list.ID)
	require.NoError(t, err)
	assert.Equal(t, list.Items, stored.Items)
	assert.False(t, stored.CreatedAt.IsZero())
}

func TestCreateFromRecipesCountsRepeatedSelectionOnce(t *testing.T) {
	f := setup(t)
	r := f.recipe(t, "u1", "Toast", ing("Bread", "2", "slice"))

	list, err := f.lists.CreateFromRecipes(context.Background(), "u1", "Breakfast", []string{r.ID, r.ID})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, 2.0, list.Items[0].Amount)
}

func TestCreateFromRecipesValidation(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	r := f.recipe(t, "u1", "Toast", ing("Bread", "2", "slice"))

	tests := []struct {
		name    string
		uid     string
		list    string
		recipes []string
		field   string
	}{
		{"empty name", "u1", "  ", []string{r.ID}, "name"},
		{"no recipes", "u1", "Weekly", nil, "recipe_ids"},
		{"unknown recipe", "u1", "Weekly", []string{"nope"}, "recipe_ids"},
		{"recipe of another user", "u2", "Weekly", []string{r.ID}, "recipe_ids"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.lists.CreateFromRecipes(ctx, tt.uid, tt.list, tt.recipes)
			var verr *service.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)

			lists, err := f.lists.List(ctx, tt.uid)
			require.NoError(t, err)
			assert.Empty(t, lists, "nothing persisted")
		})
	}
}

func TestOperationsRequireUser(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	_, err := f.lists.CreateFromRecipes(ctx, "", "Weekly", []string{"r"})
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
	_, err = f.lists.List(ctx, "")
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
	assert.ErrorIs(t, f.lists.ToggleItem(ctx, "", "l", "i"), service.ErrUnauthenticated)
	_, err = f.recipes.List(ctx, "", "")
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
	assert.ErrorIs(t, f.recipes.AddStep(ctx, "", "r", "Stir"), service.ErrUnauthenticated)
}

func newList(t *testing.T, f *fixture) *model.GroceryList {
	t.Helper()
	list, err := f.lists.Create(context.Background(), "u1", "Weekly", []model.Ingredient{
		{ID: "milk", Name: "Milk", Amount: 1, Unit: "l"},
		{ID: "eggs", Name: "Eggs", Amount: 12},
	})
	require.NoError(t, err)
	return list
}

func TestToggleItemIsAnInvolution(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	list := newList(t, f)

	require.NoError(t, f.lists.ToggleItem(ctx, "u1", list.ID, "milk"))
	got, err := f.lists.Get(ctx, "u1", list.ID)
	require.NoError(t, err)
	assert.True(t, got.Items[0].Checked)
	assert.Equal(t, list.Items[1], got.Items[1], "other items untouched")

	require.NoError(t, f.lists.ToggleItem(ctx, "u1", list.ID, "milk"))
	got, err = f.lists.Get(ctx, "u1", list.ID)
	require.NoError(t, err)
	assert.Equal(t, list.Items, got.Items)

	assert.ErrorIs(t, f.lists.ToggleItem(ctx, "u1", list.ID, "nope"), service.ErrItemNotFound)
	got, err = f.lists.Get(ctx, "u1", list.ID)
	require.NoError(t, err)
	assert.Equal(t, list.Items, got.Items, "an unknown item writes nothing")
	assert.ErrorIs(t, f.lists.ToggleItem(ctx, "u1", "missing", "milk"), store.ErrNotFound)

	// ok and error series for toggle_item, plus create.
	n, err := testutil.GatherAndCount(f.metrics.Registry(), "larder_mutations_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestAddItem(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	list := newList(t, f)

	item, err := f.lists.AddItem(ctx, "u1", list.ID, ing(" Butter ", "0.5", "kg"))
	require.NoError(t, err)
	assert.Equal(t, "Butter", item.Name)
	assert.Equal(t, 0.5, item.Amount)
	assert.False(t, item.Checked)
	assert.NotEmpty(t, item.ID)

	got, err := f.lists.Get(ctx, "u1", list.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 3)
	assert.Equal(t, *item, got.Items[2], "appended at the end")
	for _, existing := range list.Items {
		assert.NotEqual(t, existing.ID, item.ID)
	}
}

func TestAddItemValidation(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	list := newList(t, f)

	for _, in := range []struct {
		name, amount, field string
	}{
		{"", "1", "item.name"},
		{"Salt", "", "item.amount"},
		{"Salt", "a pinch", "item.amount"},
		{"Salt", "-1", "item.amount"},
	} {
		_, err := f.lists.AddItem(ctx, "u1", list.ID, ing(in.name, in.amount, ""))
		var verr *service.ValidationError
		require.ErrorAs(t, err, &verr, "%+v", in)
		assert.Equal(t, in.field, verr.Field)
	}

	got, err := f.lists.Get(ctx, "u1", list.ID)
	require.NoError(t, err)
	assert.Equal(t, list.Items, got.Items)
}

func TestDeleteItem(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	list := newList(t, f)

	require.NoError(t, f.lists.DeleteItem(ctx, "u1", list.ID, "nope"))
	got, err := f.lists.Get(ctx, "u1", list.ID)
	require.NoError(t, err)
	assert.Equal(t, list.Items, got.Items, "unknown id is a no-op")

	require.NoError(t, f.lists.DeleteItem(ctx, "u1", list.ID, "milk"))
	got, err = f.lists.Get(ctx, "u1", list.ID)
	require.NoError(t, err)
	assert.Equal(t, model.GroceryItems{list.Items[1]}, got.Items)
}

func TestRenameAndDeleteList(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	list := newList(t, f)

	var verr *service.ValidationError
	assert.ErrorAs(t, f.lists.Rename(ctx, "u1", list.ID, " "), &verr)
	require.NoError(t, f.lists.Rename(ctx, "u1", list.ID, "Party"))
	got, err := f.lists.Get(ctx, "u1", list.ID)
	require.NoError(t, err)
	assert.Equal(t, "Party", got.Name)

	require.NoError(t, f.lists.Delete(ctx, "u1", list.ID))
	_, err = f.lists.Get(ctx, "u1", list.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAggregatePreviewPersistsNothing(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	a := f.recipe(t, "u1", "A", ing("Rice", "1", "cup"))
	b := f.recipe(t, "u1", "B", ing("rice", "1", "cup"), ing("Rice", "2", "cup"))

	got, err := f.lists.Aggregate(ctx, "u1", []string{a.ID, b.ID})
	require.NoError(t, err)
	require.Len(t, got, 2, "matching is case-sensitive")
	assert.Equal(t, 3.0, got[0].Amount)
	assert.Equal(t, "rice", got[1].Name)

	lists, err := f.lists.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, lists)
}
