package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/apperror"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

type stubRenderer struct {
	got []types.ShoppingListItem
	err error
}

func (r *stubRenderer) Render(items []types.ShoppingListItem) ([]byte, error) {
	r.got = items
	return []byte("rendered"), r.err
}

func (r *stubRenderer) ContentType() string { return "text/plain" }
func (r *stubRenderer) FileName() string    { return "list.txt" }

func TestShoppingListAggregate(t *testing.T) {
	ctx := context.Background()
	k := newKitchen(t)
	cart := service.NewShoppingCartService(k.db)
	svc := service.NewShoppingListService(k.db, &stubRenderer{})

	_, err := svc.Aggregate(ctx, k.other.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Equal(t, service.ErrEmptyShoppingCart, err)

	flourKg := testhelpers.CreateIngredient(t, k.db, "flour", "kg")
	pancakes := testhelpers.CreateRecipe(t, k.db, k.author, "Pancakes", map[*models.Ingredient]int{k.flour: 200, k.milk: 300})
	bread := testhelpers.CreateRecipe(t, k.db, k.author, "Bread", map[*models.Ingredient]int{k.flour: 500, flourKg: 1})
	// not in the cart
	testhelpers.CreateRecipe(t, k.db, k.author, "Omelette", map[*models.Ingredient]int{k.eggs: 3})

	for _, r := range []*models.Recipe{pancakes, bread} {
		_, err := cart.Add(ctx, k.other.ID, r.ID)
		require.NoError(t, err)
	}
	// another user's cart does not leak in
	_, err = cart.Add(ctx, k.author.ID, pancakes.ID)
	require.NoError(t, err)

	items, err := svc.Aggregate(ctx, k.other.ID)
	require.NoError(t, err)
	assert.Equal(t, []types.ShoppingListItem{
		{Name: "flour", MeasurementUnit: "g", TotalAmount: 700},
		{Name: "flour", MeasurementUnit: "kg", TotalAmount: 1},
		{Name: "milk", MeasurementUnit: "ml", TotalAmount: 300},
	}, items)
}

func TestShoppingListExport(t *testing.T) {
	ctx := context.Background()
	k := newKitchen(t)
	recipe := testhelpers.CreateRecipe(t, k.db, k.author, "Porridge", map[*models.Ingredient]int{k.milk: 250})
	_, err := service.NewShoppingCartService(k.db).Add(ctx, k.other.ID, recipe.ID)
	require.NoError(t, err)

	renderer := &stubRenderer{}
	doc, err := service.NewShoppingListService(k.db, renderer).Export(ctx, k.other.ID)
	require.NoError(t, err)
	assert.Equal(t, "rendered", string(doc.Content))
	assert.Equal(t, "text/plain", doc.ContentType)
	assert.Equal(t, "list.txt", doc.FileName)
	assert.Len(t, renderer.got, 1)

	renderer.err = errors.New("boom")
	_, err = service.NewShoppingListService(k.db, renderer).Export(ctx, k.other.ID)
	assert.Error(t, err)

	_, err = service.NewShoppingListService(k.db, renderer).Export(ctx, k.author.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
