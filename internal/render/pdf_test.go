package render

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/types"
)

func TestPDFRenderer(t *testing.T) {
	r := NewPDFRenderer("")
	assert.Equal(t, "application/pdf", r.ContentType())
	assert.Equal(t, "shopping_cart.pdf", r.FileName())

	t.Run("single page", func(t *testing.T) {
		out, err := r.Render([]types.ShoppingListItem{
			{Name: "flour", MeasurementUnit: "g", TotalAmount: 500},
			{Name: "milk", MeasurementUnit: "ml", TotalAmount: 250},
		})
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
		assert.Equal(t, 1, bytes.Count(out, []byte("/Type /Page\n")))
	})

	t.Run("long list breaks pages", func(t *testing.T) {
		items := make([]types.ShoppingListItem, 100)
		for i := range items {
			items[i] = types.ShoppingListItem{Name: fmt.Sprintf("item %03d", i), MeasurementUnit: "pcs", TotalAmount: int64(i + 1)}
		}
		out, err := r.Render(items)
		require.NoError(t, err)
		assert.Greater(t, bytes.Count(out, []byte("/Type /Page\n")), 1)
	})

	t.Run("missing font file fails", func(t *testing.T) {
		_, err := NewPDFRenderer("/nonexistent/font.ttf").Render(nil)
		assert.Error(t, err)
	})
}
