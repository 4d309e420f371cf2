package service_test

import (
	"context"
	"encoding/base64"
	"strings"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

// pngDataURI is a syntactically valid image data URI.
var pngDataURI = "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("\x89PNG\r\n\x1a\nfake"))

// memImageStore records saved and deleted images.
type memImageStore struct {
	mu      sync.Mutex
	saved   map[string][]byte
	deleted []string
}

func newMemImageStore() *memImageStore {
	return &memImageStore{saved: make(map[string][]byte)}
}

func (m *memImageStore) Save(_ context.Context, key string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	url := "/media/" + key
	m.saved[url] = data
	return url, nil
}

func (m *memImageStore) Delete(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.saved, url)
	m.deleted = append(m.deleted, url)
	return nil
}

func (m *memImageStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

// kitchen is a small catalogue shared by the recipe tests.
type kitchen struct {
	db        *gorm.DB
	author    *models.User
	other     *models.User
	breakfast *models.Tag
	lunch     *models.Tag
	flour     *models.Ingredient
	milk      *models.Ingredient
	eggs      *models.Ingredient
}

func newKitchen(t *testing.T) *kitchen {
	db := testhelpers.NewSQLiteDB(t)
	return &kitchen{
		db:        db,
		author:    testhelpers.CreateUser(t, db, "author"),
		other:     testhelpers.CreateUser(t, db, "other"),
		breakfast: testhelpers.CreateTag(t, db, "breakfast", models.ColorRed),
		lunch:     testhelpers.CreateTag(t, db, "lunch", models.ColorGreen),
		flour:     testhelpers.CreateIngredient(t, db, "flour", "g"),
		milk:      testhelpers.CreateIngredient(t, db, "milk", "ml"),
		eggs:      testhelpers.CreateIngredient(t, db, "eggs", "pcs"),
	}
}

func repeat(s string, n int) string {
	return strings.Repeat(s, n)
}
