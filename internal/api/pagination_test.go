package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/apperror"
	"github.com/pageza/foodgram/backend/internal/types"
)

func testContext(target string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c
}

func TestParsePagination(t *testing.T) {
	opts := Options{PageSize: 6, MaxPageSize: 50}

	tests := []struct {
		target  string
		want    types.Pagination
		wantErr bool
	}{
		{target: "/recipes", want: types.Pagination{Page: 1, Limit: 6}},
		{target: "/recipes?page=3&limit=10", want: types.Pagination{Page: 3, Limit: 10}},
		{target: "/recipes?limit=500", want: types.Pagination{Page: 1, Limit: 50}},
		{target: "/recipes?page=0", wantErr: true},
		{target: "/recipes?page=x", wantErr: true},
		{target: "/recipes?limit=-1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			got, err := opts.parsePagination(testContext(tt.target))
			if tt.wantErr {
				assert.ErrorIs(t, err, apperror.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewPage(t *testing.T) {
	c := testContext("http://example.com/api/recipes?page=2&limit=2&tags=lunch")
	page := newPage(c, types.Pagination{Page: 2, Limit: 2}, 5, []int{3, 4})

	require.NotNil(t, page.Next)
	require.NotNil(t, page.Previous)
	assert.Equal(t, "http://example.com/api/recipes?limit=2&page=3&tags=lunch", *page.Next)
	assert.Equal(t, "http://example.com/api/recipes?limit=2&tags=lunch", *page.Previous)

	last := newPage(c, types.Pagination{Page: 3, Limit: 2}, 5, []int{5})
	assert.Nil(t, last.Next)

	empty := newPage[int](c, types.Pagination{Page: 1, Limit: 2}, 0, nil)
	assert.NotNil(t, empty.Results)
	assert.Nil(t, empty.Previous)
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		kind   string
	}{
		{apperror.ValidationFailed("name", "bad"), http.StatusBadRequest, "validation_error"},
		{apperror.Conflict("dup"), http.StatusBadRequest, "conflict"},
		{apperror.NotFound("recipe", "1"), http.StatusNotFound, "not_found"},
		{apperror.Forbidden("no"), http.StatusForbidden, "forbidden"},
		{apperror.Unauthorized("who"), http.StatusUnauthorized, "unauthorized"},
		{assert.AnError, http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			writeError(c, tt.err)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), `"error":"`+tt.kind+`"`)
			assert.NotContains(t, w.Body.String(), assert.AnError.Error())
		})
	}
}
