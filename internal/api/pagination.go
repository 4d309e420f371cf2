package api

import (
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/apperror"
	"github.com/pageza/foodgram/backend/internal/types"
)

// parsePagination reads ?page= and ?limit=. Missing values fall back to defaults; limit is capped.
func (o Options) parsePagination(c *gin.Context) (types.Pagination, error) {
	p := types.Pagination{Page: 1, Limit: o.PageSize}
	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return p, apperror.ValidationFailed("page", "page must be a positive integer")
		}
		p.Page = page
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return p, apperror.ValidationFailed("limit", "limit must be a positive integer")
		}
		p.Limit = limit
	}
	if o.MaxPageSize > 0 && p.Limit > o.MaxPageSize {
		p.Limit = o.MaxPageSize
	}
	return p, nil
}

// newPage wraps results with the total count and absolute links to the neighbouring pages.
func newPage[T any](c *gin.Context, p types.Pagination, count int64, results []T) types.Page[T] {
	if results == nil {
		results = []T{}
	}
	out := types.Page[T]{Count: count, Results: results}
	if int64(p.Offset()+len(results)) < count {
		out.Next = pageURL(c, p.Page+1)
	}
	if p.Page > 1 {
		out.Previous = pageURL(c, p.Page-1)
	}
	return out
}

func pageURL(c *gin.Context, page int) *string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	q := c.Request.URL.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u := url.URL{Scheme: scheme, Host: c.Request.Host, Path: c.Request.URL.Path, RawQuery: q.Encode()}
	s := u.String()
	return &s
}

// queryInt reads an optional non-negative integer query parameter.
func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperror.ValidationFailed(name, name+" must be a non-negative integer")
	}
	return n, nil
}
