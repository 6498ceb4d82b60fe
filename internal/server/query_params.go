package server

import (
	"encoding/json"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/storefront/pkg/db/pagination"
)

// pageFromQuery reads the 1-based "page" parameter. perPage <= 0 uses the default size.
func pageFromQuery(c *gin.Context, perPage int) (pagination.Pagination, error) {
	page := pagination.Pagination{Page: 1, PageSize: perPage}
	raw := strings.TrimSpace(c.Query("page"))
	if raw == "" {
		return page.Normalize(), nil
	}
	page = page.Normalize()
	parsed, err := strconv.Atoi(raw)
	// Pages past MaxInt/PageSize would overflow the row offset.
	if err != nil || parsed < 1 || parsed > math.MaxInt/page.PageSize {
		return page, newValidationError("page", "invalid_page", "invalid page")
	}
	page.Page = parsed
	return page, nil
}

// requestURL rebuilds the absolute URL of the current request for pagination links.
func requestURL(c *gin.Context) *url.URL {
	u := *c.Request.URL
	u.Host = c.Request.Host
	u.Scheme = "http"
	if c.Request.TLS != nil {
		u.Scheme = "https"
	}
	if proto := strings.TrimSpace(c.GetHeader("X-Forwarded-Proto")); proto != "" {
		u.Scheme = proto
	}
	return &u
}

func queryFirst(c *gin.Context, keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(c.Query(key)); value != "" {
			return value
		}
	}
	return ""
}

// nullableID is a JSON id field that distinguishes absent, null and set. Ids may be
// sent as numbers or strings.
type nullableID struct {
	Set   bool
	Value string
}

func (n *nullableID) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = ""
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	n.Value = num.String()
	return nil
}

// ptr returns nil when the field was absent and a pointer to "" when it was null.
func (n nullableID) ptr() *string {
	if !n.Set {
		return nil
	}
	value := n.Value
	return &value
}
