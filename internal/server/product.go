package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	productdomain "github.com/smallbiznis/storefront/internal/product/domain"
	"github.com/smallbiznis/storefront/pkg/db/pagination"
)

// productRequest accepts the collection id as a JSON number or string.
type productRequest struct {
	Title       *string          `json:"title"`
	Slug        *string          `json:"slug"`
	Description *string          `json:"description"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	Inventory   *int             `json:"inventory"`
	Collection  *json.Number     `json:"collection"`
}

func (r productRequest) createRequest() productdomain.CreateRequest {
	req := productdomain.CreateRequest{
		Slug:        r.Slug,
		Description: r.Description,
		UnitPrice:   r.UnitPrice,
		Inventory:   r.Inventory,
	}
	if r.Title != nil {
		req.Title = *r.Title
	}
	if r.Collection != nil {
		req.Collection = r.Collection.String()
	}
	return req
}

func (r productRequest) missingRequired() error {
	switch {
	case r.Title == nil:
		return requiredFieldError("title")
	case r.UnitPrice == nil:
		return requiredFieldError("unit_price")
	case r.Inventory == nil:
		return requiredFieldError("inventory")
	case r.Collection == nil:
		return requiredFieldError("collection")
	default:
		return nil
	}
}

func (s *Server) ListProducts(c *gin.Context) {
	page, err := pageFromQuery(c, pagination.DefaultPageSize)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.productSvc.List(c.Request.Context(), productdomain.ListRequest{
		CollectionID: queryFirst(c, "collection_id"),
		UnitPriceGT:  queryFirst(c, "unit_price__gt"),
		UnitPriceLT:  queryFirst(c, "unit_price__lt"),
		Search:       queryFirst(c, "search"),
		Ordering:     queryFirst(c, "ordering"),
		Page:         page,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pagination.BuildPage(resp.Items, resp.Total, page, requestURL(c)))
}

func (s *Server) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if err := req.missingRequired(); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.productSvc.Create(c.Request.Context(), req.createRequest())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (s *Server) GetProductByID(c *gin.Context) {
	resp, err := s.productSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) UpdateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := productdomain.UpdateRequest{
		ID:          strings.TrimSpace(c.Param("id")),
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		UnitPrice:   req.UnitPrice,
		Inventory:   req.Inventory,
	}
	if req.Collection != nil {
		collection := req.Collection.String()
		update.Collection = &collection
	}

	resp, err := s.productSvc.Update(c.Request.Context(), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) ReplaceProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if err := req.missingRequired(); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.productSvc.Replace(c.Request.Context(), strings.TrimSpace(c.Param("id")), req.createRequest())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) DeleteProduct(c *gin.Context) {
	if err := s.productSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func isProductValidationError(err error) bool {
	switch err {
	case productdomain.ErrInvalidTitle,
		productdomain.ErrInvalidSlug,
		productdomain.ErrInvalidUnitPrice,
		productdomain.ErrInvalidInventory,
		productdomain.ErrInvalidCollection,
		productdomain.ErrInvalidUnitPriceFilter,
		productdomain.ErrInvalidLastUpdateFilter,
		productdomain.ErrInvalidSelection:
		return true
	default:
		return false
	}
}
