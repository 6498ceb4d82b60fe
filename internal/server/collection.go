package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	collectiondomain "github.com/smallbiznis/storefront/internal/collection/domain"
	"github.com/smallbiznis/storefront/pkg/db/pagination"
)

type collectionRequest struct {
	Title           *string    `json:"title"`
	FeaturedProduct nullableID `json:"featured_product"`
}

func (s *Server) ListCollections(c *gin.Context) {
	page, err := pageFromQuery(c, pagination.DefaultPageSize)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.collectionSvc.List(c.Request.Context(), collectiondomain.ListRequest{
		Search: queryFirst(c, "search"),
		Page:   page,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pagination.BuildPage(resp.Items, resp.Total, page, requestURL(c)))
}

func (s *Server) CreateCollection(c *gin.Context) {
	var req collectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.Title == nil {
		AbortWithError(c, requiredFieldError("title"))
		return
	}

	resp, err := s.collectionSvc.Create(c.Request.Context(), collectiondomain.CreateRequest{
		Title:           *req.Title,
		FeaturedProduct: req.FeaturedProduct.ptr(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (s *Server) GetCollectionByID(c *gin.Context) {
	resp, err := s.collectionSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) UpdateCollection(c *gin.Context) {
	var req collectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.collectionSvc.Update(c.Request.Context(), collectiondomain.UpdateRequest{
		ID:              strings.TrimSpace(c.Param("id")),
		Title:           req.Title,
		FeaturedProduct: req.FeaturedProduct.ptr(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) DeleteCollection(c *gin.Context) {
	if err := s.collectionSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func isCollectionValidationError(err error) bool {
	switch err {
	case collectiondomain.ErrInvalidTitle,
		collectiondomain.ErrInvalidFeaturedProduct:
		return true
	default:
		return false
	}
}
