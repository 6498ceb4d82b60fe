package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/storefront/internal/auth/domain"
	customerdomain "github.com/smallbiznis/storefront/internal/customer/domain"
	"github.com/smallbiznis/storefront/pkg/db/pagination"
)

type customerRequest struct {
	FirstName  *string    `json:"first_name"`
	LastName   *string    `json:"last_name"`
	Email      *string    `json:"email"`
	Phone      *string    `json:"phone"`
	BirthDate  *string    `json:"birth_date"`
	Membership *string    `json:"membership"`
	UserID     nullableID `json:"user_id"`
}

func (s *Server) ListCustomers(c *gin.Context) {
	page, err := pageFromQuery(c, pagination.DefaultPageSize)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.customerSvc.List(c.Request.Context(), customerdomain.ListCustomerRequest{
		NamePrefix: queryFirst(c, "search"),
		Membership: queryFirst(c, "membership"),
		Page:       page,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pagination.BuildPage(resp.Customers, resp.Total, page, requestURL(c)))
}

func (s *Server) CreateCustomer(c *gin.Context) {
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	create := customerdomain.CreateCustomerRequest{
		Email:      req.Email,
		Phone:      req.Phone,
		BirthDate:  req.BirthDate,
		Membership: req.Membership,
	}
	if req.FirstName != nil {
		create.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		create.LastName = *req.LastName
	}
	if req.UserID.Set && req.UserID.Value != "" {
		userID, err := snowflake.ParseString(req.UserID.Value)
		if err != nil || userID <= 0 {
			AbortWithError(c, newValidationError("user_id", "invalid_user_id", "invalid user id"))
			return
		}
		if _, err := s.authsvc.GetUser(c.Request.Context(), userID); err != nil {
			if errors.Is(err, authdomain.ErrUserNotFound) {
				err = newValidationError("user_id", "invalid_user_id", "user does not exist")
			}
			AbortWithError(c, err)
			return
		}
		create.UserID = &userID
	}

	resp, err := s.customerSvc.Create(c.Request.Context(), create)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (s *Server) GetCustomerByID(c *gin.Context) {
	resp, err := s.customerSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) UpdateCustomer(c *gin.Context) {
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.UserID.Set {
		AbortWithError(c, newValidationError("user_id", "read_only", "user_id cannot be changed"))
		return
	}

	resp, err := s.customerSvc.Update(c.Request.Context(), customerdomain.UpdateCustomerRequest{
		ID:         strings.TrimSpace(c.Param("id")),
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		BirthDate:  req.BirthDate,
		Membership: req.Membership,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetMyCustomer returns the customer profile linked to the signed-in user.
func (s *Server) GetMyCustomer(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	resp, err := s.customerSvc.GetByUserID(c.Request.Context(), identity.UserID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func isCustomerValidationError(err error) bool {
	switch err {
	case customerdomain.ErrInvalidFirstName,
		customerdomain.ErrInvalidLastName,
		customerdomain.ErrInvalidEmail,
		customerdomain.ErrInvalidPhone,
		customerdomain.ErrInvalidBirthDate,
		customerdomain.ErrInvalidMembership:
		return true
	default:
		return false
	}
}
