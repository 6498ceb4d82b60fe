package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/storefront/internal/authorization"
	customerdomain "github.com/smallbiznis/storefront/internal/customer/domain"
	orderdomain "github.com/smallbiznis/storefront/internal/order/domain"
	"github.com/smallbiznis/storefront/pkg/db/pagination"
)

type placeOrderRequest struct {
	Customer nullableID    `json:"customer"`
	Items    []itemRequest `json:"items"`
}

// itemRequest accepts ids as JSON numbers or strings.
type itemRequest struct {
	ID       *json.Number `json:"id"`
	Product  json.Number  `json:"product"`
	Quantity int          `json:"quantity"`
}

func toItemInputs(items []itemRequest) []orderdomain.ItemInput {
	out := make([]orderdomain.ItemInput, 0, len(items))
	for _, item := range items {
		input := orderdomain.ItemInput{
			Product:  item.Product.String(),
			Quantity: item.Quantity,
		}
		if item.ID != nil {
			id := item.ID.String()
			input.ID = &id
		}
		out = append(out, input)
	}
	return out
}

type updateOrderRequest struct {
	PaymentStatus *string `json:"payment_status"`
}

// ListOrders shows staff every order, optionally filtered by customer_id; everyone
// else only sees their own.
func (s *Server) ListOrders(c *gin.Context) {
	page, err := pageFromQuery(c, pagination.DefaultPageSize)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	customerID := queryFirst(c, "customer_id")
	if !s.can(c, authorization.ObjectOrder, authorization.ActionViewAll) {
		own, err := s.ownCustomerID(c)
		if errors.Is(err, customerdomain.ErrNotFound) {
			c.JSON(http.StatusOK, pagination.BuildPage([]orderdomain.Response{}, 0, page, requestURL(c)))
			return
		}
		if err != nil {
			AbortWithError(c, err)
			return
		}
		customerID = own
	}

	resp, err := s.orderSvc.List(c.Request.Context(), orderdomain.ListRequest{
		CustomerID: customerID,
		Page:       page,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pagination.BuildPage(resp.Orders, resp.Total, page, requestURL(c)))
}

// PlaceOrder places an order for the caller's own customer profile. Staff may place
// it on behalf of another customer.
func (s *Server) PlaceOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	customerID := ""
	if req.Customer.Set && req.Customer.Value != "" && s.can(c, authorization.ObjectOrder, authorization.ActionViewAll) {
		customerID = req.Customer.Value
	} else {
		own, err := s.ownCustomerID(c)
		if err != nil {
			if errors.Is(err, customerdomain.ErrNotFound) {
				err = orderdomain.ErrInvalidCustomer
			}
			AbortWithError(c, err)
			return
		}
		customerID = own
	}

	resp, err := s.orderSvc.Place(c.Request.Context(), orderdomain.PlaceRequest{
		CustomerID: customerID,
		Items:      toItemInputs(req.Items),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (s *Server) GetOrderByID(c *gin.Context) {
	resp, err := s.orderSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if !s.can(c, authorization.ObjectOrder, authorization.ActionViewAll) {
		own, err := s.ownCustomerID(c)
		if err != nil && !errors.Is(err, customerdomain.ErrNotFound) {
			AbortWithError(c, err)
			return
		}
		// Other customers' orders are reported as missing.
		if own == "" || own != resp.Customer {
			AbortWithError(c, ErrNotFound)
			return
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) UpdateOrder(c *gin.Context) {
	var req updateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.PaymentStatus == nil {
		AbortWithError(c, requiredFieldError("payment_status"))
		return
	}

	resp, err := s.orderSvc.UpdatePaymentStatus(c.Request.Context(), strings.TrimSpace(c.Param("id")), *req.PaymentStatus)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) DeleteOrder(c *gin.Context) {
	if err := s.orderSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) ownCustomerID(c *gin.Context) (string, error) {
	identity, ok := identityFromContext(c)
	if !ok {
		return "", ErrUnauthorized
	}
	customer, err := s.customerSvc.GetByUserID(c.Request.Context(), identity.UserID)
	if err != nil {
		return "", err
	}
	return customer.ID, nil
}
