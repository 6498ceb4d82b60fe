package server

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/storefront/internal/admin"
	collectiondomain "github.com/smallbiznis/storefront/internal/collection/domain"
	customerdomain "github.com/smallbiznis/storefront/internal/customer/domain"
	orderdomain "github.com/smallbiznis/storefront/internal/order/domain"
	productdomain "github.com/smallbiznis/storefront/internal/product/domain"
	"github.com/smallbiznis/storefront/pkg/db/pagination"
)

// adminList is a changelist page: the registry columns plus the paginated rows.
type adminList[T any] struct {
	Entity  string   `json:"entity"`
	Columns []string `json:"columns"`
	pagination.Page[T]
}

type countLink struct {
	Count int64  `json:"count"`
	URL   string `json:"url"`
}

type adminCustomerRow struct {
	ID         string    `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Membership string    `json:"membership"`
	Orders     countLink `json:"orders"`
}

type adminCollectionRow struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	ProductsCount countLink `json:"products_count"`
}

type adminActionRequest struct {
	IDs []json.Number `json:"ids"`
}

type adminOrderItemsRequest struct {
	Items []itemRequest `json:"items"`
}

func (s *Server) ListAdminEntities(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"entities": s.adminRegistry.Entities()})
}

func (s *Server) adminEntity(c *gin.Context, entity string) (admin.EntityAdmin, bool) {
	e, ok := s.adminRegistry.Get(entity)
	if !ok {
		AbortWithError(c, ErrNotFound)
		return admin.EntityAdmin{}, false
	}
	return e, true
}

func (s *Server) AdminListProducts(c *gin.Context) {
	entity, ok := s.adminEntity(c, admin.EntityProduct)
	if !ok {
		return
	}
	page, err := pageFromQuery(c, entity.ListPerPage)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	req := productdomain.ListRequest{
		CollectionID: queryFirst(c, admin.FilterCollectionID),
		TitleSearch:  queryFirst(c, "q", "search"),
		Ordering:     strings.Join(entity.Ordering, ","),
		Page:         page,
	}
	if value := queryFirst(c, admin.FilterLastUpdate); value != "" {
		if err := checkFilter(entity, admin.FilterLastUpdate, value); err != nil {
			AbortWithError(c, err)
			return
		}
		req.LastUpdate = value
	}
	if value := queryFirst(c, admin.FilterInventory); value != "" {
		if err := checkFilter(entity, admin.FilterInventory, value); err != nil {
			AbortWithError(c, err)
			return
		}
		req.LowInventory = value == s.adminRegistry.LowInventoryValue()
	}

	resp, err := s.productSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, adminList[productdomain.Response]{
		Entity:  entity.Entity,
		Columns: entity.ListDisplay,
		Page:    pagination.BuildPage(resp.Items, resp.Total, page, requestURL(c)),
	})
}

// AdminUpdateProduct is the changelist inline edit; only registry-editable fields are accepted.
func (s *Server) AdminUpdateProduct(c *gin.Context) {
	entity, ok := s.adminEntity(c, admin.EntityProduct)
	if !ok {
		return
	}
	fields, err := bindInlineEdit(c, entity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	update := productdomain.UpdateRequest{ID: strings.TrimSpace(c.Param("id"))}
	if raw, ok := fields["unit_price"]; ok {
		var price decimal.Decimal
		if err := json.Unmarshal(raw, &price); err != nil {
			AbortWithError(c, productdomain.ErrInvalidUnitPrice)
			return
		}
		update.UnitPrice = &price
	}

	resp, err := s.productSvc.Update(c.Request.Context(), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) AdminProductAction(c *gin.Context) {
	entity, ok := s.adminEntity(c, admin.EntityProduct)
	if !ok {
		return
	}
	action, ok := entity.Action(strings.TrimSpace(c.Param("action")))
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	var req adminActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	ids := make([]string, 0, len(req.IDs))
	for _, id := range req.IDs {
		ids = append(ids, id.String())
	}

	switch action.Name {
	case admin.ActionClearInventory:
		updated, err := s.productSvc.ClearInventory(c.Request.Context(), ids)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"action":  action.Name,
			"updated": updated,
			"message": admin.ClearInventoryMessage(updated),
		})
	default:
		AbortWithError(c, ErrNotFound)
	}
}

func (s *Server) AdminListCollections(c *gin.Context) {
	entity, ok := s.adminEntity(c, admin.EntityCollection)
	if !ok {
		return
	}
	page, err := pageFromQuery(c, entity.ListPerPage)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.collectionSvc.List(c.Request.Context(), collectiondomain.ListRequest{
		Search:   queryFirst(c, "q", "search"),
		Ordering: strings.Join(entity.Ordering, ","),
		Page:     page,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	rows := make([]adminCollectionRow, 0, len(resp.Items))
	for _, item := range resp.Items {
		rows = append(rows, adminCollectionRow{
			ID:    item.ID,
			Title: item.Title,
			ProductsCount: countLink{
				Count: item.ProductsCount,
				URL:   admin.ProductsLink(item.ID),
			},
		})
	}

	c.JSON(http.StatusOK, adminList[adminCollectionRow]{
		Entity:  entity.Entity,
		Columns: entity.ListDisplay,
		Page:    pagination.BuildPage(rows, resp.Total, page, requestURL(c)),
	})
}

func (s *Server) AdminListCustomers(c *gin.Context) {
	entity, ok := s.adminEntity(c, admin.EntityCustomer)
	if !ok {
		return
	}
	page, err := pageFromQuery(c, entity.ListPerPage)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.customerSvc.List(c.Request.Context(), customerdomain.ListCustomerRequest{
		NamePrefix: queryFirst(c, "q", "search"),
		Page:       page,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	rows := make([]adminCustomerRow, 0, len(resp.Customers))
	for _, item := range resp.Customers {
		rows = append(rows, toAdminCustomerRow(item))
	}

	c.JSON(http.StatusOK, adminList[adminCustomerRow]{
		Entity:  entity.Entity,
		Columns: entity.ListDisplay,
		Page:    pagination.BuildPage(rows, resp.Total, page, requestURL(c)),
	})
}

func (s *Server) AdminUpdateCustomer(c *gin.Context) {
	entity, ok := s.adminEntity(c, admin.EntityCustomer)
	if !ok {
		return
	}
	fields, err := bindInlineEdit(c, entity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	update := customerdomain.UpdateCustomerRequest{ID: strings.TrimSpace(c.Param("id"))}
	if raw, ok := fields["membership"]; ok {
		var membership string
		if err := json.Unmarshal(raw, &membership); err != nil {
			AbortWithError(c, customerdomain.ErrInvalidMembership)
			return
		}
		update.Membership = &membership
	}

	resp, err := s.customerSvc.Update(c.Request.Context(), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toAdminCustomerRow(*resp))
}

func (s *Server) AdminListOrders(c *gin.Context) {
	entity, ok := s.adminEntity(c, admin.EntityOrder)
	if !ok {
		return
	}
	page, err := pageFromQuery(c, entity.ListPerPage)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.orderSvc.List(c.Request.Context(), orderdomain.ListRequest{
		CustomerID: queryFirst(c, admin.FilterCustomerID),
		Page:       page,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, adminList[orderdomain.Response]{
		Entity:  entity.Entity,
		Columns: entity.ListDisplay,
		Page:    pagination.BuildPage(resp.Orders, resp.Total, page, requestURL(c)),
	})
}

func (s *Server) AdminGetOrder(c *gin.Context) {
	resp, err := s.orderSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// AdminReplaceOrderItems saves the inline item set of an order.
func (s *Server) AdminReplaceOrderItems(c *gin.Context) {
	var req adminOrderItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.orderSvc.ReplaceItems(c.Request.Context(), strings.TrimSpace(c.Param("id")), toItemInputs(req.Items))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// bindInlineEdit decodes a flat JSON object and rejects fields the entity does not list as editable.
func bindInlineEdit(c *gin.Context, entity admin.EntityAdmin) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := c.ShouldBindJSON(&fields); err != nil || len(fields) == 0 {
		return nil, invalidRequestError()
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs ValidationErrors
	for _, name := range names {
		if !entity.IsEditable(name) {
			errs.Errors = append(errs.Errors, ValidationError{
				Field:   name,
				Code:    "not_editable",
				Message: name + " cannot be edited from the list view",
			})
		}
	}
	if len(errs.Errors) > 0 {
		return nil, &errs
	}
	return fields, nil
}

func checkFilter(entity admin.EntityAdmin, name, value string) error {
	filter, ok := entity.Filter(name)
	if !ok || !filter.Allows(value) {
		return newValidationError(name, "invalid_filter", "invalid filter value")
	}
	return nil
}

func toAdminCustomerRow(resp customerdomain.Response) adminCustomerRow {
	return adminCustomerRow{
		ID:         resp.ID,
		FirstName:  resp.FirstName,
		LastName:   resp.LastName,
		Membership: resp.Membership,
		Orders: countLink{
			Count: resp.OrdersCount,
			URL:   admin.OrdersLink(resp.ID),
		},
	}
}
