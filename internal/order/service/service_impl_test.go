package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/storefront/internal/clock"
	collectiondomain "github.com/smallbiznis/storefront/internal/collection/domain"
	customerdomain "github.com/smallbiznis/storefront/internal/customer/domain"
	customerrepo "github.com/smallbiznis/storefront/internal/customer/repository"
	"github.com/smallbiznis/storefront/internal/migration"
	"github.com/smallbiznis/storefront/internal/order/domain"
	"github.com/smallbiznis/storefront/internal/order/repository"
	"github.com/smallbiznis/storefront/internal/order/service"
	productdomain "github.com/smallbiznis/storefront/internal/product/domain"
	productrepo "github.com/smallbiznis/storefront/internal/product/repository"
	"github.com/smallbiznis/storefront/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db         *gorm.DB
	node       *snowflake.Node
	clock      *clock.FakeClock
	svc        domain.Service
	collection snowflake.ID
}

func setup(t *testing.T) fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(conn))

	node, err := snowflake.NewNode(17)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))

	c := collectiondomain.Collection{ID: node.Generate(), Title: "Grocery"}
	require.NoError(t, conn.Create(&c).Error)

	svc := service.New(service.Params{
		DB:           conn,
		Log:          zap.NewNop(),
		GenID:        node,
		Repo:         repository.Provide(),
		ProductRepo:  productrepo.Provide(),
		CustomerRepo: customerrepo.Provide(),
		Clock:        clk,
	})
	return fixture{db: conn, node: node, clock: clk, svc: svc, collection: c.ID}
}

func (f fixture) product(t *testing.T, title, unitPrice string) string {
	t.Helper()
	p := productdomain.Product{
		ID:           f.node.Generate(),
		Title:        title,
		Slug:         title,
		UnitPrice:    decimal.RequireFromString(unitPrice),
		Inventory:    100,
		LastUpdate:   f.clock.Now(),
		CollectionID: f.collection,
	}
	require.NoError(t, f.db.Create(&p).Error)
	return p.ID.String()
}

func (f fixture) reprice(t *testing.T, productID, unitPrice string) {
	t.Helper()
	id, err := snowflake.ParseString(productID)
	require.NoError(t, err)
	err = f.db.Model(&productdomain.Product{}).
		Where("id = ?", id).
		Update("unit_price", decimal.RequireFromString(unitPrice)).Error
	require.NoError(t, err)
}

func (f fixture) customer(t *testing.T, first string) string {
	t.Helper()
	c := customerdomain.Customer{ID: f.node.Generate(), FirstName: first, LastName: "Shopper", Membership: customerdomain.MembershipBronze}
	require.NoError(t, f.db.Create(&c).Error)
	return c.ID.String()
}

func line(product string, quantity int) domain.ItemInput {
	return domain.ItemInput{Product: product, Quantity: quantity}
}

func TestPlaceMergesLinesAndSnapshotsPrice(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	customer := f.customer(t, "Maria")
	bread := f.product(t, "bread", "2.50")
	milk := f.product(t, "milk", "1.20")

	order, err := f.svc.Place(ctx, domain.PlaceRequest{
		CustomerID: customer,
		Items:      []domain.ItemInput{line(bread, 2), line(milk, 1), line(bread, 1)},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, customer, order.Customer)
	assert.Equal(t, "Maria Shopper", order.CustomerName)
	assert.WithinDuration(t, f.clock.Now(), order.PlacedAt, time.Second)
	require.Len(t, order.Items, 2)

	byProduct := map[string]domain.ItemResponse{}
	for _, item := range order.Items {
		byProduct[item.Product] = item
	}
	assert.Equal(t, 3, byProduct[bread].Quantity)
	assert.Equal(t, "2.50", byProduct[bread].UnitPrice)
	assert.Equal(t, "7.50", byProduct[bread].TotalPrice)
	assert.Equal(t, "8.70", order.TotalPrice)

	f.reprice(t, bread, "9.99")

	got, err := f.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "8.70", got.TotalPrice)
}

func TestPlaceValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	customer := f.customer(t, "Ola")
	bread := f.product(t, "bread", "2.50")

	cases := []struct {
		name string
		req  domain.PlaceRequest
		want error
	}{
		{"missing customer", domain.PlaceRequest{Items: []domain.ItemInput{line(bread, 1)}}, domain.ErrInvalidCustomer},
		{"unknown customer", domain.PlaceRequest{CustomerID: f.node.Generate().String(), Items: []domain.ItemInput{line(bread, 1)}}, domain.ErrInvalidCustomer},
		{"no items", domain.PlaceRequest{CustomerID: customer}, domain.ErrInvalidItems},
		{"zero quantity", domain.PlaceRequest{CustomerID: customer, Items: []domain.ItemInput{line(bread, 0)}}, domain.ErrInvalidQuantity},
		{"quantity above line limit", domain.PlaceRequest{CustomerID: customer, Items: []domain.ItemInput{line(bread, domain.MaxQuantity+1)}}, domain.ErrInvalidQuantity},
		{"merged quantity above line limit", domain.PlaceRequest{CustomerID: customer, Items: []domain.ItemInput{line(bread, domain.MaxQuantity), line(bread, 1)}}, domain.ErrInvalidQuantity},
		{"malformed product", domain.PlaceRequest{CustomerID: customer, Items: []domain.ItemInput{line("abc", 1)}}, domain.ErrInvalidProduct},
		{"unknown product", domain.PlaceRequest{CustomerID: customer, Items: []domain.ItemInput{line(bread, 1), line(f.node.Generate().String(), 1)}}, domain.ErrInvalidProduct},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Place(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	// Failed placements leave nothing behind.
	var orders int64
	require.NoError(t, f.db.Model(&domain.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)
}

func TestReplaceItems(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	customer := f.customer(t, "Ike")
	bread := f.product(t, "bread", "2.50")
	milk := f.product(t, "milk", "1.20")
	eggs := f.product(t, "eggs", "3.00")

	order, err := f.svc.Place(ctx, domain.PlaceRequest{
		CustomerID: customer,
		Items:      []domain.ItemInput{line(bread, 1), line(milk, 1)},
	})
	require.NoError(t, err)
	require.Len(t, order.Items, 2)
	var breadLine, milkLine domain.ItemResponse
	for _, item := range order.Items {
		if item.Product == bread {
			breadLine = item
		} else {
			milkLine = item
		}
	}

	f.reprice(t, bread, "4.00")
	f.reprice(t, eggs, "3.50")

	updated, err := f.svc.ReplaceItems(ctx, order.ID, []domain.ItemInput{
		{ID: &breadLine.ID, Product: bread, Quantity: 4},
		line(eggs, 2),
	})
	require.NoError(t, err)
	require.Len(t, updated.Items, 2)

	byProduct := map[string]domain.ItemResponse{}
	for _, item := range updated.Items {
		byProduct[item.Product] = item
	}
	assert.NotContains(t, byProduct, milk)
	assert.Equal(t, breadLine.ID, byProduct[bread].ID)
	assert.Equal(t, 4, byProduct[bread].Quantity)
	assert.Equal(t, "2.50", byProduct[bread].UnitPrice, "kept line keeps its captured price")
	assert.Equal(t, "3.50", byProduct[eggs].UnitPrice)
	assert.Equal(t, "17.00", updated.TotalPrice)

	// Switching a line to another product captures the new product's price.
	switched, err := f.svc.ReplaceItems(ctx, order.ID, []domain.ItemInput{
		{ID: &breadLine.ID, Product: milk, Quantity: 1},
	})
	require.NoError(t, err)
	require.Len(t, switched.Items, 1)
	assert.Equal(t, "1.20", switched.Items[0].UnitPrice)

	_, err = f.svc.ReplaceItems(ctx, order.ID, []domain.ItemInput{{ID: &milkLine.ID, Product: milk, Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrInvalidItem)

	_, err = f.svc.ReplaceItems(ctx, order.ID, []domain.ItemInput{
		{ID: &breadLine.ID, Product: milk, Quantity: 1},
		{ID: &breadLine.ID, Product: milk, Quantity: 2},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidItem)

	_, err = f.svc.ReplaceItems(ctx, order.ID, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidItems)

	_, err = f.svc.ReplaceItems(ctx, f.node.Generate().String(), []domain.ItemInput{line(milk, 1)})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdatePaymentStatus(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	order, err := f.svc.Place(ctx, domain.PlaceRequest{
		CustomerID: f.customer(t, "Pat"),
		Items:      []domain.ItemInput{line(f.product(t, "tea", "5.00"), 1)},
	})
	require.NoError(t, err)

	updated, err := f.svc.UpdatePaymentStatus(ctx, order.ID, "c")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusComplete, updated.PaymentStatus)

	_, err = f.svc.UpdatePaymentStatus(ctx, order.ID, "X")
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentStatus)

	_, err = f.svc.UpdatePaymentStatus(ctx, "not-an-id", "F")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListByCustomerNewestFirst(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	alice := f.customer(t, "Alice")
	bob := f.customer(t, "Bob")
	tea := f.product(t, "tea", "5.00")

	var aliceOrders []string
	for i := 0; i < 3; i++ {
		order, err := f.svc.Place(ctx, domain.PlaceRequest{CustomerID: alice, Items: []domain.ItemInput{line(tea, 1)}})
		require.NoError(t, err)
		aliceOrders = append(aliceOrders, order.ID)
		f.clock.Advance(time.Hour)
	}
	_, err := f.svc.Place(ctx, domain.PlaceRequest{CustomerID: bob, Items: []domain.ItemInput{line(tea, 1)}})
	require.NoError(t, err)

	resp, err := f.svc.List(ctx, domain.ListRequest{CustomerID: alice})
	require.NoError(t, err)
	assert.EqualValues(t, 3, resp.Total)
	require.Len(t, resp.Orders, 3)
	assert.Equal(t, aliceOrders[2], resp.Orders[0].ID)
	assert.Equal(t, aliceOrders[0], resp.Orders[2].ID)
	assert.Empty(t, resp.Orders[0].Items)

	all, err := f.svc.List(ctx, domain.ListRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, all.Total)

	_, err = f.svc.List(ctx, domain.ListRequest{CustomerID: "abc"})
	assert.ErrorIs(t, err, domain.ErrInvalidCustomer)
}

func TestDeleteRemovesItems(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	order, err := f.svc.Place(ctx, domain.PlaceRequest{
		CustomerID: f.customer(t, "Dee"),
		Items:      []domain.ItemInput{line(f.product(t, "tea", "5.00"), 2)},
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, order.ID))

	_, err = f.svc.Get(ctx, order.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	var items int64
	require.NoError(t, f.db.Model(&domain.OrderItem{}).Count(&items).Error)
	assert.Zero(t, items)

	assert.ErrorIs(t, f.svc.Delete(ctx, order.ID), domain.ErrNotFound)
}
