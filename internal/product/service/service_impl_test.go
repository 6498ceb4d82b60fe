package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/storefront/internal/clock"
	collectiondomain "github.com/smallbiznis/storefront/internal/collection/domain"
	"github.com/smallbiznis/storefront/internal/config"
	customerdomain "github.com/smallbiznis/storefront/internal/customer/domain"
	"github.com/smallbiznis/storefront/internal/migration"
	orderdomain "github.com/smallbiznis/storefront/internal/order/domain"
	"github.com/smallbiznis/storefront/internal/product/domain"
	"github.com/smallbiznis/storefront/internal/product/repository"
	"github.com/smallbiznis/storefront/internal/product/service"
	"github.com/smallbiznis/storefront/pkg/db"
	"github.com/smallbiznis/storefront/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
	svc   domain.Service
}

func setup(t *testing.T) fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(conn))

	node, err := snowflake.NewNode(11)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2024, 6, 14, 10, 0, 0, 0, time.UTC))

	svc := service.New(service.Params{
		DB:      conn,
		Log:     zap.NewNop(),
		GenID:   node,
		Repo:    repository.Provide(),
		Clock:   clk,
		Catalog: config.NewStaticCatalogConfigHolder(config.CatalogConfig{LowInventoryThreshold: 10, ListPerPage: 10}),
	})
	return fixture{db: conn, node: node, clock: clk, svc: svc}
}

func (f fixture) collection(t *testing.T, title string) string {
	t.Helper()
	c := collectiondomain.Collection{ID: f.node.Generate(), Title: title}
	require.NoError(t, f.db.Create(&c).Error)
	return c.ID.String()
}

func price(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func (f fixture) create(t *testing.T, title, collectionID, unitPrice string, inventory int) *domain.Response {
	t.Helper()
	resp, err := f.svc.Create(context.Background(), domain.CreateRequest{
		Title:      title,
		UnitPrice:  price(unitPrice),
		Inventory:  intPtr(inventory),
		Collection: collectionID,
	})
	require.NoError(t, err)
	return resp
}

func TestCreateDerivesSlugAndStatus(t *testing.T) {
	f := setup(t)
	collectionID := f.collection(t, "Garden")

	resp := f.create(t, "Garden Hose 20m", collectionID, "19.99", 4)
	assert.Equal(t, "garden-hose-20m", resp.Slug)
	assert.Equal(t, "19.99", resp.UnitPrice)
	assert.Equal(t, domain.InventoryLow, resp.InventoryStatus)
	assert.Equal(t, f.clock.Now(), resp.LastUpdate)
	assert.Equal(t, collectionID, resp.Collection)

	resp = f.create(t, "Shovel", collectionID, "25", 10)
	assert.Equal(t, domain.InventoryOK, resp.InventoryStatus)
}

func TestCreateValidation(t *testing.T) {
	f := setup(t)
	collectionID := f.collection(t, "Kitchen")

	cases := []struct {
		name string
		req  domain.CreateRequest
		want error
	}{
		{"blank title", domain.CreateRequest{Title: " ", UnitPrice: price("1"), Inventory: intPtr(1), Collection: collectionID}, domain.ErrInvalidTitle},
		{"zero price", domain.CreateRequest{Title: "Pan", UnitPrice: price("0"), Inventory: intPtr(1), Collection: collectionID}, domain.ErrInvalidUnitPrice},
		{"too many decimals", domain.CreateRequest{Title: "Pan", UnitPrice: price("1.005"), Inventory: intPtr(1), Collection: collectionID}, domain.ErrInvalidUnitPrice},
		{"price overflow", domain.CreateRequest{Title: "Pan", UnitPrice: price("10000"), Inventory: intPtr(1), Collection: collectionID}, domain.ErrInvalidUnitPrice},
		{"missing price", domain.CreateRequest{Title: "Pan", Inventory: intPtr(1), Collection: collectionID}, domain.ErrInvalidUnitPrice},
		{"negative inventory", domain.CreateRequest{Title: "Pan", UnitPrice: price("1"), Inventory: intPtr(-1), Collection: collectionID}, domain.ErrInvalidInventory},
		{"bad slug", domain.CreateRequest{Title: "Pan", Slug: strPtr("Not A Slug"), UnitPrice: price("1"), Inventory: intPtr(1), Collection: collectionID}, domain.ErrInvalidSlug},
		{"unknown collection", domain.CreateRequest{Title: "Pan", UnitPrice: price("1"), Inventory: intPtr(1), Collection: "77"}, domain.ErrInvalidCollection},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	var count int64
	require.NoError(t, f.db.Model(&domain.Product{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateAppliesOnlySuppliedFields(t *testing.T) {
	f := setup(t)
	collectionID := f.collection(t, "Office")
	created := f.create(t, "Pen", collectionID, "1.50", 30)

	f.clock.Advance(time.Hour)
	updated, err := f.svc.Update(context.Background(), domain.UpdateRequest{ID: created.ID, Title: strPtr("Blue Pen")})
	require.NoError(t, err)
	assert.Equal(t, "Blue Pen", updated.Title)
	assert.Equal(t, "1.50", updated.UnitPrice)
	assert.Equal(t, created.Slug, updated.Slug)
	assert.True(t, updated.LastUpdate.After(created.LastUpdate))

	_, err = f.svc.Update(context.Background(), domain.UpdateRequest{ID: created.ID, UnitPrice: price("0")})
	assert.ErrorIs(t, err, domain.ErrInvalidUnitPrice)

	_, err = f.svc.Update(context.Background(), domain.UpdateRequest{ID: "4242", Title: strPtr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListFilters(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	toys := f.collection(t, "Toys")
	books := f.collection(t, "Books")

	f.create(t, "Robot", toys, "40.00", 2)
	f.create(t, "Puzzle", toys, "12.00", 50)
	atlas := f.create(t, "Atlas", books, "30.00", 5)
	_, err := f.svc.Update(ctx, domain.UpdateRequest{ID: atlas.ID, Description: strPtr("maps of the robot age")})
	require.NoError(t, err)

	list := func(req domain.ListRequest) []string {
		t.Helper()
		resp, err := f.svc.List(ctx, req)
		require.NoError(t, err)
		titles := make([]string, 0, len(resp.Items))
		for _, item := range resp.Items {
			titles = append(titles, item.Title)
		}
		return titles
	}

	assert.ElementsMatch(t, []string{"Robot", "Puzzle"}, list(domain.ListRequest{CollectionID: toys}))
	assert.ElementsMatch(t, []string{"Robot", "Atlas"}, list(domain.ListRequest{UnitPriceGT: "20"}))
	assert.ElementsMatch(t, []string{"Puzzle"}, list(domain.ListRequest{UnitPriceLT: "20"}))
	assert.ElementsMatch(t, []string{"Robot", "Atlas"}, list(domain.ListRequest{Search: "ROBOT"}))
	assert.ElementsMatch(t, []string{"Robot"}, list(domain.ListRequest{TitleSearch: "robot"}))
	assert.ElementsMatch(t, []string{"Robot", "Atlas"}, list(domain.ListRequest{LowInventory: true}))
	assert.Equal(t, []string{"Robot", "Atlas", "Puzzle"}, list(domain.ListRequest{Ordering: "-unit_price"}))

	resp, err := f.svc.List(ctx, domain.ListRequest{CollectionID: books})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Books", resp.Items[0].CollectionTitle)

	_, err = f.svc.List(ctx, domain.ListRequest{UnitPriceGT: "cheap"})
	assert.ErrorIs(t, err, domain.ErrInvalidUnitPriceFilter)
	_, err = f.svc.List(ctx, domain.ListRequest{LastUpdate: "yesterday"})
	assert.ErrorIs(t, err, domain.ErrInvalidLastUpdateFilter)
}

func TestListSearchTakesWildcardsLiterally(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	deals := f.collection(t, "Deals")

	f.create(t, "a", deals, "1.00", 20)
	f.create(t, "zzz", deals, "1.00", 20)
	f.create(t, "100% cotton", deals, "1.00", 20)

	for _, req := range []domain.ListRequest{{Search: "%"}, {TitleSearch: "%"}} {
		resp, err := f.svc.List(ctx, req)
		require.NoError(t, err)
		assert.EqualValues(t, 1, resp.Total)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "100% cotton", resp.Items[0].Title)
	}

	resp, err := f.svc.List(ctx, domain.ListRequest{Search: "_"})
	require.NoError(t, err)
	assert.Zero(t, resp.Total)
}

func TestListLastUpdateWindow(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	collectionID := f.collection(t, "Misc")

	f.create(t, "Old", collectionID, "1.00", 1)
	f.clock.Advance(40 * 24 * time.Hour)
	f.create(t, "New", collectionID, "1.00", 1)

	resp, err := f.svc.List(ctx, domain.ListRequest{LastUpdate: domain.LastUpdateToday, Page: pagination.Pagination{Page: 1}})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "New", resp.Items[0].Title)

	resp, err = f.svc.List(ctx, domain.ListRequest{LastUpdate: domain.LastUpdateThisYear})
	require.NoError(t, err)
	assert.Len(t, resp.Items, 2)
}

func TestDeleteProtectedByOrderItems(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	collectionID := f.collection(t, "Audio")
	sold := f.create(t, "Speaker", collectionID, "99.00", 3)
	unsold := f.create(t, "Cable", collectionID, "5.00", 3)

	customer := customerdomain.Customer{ID: f.node.Generate(), FirstName: "Ann", LastName: "Lee", Membership: customerdomain.MembershipBronze}
	require.NoError(t, f.db.Create(&customer).Error)
	order := orderdomain.Order{ID: f.node.Generate(), PlacedAt: f.clock.Now(), PaymentStatus: orderdomain.PaymentStatusPending, CustomerID: customer.ID}
	require.NoError(t, f.db.Create(&order).Error)
	soldID, err := snowflake.ParseString(sold.ID)
	require.NoError(t, err)
	item := orderdomain.OrderItem{ID: f.node.Generate(), OrderID: order.ID, ProductID: soldID, Quantity: 1, UnitPrice: decimal.RequireFromString("99.00")}
	require.NoError(t, f.db.Create(&item).Error)

	assert.ErrorIs(t, f.svc.Delete(ctx, sold.ID), domain.ErrProductProtected)
	_, err = f.svc.Get(ctx, sold.ID)
	assert.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, unsold.ID))
	_, err = f.svc.Get(ctx, unsold.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteClearsFeaturedProduct(t *testing.T) {
	f := setup(t)
	collectionID := f.collection(t, "Shoes")
	product := f.create(t, "Boot", collectionID, "80.00", 2)

	productID, err := snowflake.ParseString(product.ID)
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&collectiondomain.Collection{}).
		Where("id = ?", collectionID).
		Update("featured_product_id", productID).Error)

	require.NoError(t, f.svc.Delete(context.Background(), product.ID))

	var c collectiondomain.Collection
	require.NoError(t, f.db.First(&c, "id = ?", collectionID).Error)
	assert.Nil(t, c.FeaturedProductID)
}

func TestClearInventory(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	collectionID := f.collection(t, "Hardware")
	a := f.create(t, "Nails", collectionID, "2.00", 100)
	b := f.create(t, "Screws", collectionID, "3.00", 7)

	f.clock.Advance(time.Minute)
	updated, err := f.svc.ClearInventory(ctx, []string{a.ID, b.ID, a.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated)

	got, err := f.svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Inventory)
	assert.Equal(t, domain.InventoryLow, got.InventoryStatus)
	assert.WithinDuration(t, f.clock.Now(), got.LastUpdate, time.Second)

	_, err = f.svc.ClearInventory(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidSelection)
	_, err = f.svc.ClearInventory(ctx, []string{"nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidSelection)
}
