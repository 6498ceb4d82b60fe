package admin

import (
	"testing"

	"github.com/smallbiznis/storefront/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryProductAdmin(t *testing.T) {
	r := NewRegistry(nil)

	product, ok := r.Get("Product")
	require.True(t, ok)
	assert.Equal(t, []string{"title", "unit_price", "inventory_status", "collection_title"}, product.ListDisplay)
	assert.Equal(t, 10, product.ListPerPage)
	assert.True(t, product.IsEditable("unit_price"))
	assert.False(t, product.IsEditable("title"))

	_, ok = product.Action(ActionClearInventory)
	assert.True(t, ok)
	_, ok = product.Action("delete_everything")
	assert.False(t, ok)

	inventory, ok := product.Filter(FilterInventory)
	require.True(t, ok)
	require.Len(t, inventory.Options, 1)
	assert.Equal(t, "<10", inventory.Options[0].Value)
	assert.Equal(t, "Low", inventory.Options[0].Label)
	assert.Equal(t, "<10", r.LowInventoryValue())

	lastUpdate, ok := product.Filter(FilterLastUpdate)
	require.True(t, ok)
	assert.True(t, lastUpdate.Allows("past_7_days"))
	assert.False(t, lastUpdate.Allows("yesterday"))
}

func TestRegistryFollowsCatalogConfig(t *testing.T) {
	holder := config.NewStaticCatalogConfigHolder(config.CatalogConfig{LowInventoryThreshold: 5, ListPerPage: 25})
	r := NewRegistry(holder)

	customer, ok := r.Get(EntityCustomer)
	require.True(t, ok)
	assert.Equal(t, 25, customer.ListPerPage)
	assert.Equal(t, SearchStartsWith, customer.SearchMode)
	assert.Equal(t, "<5", r.LowInventoryValue())
}

func TestRegistryFollowsCatalogReload(t *testing.T) {
	holder := config.NewStaticCatalogConfigHolder(config.DefaultCatalogConfig())
	r := NewRegistry(holder)

	require.NoError(t, holder.Update(config.CatalogConfig{LowInventoryThreshold: 3, ListPerPage: 50}))

	product, ok := r.Get(EntityProduct)
	require.True(t, ok)
	assert.Equal(t, 50, product.ListPerPage)
	inventory, ok := product.Filter(FilterInventory)
	require.True(t, ok)
	require.Len(t, inventory.Options, 1)
	assert.Equal(t, "<3", inventory.Options[0].Value)
	assert.True(t, inventory.Allows("<3"))
	assert.False(t, inventory.Allows("<10"))
	assert.Equal(t, "<3", r.LowInventoryValue())

	assert.Error(t, holder.Update(config.CatalogConfig{LowInventoryThreshold: 0, ListPerPage: 50}))
	assert.Equal(t, "<3", r.LowInventoryValue())
}

func TestRegistryIsImmutable(t *testing.T) {
	r := NewRegistry(nil)

	product, _ := r.Get(EntityProduct)
	product.ListEditable[0] = "title"
	product.ListFilters[2].Options[0].Value = "<1000"

	again, _ := r.Get(EntityProduct)
	assert.True(t, again.IsEditable("unit_price"))
	assert.False(t, again.IsEditable("title"))
	assert.Equal(t, "<10", r.LowInventoryValue())
}

func TestRegistryEntities(t *testing.T) {
	r := NewRegistry(nil)

	var names []string
	for _, e := range r.Entities() {
		names = append(names, e.Entity)
	}
	assert.Equal(t, []string{EntityCollection, EntityCustomer, EntityOrder, EntityProduct}, names)

	_, ok := r.Get("invoice")
	assert.False(t, ok)
}

func TestLinks(t *testing.T) {
	assert.Equal(t, "/admin/store/order/?customer__id=42", OrdersLink("42"))
	assert.Equal(t, "/admin/store/product/?collection__id=7", ProductsLink("7"))
	assert.Equal(t, "3 products successfully updated", ClearInventoryMessage(3))
}
