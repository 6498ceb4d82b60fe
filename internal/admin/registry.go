// Package admin holds the admin-site configuration for each store entity: which
// columns are listed, which fields can be edited inline, how lists are searched,
// filtered and ordered, and which bulk actions exist. The registry is built once
// at startup and never mutated afterwards; accessors hand out copies with the
// catalog tunables (page size, low inventory threshold) read at call time.
package admin

import (
	"fmt"
	"sort"
	"strings"

	"github.com/smallbiznis/storefront/internal/config"
	productdomain "github.com/smallbiznis/storefront/internal/product/domain"
)

const (
	EntityProduct    = "product"
	EntityCollection = "collection"
	EntityCustomer   = "customer"
	EntityOrder      = "order"
)

const (
	SearchContains   = "icontains"
	SearchStartsWith = "istartswith"
)

const (
	FilterCollectionID = "collection__id"
	FilterCustomerID   = "customer__id"
	FilterLastUpdate   = "last_update"
	FilterInventory    = "inventory"
)

const ActionClearInventory = "clear_inventory"

type FilterOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Filter is a list filter. Options is empty for free-valued filters such as ids.
type Filter struct {
	Name    string         `json:"name"`
	Label   string         `json:"label"`
	Options []FilterOption `json:"options,omitempty"`
}

type Action struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type EntityAdmin struct {
	Entity       string   `json:"entity"`
	ListDisplay  []string `json:"list_display"`
	ListEditable []string `json:"list_editable"`
	ListPerPage  int      `json:"list_per_page"`
	SearchFields []string `json:"search_fields"`
	SearchMode   string   `json:"search_mode,omitempty"`
	ListFilters  []Filter `json:"list_filter"`
	Ordering     []string `json:"ordering"`
	Actions      []Action `json:"actions"`
	Inlines      []string `json:"inlines,omitempty"`
	Autocomplete []string `json:"autocomplete_fields,omitempty"`
}

func (e EntityAdmin) IsEditable(field string) bool {
	for _, f := range e.ListEditable {
		if f == field {
			return true
		}
	}
	return false
}

func (e EntityAdmin) Action(name string) (Action, bool) {
	for _, a := range e.Actions {
		if a.Name == name {
			return a, true
		}
	}
	return Action{}, false
}

func (e EntityAdmin) Filter(name string) (Filter, bool) {
	for _, f := range e.ListFilters {
		if f.Name == name {
			return f, true
		}
	}
	return Filter{}, false
}

// FilterAllows reports whether value is a valid choice for a filter with options.
// Free-valued filters accept anything.
func (f Filter) Allows(value string) bool {
	if len(f.Options) == 0 {
		return true
	}
	for _, opt := range f.Options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

func (e EntityAdmin) clone() EntityAdmin {
	out := e
	out.ListDisplay = append([]string(nil), e.ListDisplay...)
	out.ListEditable = append([]string(nil), e.ListEditable...)
	out.SearchFields = append([]string(nil), e.SearchFields...)
	out.Ordering = append([]string(nil), e.Ordering...)
	out.Actions = append([]Action(nil), e.Actions...)
	out.Inlines = append([]string(nil), e.Inlines...)
	out.Autocomplete = append([]string(nil), e.Autocomplete...)
	out.ListFilters = make([]Filter, len(e.ListFilters))
	for i, f := range e.ListFilters {
		f.Options = append([]FilterOption(nil), f.Options...)
		out.ListFilters[i] = f
	}
	return out
}

type Registry struct {
	catalog  *config.CatalogConfigHolder
	entities map[string]EntityAdmin
}

func NewRegistry(catalog *config.CatalogConfigHolder) *Registry {
	lastUpdateOptions := make([]FilterOption, 0, len(productdomain.LastUpdateOptions))
	for _, opt := range productdomain.LastUpdateOptions {
		lastUpdateOptions = append(lastUpdateOptions, FilterOption{Value: opt, Label: lastUpdateLabel(opt)})
	}

	entities := []EntityAdmin{
		{
			Entity:       EntityProduct,
			ListDisplay:  []string{"title", "unit_price", "inventory_status", "collection_title"},
			ListEditable: []string{"unit_price"},
			SearchFields: []string{"title"},
			SearchMode:   SearchContains,
			ListFilters: []Filter{
				{Name: FilterCollectionID, Label: "collection"},
				{Name: FilterLastUpdate, Label: "last update", Options: lastUpdateOptions},
				{Name: FilterInventory, Label: "inventory"},
			},
			Ordering:     []string{"title"},
			Actions:      []Action{{Name: ActionClearInventory, Description: "Clear inventory"}},
			Autocomplete: []string{"collection"},
		},
		{
			Entity:       EntityCollection,
			ListDisplay:  []string{"title", "products_count"},
			SearchFields: []string{"title"},
			SearchMode:   SearchContains,
			Ordering:     []string{"title"},
		},
		{
			Entity:       EntityCustomer,
			ListDisplay:  []string{"first_name", "last_name", "membership", "orders"},
			ListEditable: []string{"membership"},
			SearchFields: []string{"first_name", "last_name"},
			SearchMode:   SearchStartsWith,
			Ordering:     []string{"first_name", "last_name"},
		},
		{
			Entity:       EntityOrder,
			ListDisplay:  []string{"id", "placed_at", "customer"},
			ListFilters:  []Filter{{Name: FilterCustomerID, Label: "customer"}},
			Ordering:     []string{"-placed_at"},
			Inlines:      []string{"items"},
			Autocomplete: []string{"customer"},
		},
	}

	r := &Registry{catalog: catalog, entities: make(map[string]EntityAdmin, len(entities))}
	for _, e := range entities {
		r.entities[e.Entity] = e
	}
	return r
}

func (r *Registry) Get(entity string) (EntityAdmin, bool) {
	e, ok := r.entities[strings.ToLower(strings.TrimSpace(entity))]
	if !ok {
		return EntityAdmin{}, false
	}
	return r.resolve(e, r.catalog.Get()), true
}

// Entities lists every registered entity sorted by name.
func (r *Registry) Entities() []EntityAdmin {
	cfg := r.catalog.Get()
	out := make([]EntityAdmin, 0, len(r.entities))
	for _, e := range r.entities {
		out = append(out, r.resolve(e, cfg))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Entity < out[j].Entity })
	return out
}

// LowInventoryValue is the filter value that selects products below the current threshold.
func (r *Registry) LowInventoryValue() string {
	return lowInventoryValue(r.catalog.Get())
}

// resolve copies e and fills in the values that follow catalog reloads.
func (r *Registry) resolve(e EntityAdmin, cfg config.CatalogConfig) EntityAdmin {
	out := e.clone()
	out.ListPerPage = cfg.ListPerPage
	for i := range out.ListFilters {
		if out.ListFilters[i].Name == FilterInventory {
			out.ListFilters[i].Options = []FilterOption{
				{Value: lowInventoryValue(cfg), Label: productdomain.InventoryLow},
			}
		}
	}
	return out
}

func lowInventoryValue(cfg config.CatalogConfig) string {
	return fmt.Sprintf("<%d", cfg.LowInventoryThreshold)
}

func ClearInventoryMessage(updated int64) string {
	return fmt.Sprintf("%d products successfully updated", updated)
}

func OrdersLink(customerID string) string {
	return "/admin/store/order/?" + FilterCustomerID + "=" + customerID
}

func ProductsLink(collectionID string) string {
	return "/admin/store/product/?" + FilterCollectionID + "=" + collectionID
}

func lastUpdateLabel(option string) string {
	switch option {
	case productdomain.LastUpdateToday:
		return "Today"
	case productdomain.LastUpdatePast7Days:
		return "Past 7 days"
	case productdomain.LastUpdateThisMonth:
		return "This month"
	case productdomain.LastUpdateThisYear:
		return "This year"
	default:
		return option
	}
}
