package option

import (
	"strings"

	"github.com/smallbiznis/storefront/pkg/db/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QueryOption mutates a gorm statement before execution.
type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type queryOptionFunc func(db *gorm.DB) *gorm.DB

func (f queryOptionFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

func ApplyPagination(page pagination.Pagination) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Offset(page.Offset()).Limit(page.Limit())
	})
}

type SortBy struct {
	Column string
	Desc   bool
}

// WithQuerySortBy resolves sort_by/order_by query params against an allow list.
func WithQuerySortBy(sortBy, orderBy string, allowed map[string]bool) *SortBy {
	column := strings.ToLower(strings.TrimSpace(sortBy))
	if column == "" || !allowed[column] {
		return nil
	}
	return &SortBy{
		Column: column,
		Desc:   strings.EqualFold(strings.TrimSpace(orderBy), "desc"),
	}
}

// ParseOrdering resolves a "field" / "-field" ordering param; allowed maps the public
// field name to the SQL column.
func ParseOrdering(ordering string, allowed map[string]string) *SortBy {
	value := strings.TrimSpace(ordering)
	desc := strings.HasPrefix(value, "-")
	value = strings.TrimPrefix(value, "-")
	column, ok := allowed[value]
	if value == "" || !ok {
		return nil
	}
	return &SortBy{Column: column, Desc: desc}
}

// ParseOrderings resolves a comma separated ordering such as "first_name,-last_name".
// Unknown fields are skipped.
func ParseOrderings(ordering string, allowed map[string]string) []SortBy {
	var out []SortBy
	for _, part := range strings.Split(ordering, ",") {
		if sort := ParseOrdering(part, allowed); sort != nil {
			out = append(out, *sort)
		}
	}
	return out
}

// WithOrdering applies every resolvable field of ordering, in order.
func WithOrdering(ordering string, allowed map[string]string) QueryOption {
	sorts := ParseOrderings(ordering, allowed)
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		for i := range sorts {
			db = WithSortBy(&sorts[i]).Apply(db)
		}
		return db
	})
}

func WithSortBy(sort *SortBy) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if sort == nil {
			return db
		}
		return db.Order(clause.OrderByColumn{
			Column: clause.Column{Name: sort.Column, Raw: true},
			Desc:   sort.Desc,
		})
	})
}

// LikeEscape is the escape character paired with Contains and StartsWith patterns.
// Use it as `LIKE ? ESCAPE '!'`; a backslash is not portable across dialects.
const LikeEscape = "!"

var likeEscaper = strings.NewReplacer(LikeEscape, LikeEscape+LikeEscape, "%", LikeEscape+"%", "_", LikeEscape+"_")

// Contains returns a LIKE pattern matching term anywhere, with wildcards in term taken literally.
func Contains(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// StartsWith returns a LIKE pattern matching values that begin with term.
func StartsWith(term string) string {
	return likeEscaper.Replace(term) + "%"
}
