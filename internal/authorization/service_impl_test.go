package authorization

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/storefront/internal/auth/domain"
	"github.com/smallbiznis/storefront/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	enforcer, err := NewEnforcer(conn)
	require.NoError(t, err)

	// Seeding is idempotent against an already populated policy table.
	_, err = NewEnforcer(conn)
	require.NoError(t, err)

	return NewService(Params{Log: zap.NewNop(), Enforcer: enforcer})
}

func TestAuthorize(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	staff := &authdomain.Identity{UserID: snowflake.ID(1), Username: "staff", IsStaff: true}
	user := &authdomain.Identity{UserID: snowflake.ID(2), Username: "user"}

	cases := []struct {
		name     string
		identity *authdomain.Identity
		object   string
		action   string
		want     error
	}{
		{"staff creates product", staff, ObjectProduct, ActionCreate, nil},
		{"staff deletes collection", staff, ObjectCollection, ActionDelete, nil},
		{"staff runs admin action", staff, ObjectAdmin, ActionAct, nil},
		{"staff inherits order create", staff, ObjectOrder, ActionCreate, nil},
		{"user places order", user, ObjectOrder, ActionCreate, nil},
		{"user views own customer", user, ObjectCustomer, ActionView, nil},
		{"user cannot create product", user, ObjectProduct, ActionCreate, ErrForbidden},
		{"user cannot see all orders", user, ObjectOrder, ActionViewAll, ErrForbidden},
		{"user cannot open admin", user, ObjectAdmin, ActionView, ErrForbidden},
		{"anonymous is forbidden", nil, ObjectProduct, ActionCreate, ErrForbidden},
		{"blank object", staff, " ", ActionCreate, ErrInvalidObject},
		{"blank action", staff, ObjectProduct, "", ErrInvalidAction},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Authorize(ctx, tc.identity, tc.object, tc.action)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
