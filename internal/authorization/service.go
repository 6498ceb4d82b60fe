package authorization

import (
	"context"

	authdomain "github.com/smallbiznis/storefront/internal/auth/domain"
)

// Service decides whether an authenticated identity may perform an action on an object.
type Service interface {
	Authorize(ctx context.Context, identity *authdomain.Identity, object string, action string) error
}
