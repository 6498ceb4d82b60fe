package authorization

import (
	"context"
	_ "embed"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	authdomain "github.com/smallbiznis/storefront/internal/auth/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	RoleStaff = "role:staff"
	RoleUser  = "role:user"
)

const (
	ObjectProduct    = "product"
	ObjectCollection = "collection"
	ObjectCustomer   = "customer"
	ObjectOrder      = "order"
	ObjectAdmin      = "admin"
)

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"

	// ActionViewAll lets a caller see records owned by other customers.
	ActionViewAll = "view_all"
	// ActionAct runs admin bulk actions.
	ActionAct = "act"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	if err := enforcer.BuildRoleLinks(); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

// SubjectFor maps an identity onto the casbin role it acts as.
func SubjectFor(identity *authdomain.Identity) string {
	if identity != nil && identity.IsStaff {
		return RoleStaff
	}
	return RoleUser
}

func (s *ServiceImpl) Authorize(ctx context.Context, identity *authdomain.Identity, object string, action string) error {
	if identity == nil {
		return ErrForbidden
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject := SubjectFor(identity)
	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Debug("authorization denied",
			zap.String("user_id", identity.UserID.String()),
			zap.String("subject", subject),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Signed-in customers
		{RoleUser, ObjectCustomer, ActionView},
		{RoleUser, ObjectOrder, ActionView},
		{RoleUser, ObjectOrder, ActionCreate},

		// Staff
		{RoleStaff, ObjectProduct, ActionCreate},
		{RoleStaff, ObjectProduct, ActionUpdate},
		{RoleStaff, ObjectProduct, ActionDelete},

		{RoleStaff, ObjectCollection, ActionCreate},
		{RoleStaff, ObjectCollection, ActionUpdate},
		{RoleStaff, ObjectCollection, ActionDelete},

		{RoleStaff, ObjectCustomer, ActionViewAll},
		{RoleStaff, ObjectCustomer, ActionCreate},
		{RoleStaff, ObjectCustomer, ActionUpdate},

		{RoleStaff, ObjectOrder, ActionViewAll},
		{RoleStaff, ObjectOrder, ActionUpdate},
		{RoleStaff, ObjectOrder, ActionDelete},

		{RoleStaff, ObjectAdmin, ActionView},
		{RoleStaff, ObjectAdmin, ActionUpdate},
		{RoleStaff, ObjectAdmin, ActionAct},
	}

	for _, policy := range policies {
		has, err := enforcer.HasPolicy(policy)
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}

	// Staff inherit everything a signed-in customer can do.
	has, err := enforcer.HasGroupingPolicy(RoleStaff, RoleUser)
	if err != nil {
		return err
	}
	if !has {
		if _, err := enforcer.AddGroupingPolicy(RoleStaff, RoleUser); err != nil {
			return err
		}
	}
	return nil
}
