package service

import (
	"context"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storefront/internal/customer/domain"
	obsmetrics "github.com/smallbiznis/storefront/internal/observability/metrics"
	"github.com/smallbiznis/storefront/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const dateOnlyLayout = "2006-01-02"

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	metrics *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("customer.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCustomerRequest) (*domain.Response, error) {
	customer, err := NewCustomer(s.genID, req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, s.db, customer); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrUserHasCustomer
		}
		return nil, err
	}
	s.metrics.RecordCatalogMutation(ctx, "customer", "create")

	resp := toResponse(&domain.CustomerWithCount{Customer: *customer})
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCustomerRequest) (*domain.ListCustomerResponse, error) {
	filter := domain.ListCustomerFilter{
		NamePrefix: strings.TrimSpace(req.NamePrefix),
		Membership: strings.ToUpper(strings.TrimSpace(req.Membership)),
	}
	if filter.Membership != "" && !domain.ValidMembership(filter.Membership) {
		return nil, domain.ErrInvalidMembership
	}
	page := req.Page.Normalize()

	total, err := s.repo.Count(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return nil, err
	}

	resp := &domain.ListCustomerResponse{Total: total, Customers: make([]domain.Response, 0, len(items))}
	for i := range items {
		resp.Customers = append(resp.Customers, toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Response, error) {
	customerID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || customerID <= 0 {
		return nil, domain.ErrNotFound
	}

	item, err := s.repo.FindByID(ctx, s.db, customerID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) GetByUserID(ctx context.Context, userID snowflake.ID) (*domain.Response, error) {
	if userID <= 0 {
		return nil, domain.ErrNotFound
	}
	item, err := s.repo.FindByUserID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateCustomerRequest) (*domain.Response, error) {
	customerID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || customerID <= 0 {
		return nil, domain.ErrNotFound
	}

	var updated *domain.CustomerWithCount
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.FindByID(ctx, tx, customerID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}

		if req.FirstName != nil {
			value, err := normalizeName(*req.FirstName, domain.ErrInvalidFirstName)
			if err != nil {
				return err
			}
			item.FirstName = value
		}
		if req.LastName != nil {
			value, err := normalizeName(*req.LastName, domain.ErrInvalidLastName)
			if err != nil {
				return err
			}
			item.LastName = value
		}
		if req.Email != nil {
			value, err := normalizeEmail(req.Email)
			if err != nil {
				return err
			}
			item.Email = value
		}
		if req.Phone != nil {
			value, err := normalizePhone(req.Phone)
			if err != nil {
				return err
			}
			item.Phone = value
		}
		if req.BirthDate != nil {
			value, err := parseBirthDate(req.BirthDate)
			if err != nil {
				return err
			}
			item.BirthDate = value
		}
		if req.Membership != nil {
			if strings.TrimSpace(*req.Membership) == "" {
				return domain.ErrInvalidMembership
			}
			value, err := normalizeMembership(req.Membership)
			if err != nil {
				return err
			}
			item.Membership = value
		}

		if err := s.repo.Update(ctx, tx, &item.Customer); err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordCatalogMutation(ctx, "customer", "update")

	resp := toResponse(updated)
	return &resp, nil
}

// NewCustomer validates req and builds an unsaved customer row.
func NewCustomer(genID *snowflake.Node, req domain.CreateCustomerRequest) (*domain.Customer, error) {
	firstName, err := normalizeName(req.FirstName, domain.ErrInvalidFirstName)
	if err != nil {
		return nil, err
	}
	lastName, err := normalizeName(req.LastName, domain.ErrInvalidLastName)
	if err != nil {
		return nil, err
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	phone, err := normalizePhone(req.Phone)
	if err != nil {
		return nil, err
	}
	birthDate, err := parseBirthDate(req.BirthDate)
	if err != nil {
		return nil, err
	}
	membership, err := normalizeMembership(req.Membership)
	if err != nil {
		return nil, err
	}

	return &domain.Customer{
		ID:         genID.Generate(),
		FirstName:  firstName,
		LastName:   lastName,
		Email:      email,
		Phone:      phone,
		BirthDate:  birthDate,
		Membership: membership,
		UserID:     req.UserID,
	}, nil
}

func normalizeName(raw string, invalid error) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" || utf8.RuneCountInString(value) > domain.MaxNameLength {
		return "", invalid
	}
	return value, nil
}

func normalizeEmail(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	value := strings.ToLower(strings.TrimSpace(*raw))
	if value == "" {
		return nil, nil
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return nil, domain.ErrInvalidEmail
	}
	return &value, nil
}

func normalizePhone(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(value) > domain.MaxNameLength {
		return nil, domain.ErrInvalidPhone
	}
	return &value, nil
}

func parseBirthDate(raw *string) (*datatypes.Date, error) {
	if raw == nil {
		return nil, nil
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateOnlyLayout, value)
	if err != nil {
		return nil, domain.ErrInvalidBirthDate
	}
	date := datatypes.Date(parsed)
	return &date, nil
}

func normalizeMembership(raw *string) (string, error) {
	if raw == nil {
		return domain.MembershipBronze, nil
	}
	value := strings.ToUpper(strings.TrimSpace(*raw))
	if value == "" {
		return domain.MembershipBronze, nil
	}
	if !domain.ValidMembership(value) {
		return "", domain.ErrInvalidMembership
	}
	return value, nil
}

func toResponse(c *domain.CustomerWithCount) domain.Response {
	resp := domain.Response{
		ID:          c.ID.String(),
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		Phone:       c.Phone,
		Membership:  c.Membership,
		OrdersCount: c.OrdersCount,
	}
	if c.BirthDate != nil {
		formatted := time.Time(*c.BirthDate).Format(dateOnlyLayout)
		resp.BirthDate = &formatted
	}
	if c.UserID != nil {
		userID := c.UserID.String()
		resp.UserID = &userID
	}
	return resp
}
