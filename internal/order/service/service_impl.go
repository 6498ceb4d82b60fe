package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/storefront/internal/clock"
	customerdomain "github.com/smallbiznis/storefront/internal/customer/domain"
	obsmetrics "github.com/smallbiznis/storefront/internal/observability/metrics"
	"github.com/smallbiznis/storefront/internal/order/domain"
	productdomain "github.com/smallbiznis/storefront/internal/product/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Repo         domain.Repository
	ProductRepo  productdomain.Repository
	CustomerRepo customerdomain.Repository
	Clock        clock.Clock
	Metrics      *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	repo         domain.Repository
	productRepo  productdomain.Repository
	customerRepo customerdomain.Repository
	clock        clock.Clock
	metrics      *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("order.service"),
		genID:        p.GenID,
		repo:         p.Repo,
		productRepo:  p.ProductRepo,
		customerRepo: p.CustomerRepo,
		clock:        p.Clock,
		metrics:      p.Metrics,
	}
}

// Place creates an order and snapshots each product's current unit price onto its line.
func (s *Service) Place(ctx context.Context, req domain.PlaceRequest) (*domain.Response, error) {
	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil || customerID <= 0 {
		return nil, domain.ErrInvalidCustomer
	}
	lines, err := mergeLines(req.Items)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		ID:            s.genID.Generate(),
		PlacedAt:      s.clock.Now(),
		PaymentStatus: domain.PaymentStatusPending,
		CustomerID:    customerID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer, err := s.customerRepo.FindByID(ctx, tx, customerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return domain.ErrInvalidCustomer
		}

		if err := s.repo.Insert(ctx, tx, order); err != nil {
			return err
		}

		items := make([]domain.OrderItem, 0, len(lines))
		for _, line := range lines {
			price, err := s.snapshotPrice(ctx, tx, line.productID)
			if err != nil {
				return err
			}
			items = append(items, domain.OrderItem{
				ID:        s.genID.Generate(),
				OrderID:   order.ID,
				ProductID: line.productID,
				Quantity:  line.quantity,
				UnitPrice: price,
			})
		}
		return s.repo.InsertItems(ctx, tx, items)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordOrderPlaced(ctx)
	s.log.Info("order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("customer_id", customerID.String()),
		zap.Int("items", len(lines)),
	)
	return s.load(ctx, s.db, order.ID)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	orderID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, s.db, orderID)
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	var filter domain.ListFilter
	if raw := strings.TrimSpace(req.CustomerID); raw != "" {
		customerID, err := snowflake.ParseString(raw)
		if err != nil {
			return nil, domain.ErrInvalidCustomer
		}
		filter.CustomerID = &customerID
	}
	page := req.Page.Normalize()

	total, err := s.repo.Count(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return nil, err
	}

	resp := &domain.ListResponse{Total: total, Orders: make([]domain.Response, 0, len(rows))}
	for i := range rows {
		resp.Orders = append(resp.Orders, toResponse(&rows[i], nil))
	}
	return resp, nil
}

func (s *Service) UpdatePaymentStatus(ctx context.Context, id string, status string) (*domain.Response, error) {
	orderID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	status = strings.ToUpper(strings.TrimSpace(status))
	if !domain.ValidPaymentStatus(status) {
		return nil, domain.ErrInvalidPaymentStatus
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByID(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}
		return s.repo.UpdatePaymentStatus(ctx, tx, orderID, status)
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, s.db, orderID)
}

// ReplaceItems sets the order's lines to exactly items. Lines that keep their product keep
// their captured price; new lines and lines switched to another product capture the
// current price.
func (s *Service) ReplaceItems(ctx context.Context, id string, items []domain.ItemInput) (*domain.Response, error) {
	orderID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.ErrInvalidItems
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByID(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}

		current, err := s.repo.FindItems(ctx, tx, orderID)
		if err != nil {
			return err
		}
		byID := make(map[snowflake.ID]domain.OrderItem, len(current))
		for _, item := range current {
			byID[item.ID] = item.OrderItem
		}

		kept := make(map[snowflake.ID]struct{}, len(items))
		var inserts []domain.OrderItem
		for _, input := range items {
			productID, quantity, err := parseLine(input)
			if err != nil {
				return err
			}

			if input.ID == nil || strings.TrimSpace(*input.ID) == "" {
				price, err := s.snapshotPrice(ctx, tx, productID)
				if err != nil {
					return err
				}
				inserts = append(inserts, domain.OrderItem{
					ID:        s.genID.Generate(),
					OrderID:   orderID,
					ProductID: productID,
					Quantity:  quantity,
					UnitPrice: price,
				})
				continue
			}

			itemID, err := snowflake.ParseString(strings.TrimSpace(*input.ID))
			if err != nil {
				return domain.ErrInvalidItem
			}
			item, ok := byID[itemID]
			if !ok {
				return domain.ErrInvalidItem
			}
			if _, dup := kept[itemID]; dup {
				return domain.ErrInvalidItem
			}
			kept[itemID] = struct{}{}

			if item.ProductID != productID {
				price, err := s.snapshotPrice(ctx, tx, productID)
				if err != nil {
					return err
				}
				item.ProductID = productID
				item.UnitPrice = price
			}
			item.Quantity = quantity
			if err := s.repo.UpdateItem(ctx, tx, &item); err != nil {
				return err
			}
		}

		var removed []snowflake.ID
		for _, item := range current {
			if _, ok := kept[item.ID]; !ok {
				removed = append(removed, item.ID)
			}
		}
		if err := s.repo.DeleteItems(ctx, tx, orderID, removed); err != nil {
			return err
		}
		return s.repo.InsertItems(ctx, tx, inserts)
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, s.db, orderID)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	orderID, err := parseID(id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByID(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}
		return s.repo.Delete(ctx, tx, orderID)
	})
}

func (s *Service) snapshotPrice(ctx context.Context, tx *gorm.DB, productID snowflake.ID) (decimal.Decimal, error) {
	product, err := s.productRepo.FindByID(ctx, tx, productID)
	if err != nil {
		return decimal.Zero, err
	}
	if product == nil {
		return decimal.Zero, domain.ErrInvalidProduct
	}
	return product.UnitPrice, nil
}

func (s *Service) load(ctx context.Context, tx *gorm.DB, orderID snowflake.ID) (*domain.Response, error) {
	order, err := s.repo.FindByID(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	items, err := s.repo.FindItems(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	resp := toResponse(order, items)
	return &resp, nil
}

type line struct {
	productID snowflake.ID
	quantity  int
}

// mergeLines validates new order lines and folds repeated products into one line.
func mergeLines(items []domain.ItemInput) ([]line, error) {
	if len(items) == 0 {
		return nil, domain.ErrInvalidItems
	}
	lines := make([]line, 0, len(items))
	index := make(map[snowflake.ID]int, len(items))
	for _, input := range items {
		productID, quantity, err := parseLine(input)
		if err != nil {
			return nil, err
		}
		if i, ok := index[productID]; ok {
			if lines[i].quantity > domain.MaxQuantity-quantity {
				return nil, domain.ErrInvalidQuantity
			}
			lines[i].quantity += quantity
			continue
		}
		index[productID] = len(lines)
		lines = append(lines, line{productID: productID, quantity: quantity})
	}
	return lines, nil
}

func parseLine(input domain.ItemInput) (snowflake.ID, int, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(input.Product))
	if err != nil || productID <= 0 {
		return 0, 0, domain.ErrInvalidProduct
	}
	if input.Quantity <= 0 || input.Quantity > domain.MaxQuantity {
		return 0, 0, domain.ErrInvalidQuantity
	}
	return productID, input.Quantity, nil
}

// parseID treats a malformed path id like an unknown one.
func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, domain.ErrNotFound
	}
	return id, nil
}

func toResponse(o *domain.OrderWithCustomer, items []domain.OrderItemWithProduct) domain.Response {
	resp := domain.Response{
		ID:            o.ID.String(),
		PlacedAt:      o.PlacedAt,
		PaymentStatus: o.PaymentStatus,
		Customer:      o.CustomerID.String(),
		CustomerName:  strings.TrimSpace(o.CustomerFirstName + " " + o.CustomerLastName),
	}
	if items == nil {
		return resp
	}

	total := decimal.Zero
	resp.Items = make([]domain.ItemResponse, 0, len(items))
	for _, item := range items {
		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(lineTotal)
		resp.Items = append(resp.Items, domain.ItemResponse{
			ID:           item.ID.String(),
			Product:      item.ProductID.String(),
			ProductTitle: item.ProductTitle,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice.StringFixed(2),
			TotalPrice:   lineTotal.StringFixed(2),
		})
	}
	resp.TotalPrice = total.StringFixed(2)
	return resp
}
