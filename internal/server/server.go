package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/storefront/internal/admin"
	"github.com/smallbiznis/storefront/internal/auth"
	authdomain "github.com/smallbiznis/storefront/internal/auth/domain"
	"github.com/smallbiznis/storefront/internal/authorization"
	"github.com/smallbiznis/storefront/internal/collection"
	collectiondomain "github.com/smallbiznis/storefront/internal/collection/domain"
	"github.com/smallbiznis/storefront/internal/config"
	"github.com/smallbiznis/storefront/internal/customer"
	customerdomain "github.com/smallbiznis/storefront/internal/customer/domain"
	"github.com/smallbiznis/storefront/internal/observability"
	obsmiddleware "github.com/smallbiznis/storefront/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/storefront/internal/observability/metrics"
	obstracing "github.com/smallbiznis/storefront/internal/observability/tracing"
	"github.com/smallbiznis/storefront/internal/order"
	orderdomain "github.com/smallbiznis/storefront/internal/order/domain"
	"github.com/smallbiznis/storefront/internal/product"
	productdomain "github.com/smallbiznis/storefront/internal/product/domain"
	"github.com/smallbiznis/storefront/internal/providers"
	"github.com/smallbiznis/storefront/internal/providers/email"
	"github.com/smallbiznis/storefront/internal/ratelimit"
	"github.com/smallbiznis/storefront/internal/templates"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	auth.Module,
	admin.Module,
	providers.Module,
	ratelimit.Module,
	collection.Module,
	product.Module,
	customer.Module,
	order.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) (*gin.Engine, error) {
	r := gin.New()
	// Every route is registered with and without its trailing slash.
	r.RedirectTrailingSlash = false
	r.Use(gin.Recovery())
	if len(cfg.CORSAllowOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.CORSAllowOrigins,
			AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Authorization", "Content-Type", "X-Request-Id"},
			ExposeHeaders: []string{"X-Request-Id"},
			MaxAge:        12 * time.Hour,
		}))
	}
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	pages, err := templates.Pages()
	if err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(pages)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r, nil
}

func registerGin(cfg config.Config, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) (*gin.Engine, error) {
	return NewEngine(cfg, obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	db            *gorm.DB
	log           *zap.Logger
	authsvc       authdomain.Service
	authzSvc      authorization.Service
	collectionSvc collectiondomain.Service
	productSvc    productdomain.Service
	customerSvc   customerdomain.Service
	orderSvc      orderdomain.Service
	adminRegistry *admin.Registry
	mailer        email.Provider
	loginLimiter  *ratelimit.LoginLimiter
	obsMetrics    *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	DB            *gorm.DB
	Log           *zap.Logger
	Authsvc       authdomain.Service
	AuthzSvc      authorization.Service
	CollectionSvc collectiondomain.Service
	ProductSvc    productdomain.Service
	CustomerSvc   customerdomain.Service
	OrderSvc      orderdomain.Service
	AdminRegistry *admin.Registry
	Mailer        email.Provider
	LoginLimiter  *ratelimit.LoginLimiter `optional:"true"`
	ObsMetrics    *obsmetrics.Metrics     `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	mailer := p.Mailer
	if mailer == nil {
		mailer = &email.NoOpProvider{}
	}

	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		db:            p.DB,
		log:           p.Log.Named("http.server"),
		authsvc:       p.Authsvc,
		authzSvc:      p.AuthzSvc,
		collectionSvc: p.CollectionSvc,
		productSvc:    p.ProductSvc,
		customerSvc:   p.CustomerSvc,
		orderSvc:      p.OrderSvc,
		adminRegistry: p.AdminRegistry,
		mailer:        mailer,
		loginLimiter:  p.LoginLimiter,
		obsMetrics:    p.ObsMetrics,
	}

	svc.registerAuthRoutes()
	svc.registerStoreRoutes()
	svc.registerAdminRoutes()
	svc.registerPlaygroundRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// handle registers path both with and without a trailing slash.
func handle(r gin.IRoutes, method, path string, handlers ...gin.HandlerFunc) {
	trimmed := strings.TrimSuffix(path, "/")
	r.Handle(method, trimmed, handlers...)
	r.Handle(method, trimmed+"/", handlers...)
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth", s.Authenticate())

	handle(auth, http.MethodPost, "/users", s.ThrottleLogin(), s.RegisterUser)
	handle(auth, http.MethodGet, "/users/me", s.RequireAuth(), s.Me)
	handle(auth, http.MethodPost, "/jwt/create", s.ThrottleLogin(), s.CreateJWT)
}

func (s *Server) registerStoreRoutes() {
	store := s.engine.Group("/store", s.Authenticate())

	handle(store, http.MethodGet, "/products", s.ListProducts)
	handle(store, http.MethodPost, "/products", s.RequireStaff(authorization.ObjectProduct, authorization.ActionCreate), s.CreateProduct)
	handle(store, http.MethodGet, "/products/:id", s.GetProductByID)
	handle(store, http.MethodPatch, "/products/:id", s.RequireStaff(authorization.ObjectProduct, authorization.ActionUpdate), s.UpdateProduct)
	handle(store, http.MethodPut, "/products/:id", s.RequireStaff(authorization.ObjectProduct, authorization.ActionUpdate), s.ReplaceProduct)
	handle(store, http.MethodDelete, "/products/:id", s.RequireStaff(authorization.ObjectProduct, authorization.ActionDelete), s.DeleteProduct)

	handle(store, http.MethodGet, "/collections", s.ListCollections)
	handle(store, http.MethodPost, "/collections", s.RequireStaff(authorization.ObjectCollection, authorization.ActionCreate), s.CreateCollection)
	handle(store, http.MethodGet, "/collections/:id", s.GetCollectionByID)
	handle(store, http.MethodPatch, "/collections/:id", s.RequireStaff(authorization.ObjectCollection, authorization.ActionUpdate), s.UpdateCollection)
	handle(store, http.MethodDelete, "/collections/:id", s.RequireStaff(authorization.ObjectCollection, authorization.ActionDelete), s.DeleteCollection)

	handle(store, http.MethodGet, "/customers", s.RequireStaff(authorization.ObjectCustomer, authorization.ActionViewAll), s.ListCustomers)
	handle(store, http.MethodPost, "/customers", s.RequireStaff(authorization.ObjectCustomer, authorization.ActionCreate), s.CreateCustomer)
	handle(store, http.MethodGet, "/customers/me", s.authorize(authorization.ObjectCustomer, authorization.ActionView), s.GetMyCustomer)
	handle(store, http.MethodGet, "/customers/:id", s.RequireStaff(authorization.ObjectCustomer, authorization.ActionViewAll), s.GetCustomerByID)
	handle(store, http.MethodPatch, "/customers/:id", s.RequireStaff(authorization.ObjectCustomer, authorization.ActionUpdate), s.UpdateCustomer)

	handle(store, http.MethodGet, "/orders", s.authorize(authorization.ObjectOrder, authorization.ActionView), s.ListOrders)
	handle(store, http.MethodPost, "/orders", s.authorize(authorization.ObjectOrder, authorization.ActionCreate), s.PlaceOrder)
	handle(store, http.MethodGet, "/orders/:id", s.authorize(authorization.ObjectOrder, authorization.ActionView), s.GetOrderByID)
	handle(store, http.MethodPatch, "/orders/:id", s.RequireStaff(authorization.ObjectOrder, authorization.ActionUpdate), s.UpdateOrder)
	handle(store, http.MethodDelete, "/orders/:id", s.RequireStaff(authorization.ObjectOrder, authorization.ActionDelete), s.DeleteOrder)
}

func (s *Server) registerAdminRoutes() {
	adminGroup := s.engine.Group("/admin/store", s.Authenticate())

	view := s.RequireStaff(authorization.ObjectAdmin, authorization.ActionView)
	update := s.RequireStaff(authorization.ObjectAdmin, authorization.ActionUpdate)
	act := s.RequireStaff(authorization.ObjectAdmin, authorization.ActionAct)

	handle(adminGroup, http.MethodGet, "", view, s.ListAdminEntities)

	handle(adminGroup, http.MethodGet, "/product", view, s.AdminListProducts)
	handle(adminGroup, http.MethodPatch, "/product/:id", update, s.AdminUpdateProduct)
	handle(adminGroup, http.MethodPost, "/product/actions/:action", act, s.AdminProductAction)

	handle(adminGroup, http.MethodGet, "/collection", view, s.AdminListCollections)

	handle(adminGroup, http.MethodGet, "/customer", view, s.AdminListCustomers)
	handle(adminGroup, http.MethodPatch, "/customer/:id", update, s.AdminUpdateCustomer)

	handle(adminGroup, http.MethodGet, "/order", view, s.AdminListOrders)
	handle(adminGroup, http.MethodGet, "/order/:id", view, s.AdminGetOrder)
	handle(adminGroup, http.MethodPut, "/order/:id/items", update, s.AdminReplaceOrderItems)
}

func (s *Server) registerPlaygroundRoutes() {
	playground := s.engine.Group("/playground")

	handle(playground, http.MethodGet, "/hello", s.SayHello)
}
