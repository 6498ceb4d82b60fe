package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storefront/internal/auth/domain"
	"github.com/smallbiznis/storefront/internal/auth/repository"
	"github.com/smallbiznis/storefront/internal/auth/service"
	"github.com/smallbiznis/storefront/internal/auth/token"
	"github.com/smallbiznis/storefront/internal/clock"
	"github.com/smallbiznis/storefront/internal/config"
	customerdomain "github.com/smallbiznis/storefront/internal/customer/domain"
	customerrepo "github.com/smallbiznis/storefront/internal/customer/repository"
	"github.com/smallbiznis/storefront/internal/migration"
	"github.com/smallbiznis/storefront/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	svc   domain.Service
	clock *clock.FakeClock
}

func setup(t *testing.T) fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(conn))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)
	tokens, err := token.NewManager(config.Config{AppName: "storefront", AuthJWTSecret: "test-secret", AuthAccessTTLMin: 60})
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	svc := service.New(service.Params{
		DB:           conn,
		Log:          zap.NewNop(),
		GenID:        node,
		Repo:         repository.Provide(),
		CustomerRepo: customerrepo.Provide(),
		Tokens:       tokens,
		Clock:        clk,
	})
	return fixture{db: conn, svc: svc, clock: clk}
}

func validRegistration() domain.RegisterRequest {
	return domain.RegisterRequest{
		Username:  "alice",
		Email:     "Alice@Example.com",
		Password:  "correct-horse-battery",
		FirstName: "Alice",
		LastName:  "Liddell",
	}
}

func TestRegisterCreatesUserAndCustomer(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	user, err := f.svc.Register(ctx, validRegistration())
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.False(t, user.IsStaff)
	assert.NotEqual(t, "correct-horse-battery", user.PasswordHash)

	var customer customerdomain.Customer
	require.NoError(t, f.db.Where("user_id = ?", user.ID).First(&customer).Error)
	assert.Equal(t, "Alice", customer.FirstName)
	assert.Equal(t, customerdomain.MembershipBronze, customer.Membership)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	dup := validRegistration()
	dup.Username = "alice2"
	_, err = f.svc.Register(ctx, dup)
	assert.ErrorIs(t, err, domain.ErrUserExists)

	var count int64
	require.NoError(t, f.db.Model(&customerdomain.Customer{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRegisterValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*domain.RegisterRequest)
		want   error
	}{
		{"blank username", func(r *domain.RegisterRequest) { r.Username = " " }, domain.ErrInvalidUsername},
		{"username with spaces", func(r *domain.RegisterRequest) { r.Username = "a b" }, domain.ErrInvalidUsername},
		{"bad email", func(r *domain.RegisterRequest) { r.Email = "nope" }, domain.ErrInvalidEmail},
		{"short password", func(r *domain.RegisterRequest) { r.Password = "short" }, domain.ErrInvalidPassword},
		{"numeric password", func(r *domain.RegisterRequest) { r.Password = "1234567890" }, domain.ErrInvalidPassword},
		{"missing first name", func(r *domain.RegisterRequest) { r.FirstName = "" }, domain.ErrInvalidFirstName},
		{"missing last name", func(r *domain.RegisterRequest) { r.LastName = "" }, domain.ErrInvalidLastName},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRegistration()
			tc.mutate(&req)
			_, err := f.svc.Register(ctx, req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestLoginAndAuthenticate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	req := validRegistration()
	req.IsStaff = true
	user, err := f.svc.Register(ctx, req)
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, domain.LoginRequest{Username: "alice", Password: "wrong-password"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, domain.LoginRequest{Username: "nobody", Password: "whatever-pass"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	result, err := f.svc.Login(ctx, domain.LoginRequest{Username: "alice", Password: "correct-horse-battery"})
	require.NoError(t, err)
	require.NotEmpty(t, result.AccessToken)

	identity, err := f.svc.Authenticate(ctx, result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.True(t, identity.IsStaff)

	stored, err := f.svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLogin)
}

func TestAuthenticateReflectsCurrentUserState(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	req := validRegistration()
	req.IsStaff = true
	user, err := f.svc.Register(ctx, req)
	require.NoError(t, err)
	result, err := f.svc.Login(ctx, domain.LoginRequest{Username: "alice", Password: "correct-horse-battery"})
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&domain.User{}).Where("id = ?", user.ID).Update("is_staff", false).Error)
	identity, err := f.svc.Authenticate(ctx, result.AccessToken)
	require.NoError(t, err)
	assert.False(t, identity.IsStaff)

	require.NoError(t, f.db.Model(&domain.User{}).Where("id = ?", user.ID).Update("is_active", false).Error)
	_, err = f.svc.Authenticate(ctx, result.AccessToken)
	assert.ErrorIs(t, err, domain.ErrUserInactive)
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	_, err = f.svc.Authenticate(context.Background(), "not.a.jwt")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
