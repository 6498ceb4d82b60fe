package server

import (
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/storefront/internal/auth/domain"
	obscontext "github.com/smallbiznis/storefront/internal/observability/context"
	"go.uber.org/zap"
)

const contextIdentityKey = "identity"

// Authenticate resolves "Authorization: JWT <token>" or "Bearer <token>" into an identity.
// Requests without the header continue anonymously; a bad token is rejected.
func (s *Server) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			c.Next()
			return
		}

		scheme, raw, ok := strings.Cut(header, " ")
		if !ok || !isTokenScheme(scheme) || strings.TrimSpace(raw) == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		identity, err := s.authsvc.Authenticate(c.Request.Context(), strings.TrimSpace(raw))
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextIdentityKey, identity)
		c.Request = c.Request.WithContext(obscontext.WithActor(c.Request.Context(), actorType(identity), identity.UserID.String()))
		c.Next()
	}
}

// RequireAuth rejects anonymous requests.
func (s *Server) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := identityFromContext(c); !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}

func identityFromContext(c *gin.Context) (*authdomain.Identity, bool) {
	value, ok := c.Get(contextIdentityKey)
	if !ok {
		return nil, false
	}
	identity, ok := value.(*authdomain.Identity)
	if !ok || identity == nil {
		return nil, false
	}
	return identity, true
}

func actorType(identity *authdomain.Identity) string {
	if identity.IsStaff {
		return "staff"
	}
	return "user"
}

func isTokenScheme(scheme string) bool {
	return strings.EqualFold(scheme, "JWT") || strings.EqualFold(scheme, "Bearer")
}

// ThrottleLogin limits credential attempts per client address. When the limiter backend
// is unreachable the request goes through.
func (s *Server) ThrottleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.loginLimiter.Enabled() {
			c.Next()
			return
		}

		result, err := s.loginLimiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			s.log.Warn("login rate limit check failed", zap.Error(err))
			c.Next()
			return
		}
		if !result.Allowed {
			seconds := int(math.Ceil(result.RetryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			AbortWithError(c, ErrThrottled)
			return
		}
		c.Next()
	}
}
