package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/storefront/internal/providers/email"
	"go.uber.org/zap"
)

const (
	helloEmailTemplate  = "emails/hello.html"
	helloEmailRecipient = "john@google.com"
)

// SayHello sends the templated hello email and always renders the hello page.
// Delivery failures never reach the caller: malformed headers are dropped quietly
// and anything else is logged.
func (s *Server) SayHello(c *gin.Context) {
	ctx := c.Request.Context()
	err := s.mailer.SendTemplate(ctx, []string{helloEmailRecipient}, helloEmailTemplate, map[string]any{"name": "Steve"})
	switch {
	case err == nil:
		s.obsMetrics.RecordEmailDelivery(ctx, "sent")
	case errors.Is(err, email.ErrMalformedHeader):
		s.obsMetrics.RecordEmailDelivery(ctx, "malformed_header")
	default:
		s.obsMetrics.RecordEmailDelivery(ctx, "failed")
		s.log.Error("hello email delivery failed",
			zap.String("template", helloEmailTemplate),
			zap.Error(err),
		)
	}

	c.HTML(http.StatusOK, "hello.html", gin.H{"name": "Mosh"})
}
