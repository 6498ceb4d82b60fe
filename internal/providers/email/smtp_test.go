package email

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	addr string
	from string
	to   []string
	msg  string
}

func newCapturingProvider(c *captured, fail error) *SMTPProvider {
	p := NewSMTP(Config{Host: "mail.local", Port: 2525, From: "shop@storefront.local"})
	p.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		c.addr, c.from, c.to, c.msg = addr, from, to, string(msg)
		return fail
	}
	return p
}

func TestSendTemplateRendersHello(t *testing.T) {
	var c captured
	p := newCapturingProvider(&c, nil)

	err := p.SendTemplate(context.Background(), []string{"john@google.com"}, "emails/hello.html", map[string]any{"name": "Steve"})
	require.NoError(t, err)

	assert.Equal(t, "mail.local:2525", c.addr)
	assert.Equal(t, []string{"john@google.com"}, c.to)
	assert.Contains(t, c.msg, "Subject: Hello Steve\r\n")
	assert.Contains(t, c.msg, "Hi Steve,")
}

func TestSendRejectsHeaderInjection(t *testing.T) {
	var c captured
	p := newCapturingProvider(&c, nil)

	err := p.Send(context.Background(), []string{"john@google.com"}, "Hi\r\nBcc: evil@example.com", "<p>x</p>")
	assert.ErrorIs(t, err, ErrMalformedHeader)

	err = p.Send(context.Background(), []string{"john@google.com\nBcc: evil@example.com"}, "Hi", "<p>x</p>")
	assert.ErrorIs(t, err, ErrMalformedHeader)
	assert.Empty(t, c.msg)
}

func TestSendWrapsTransportError(t *testing.T) {
	var c captured
	boom := errors.New("connection refused")
	p := newCapturingProvider(&c, boom)

	err := p.Send(context.Background(), []string{"john@google.com"}, "Hi", "<p>x</p>")
	assert.ErrorIs(t, err, boom)
	assert.True(t, strings.HasPrefix(err.Error(), "smtp send:"))
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, _, err := Render("emails/missing.html", nil)
	assert.Error(t, err)
}
