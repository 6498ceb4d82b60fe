package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/smallbiznis/storefront/internal/templates"
)

const defaultSubject = "Message from Storefront"

// Render executes an embedded email template. A template may define a "subject"
// block; the remaining output becomes the HTML body.
func Render(templateName string, data any) (subject string, body string, err error) {
	t, err := template.ParseFS(templates.FS, templateName)
	if err != nil {
		return "", "", fmt.Errorf("parse email template %s: %w", templateName, err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("execute email template %s: %w", templateName, err)
	}

	subject = defaultSubject
	if t.Lookup("subject") != nil {
		var subj bytes.Buffer
		if err := t.ExecuteTemplate(&subj, "subject", data); err != nil {
			return "", "", fmt.Errorf("execute email subject %s: %w", templateName, err)
		}
		if s := strings.TrimSpace(subj.String()); s != "" {
			subject = s
		}
	}

	return subject, strings.TrimSpace(buf.String()), nil
}

func validateHeaders(values ...string) error {
	for _, v := range values {
		if strings.ContainsAny(v, "\r\n") {
			return ErrMalformedHeader
		}
	}
	return nil
}
