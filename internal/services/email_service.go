package services

import (
	"context"
	"fmt"
	"html"
	"strings"

	"gopkg.in/gomail.v2"

	"greenleaf/internal/menu"
)

type mailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailService отправляет уведомления операторам письмом, одно письмо на push.
type EmailService struct {
	dialer mailDialer
	from   string
	to     []string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string, to []string) *EmailService {
	return &EmailService{
		dialer: gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword),
		from:   fromEmail,
		to:     to,
	}
}

func (s *EmailService) Push(_ context.Context, v menu.View) error {
	if len(s.to) == 0 {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", s.to...)
	m.SetHeader("Subject", v.Title)
	m.SetBody("text/plain", v.PlainText())
	m.AddAlternative("text/html", emailHTML(v))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}
	return nil
}

func emailHTML(v menu.View) string {
	var b strings.Builder
	b.WriteString("<h3>" + html.EscapeString(v.Title) + "</h3>\n<p>")
	b.WriteString(strings.Join(v.Lines, "<br>\n"))
	b.WriteString("</p>")
	return b.String()
}
