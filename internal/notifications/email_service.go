package notifications

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"venuely/internal/shared/config"
)

// EmailService sends one rendered notification email
type EmailService interface {
	SendNotification(ctx context.Context, notification *EmailNotification) error
}

type smtpEmailService struct {
	cfg       config.EmailConfig
	templates map[string]*template.Template
}

func NewSMTPEmailService(cfg config.EmailConfig) (EmailService, error) {
	if cfg.SMTPHost == "" || cfg.SMTPUsername == "" {
		return nil, fmt.Errorf("SMTP configuration is required: missing SMTP_HOST or SMTP_USERNAME")
	}

	service := &smtpEmailService{
		cfg:       cfg,
		templates: make(map[string]*template.Template),
	}
	service.loadTemplates()
	return service, nil
}

const bookingEmailTemplate = `
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
	<h2>{{.Subject}}</h2>
	<p>Booking reference: <strong>{{.BookingID}}</strong></p>
	<p>Event date: <strong>{{.EventDate}}</strong></p>
	{{if .Reason}}<p>Note: {{.Reason}}</p>{{end}}
	<p>Thank you for using Venuely.</p>
</body>
</html>`

func (s *smtpEmailService) loadTemplates() {
	s.templates["booking"] = template.Must(template.New("booking").Parse(bookingEmailTemplate))
}

func (s *smtpEmailService) SendNotification(ctx context.Context, notification *EmailNotification) error {
	if notification.RecipientEmail == "" {
		return fmt.Errorf("notification has no recipient email")
	}

	data := struct {
		Subject   string
		BookingID string
		EventDate string
		Reason    string
	}{
		Subject:   notification.Subject,
		BookingID: stringValue(notification.TemplateData, "booking_id"),
		EventDate: stringValue(notification.TemplateData, "event_date"),
		Reason:    stringValue(notification.TemplateData, "reason"),
	}

	var body bytes.Buffer
	if err := s.templates["booking"].Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.send(notification.RecipientEmail, notification.Subject, body.String())
}

func (s *smtpEmailService) send(to, subject, htmlBody string) error {
	from := s.cfg.FromEmail
	message := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.cfg.FromName, from, to, subject, htmlBody)

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)

	if err := smtp.SendMail(addr, auth, from, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

func stringValue(data map[string]interface{}, key string) string {
	if value, ok := data[key].(string); ok {
		return value
	}
	return ""
}
