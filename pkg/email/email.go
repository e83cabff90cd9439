package email

import (
	"fmt"
	"net/smtp"
	"strings"
)

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
}

// InvoiceNotice is what a recipient needs to know about a ready invoice.
type InvoiceNotice struct {
	CompanyName   string
	ClientName    string
	InvoiceNumber string
	AmountDue     string
	Currency      string
	DueDate       string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailService handles email sending
type EmailService struct {
	config EmailConfig
	send   sendFunc
}

// NewEmailService creates a new email service
func NewEmailService(config EmailConfig) *EmailService {
	return &EmailService{config: config, send: smtp.SendMail}
}

// Enabled is false when no SMTP host is configured; sends are then no-ops.
func (s *EmailService) Enabled() bool {
	return s.config.SMTPHost != ""
}

// SendInvoiceReady tells the client an invoice is ready.
func (s *EmailService) SendInvoiceReady(toEmail string, notice InvoiceNotice) error {
	if !s.Enabled() {
		return nil
	}
	if toEmail == "" {
		return fmt.Errorf("no recipient for invoice %s", notice.InvoiceNumber)
	}

	subject := fmt.Sprintf("Invoice %s from %s", notice.InvoiceNumber, notice.CompanyName)
	message := s.buildTextEmail(toEmail, subject, renderInvoiceNotice(notice))

	return s.sendEmail(toEmail, message)
}

// sendEmail sends an email using SMTP
func (s *EmailService) sendEmail(to string, message []byte) error {
	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)

	var auth smtp.Auth
	if s.config.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
	}

	if err := s.send(addr, auth, s.config.FromEmail, []string{to}, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *EmailService) buildTextEmail(to, subject, body string) []byte {
	headers := fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/plain; charset=\"UTF-8\"\r\n"+
			"\r\n",
		s.config.FromName,
		s.config.FromEmail,
		to,
		subject,
	)
	return []byte(headers + body)
}

func renderInvoiceNotice(n InvoiceNotice) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\r\n\r\n", n.ClientName)
	fmt.Fprintf(&b, "%s has issued invoice %s.\r\n", n.CompanyName, n.InvoiceNumber)
	fmt.Fprintf(&b, "Amount due: %s %s\r\n", n.AmountDue, n.Currency)
	fmt.Fprintf(&b, "Due date: %s\r\n", n.DueDate)
	return b.String()
}
