package utils

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/Kariqs/goutam-store/models"
	"github.com/Kariqs/goutam-store/store"
)

//go:embed templates/*.html
var templateFS embed.FS

type EmailLine struct {
	Name     string
	Quantity string
	Amount   string
}

type EmailData struct {
	StoreName string
	Name      string
	Message   string
	ActionURL string
	// Set for order confirmations only.
	OrderID string
	Lines   []EmailLine
	Total   string
}

type MailConfig struct {
	From     string
	Password string
	SMTPHost string
	// Address is host:port of the SMTP server.
	Address   string
	StoreName string
}

// Mailer sends the store's HTML emails over SMTP.
type Mailer struct {
	cfg  MailConfig
	tmpl *template.Template
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailer(cfg MailConfig) (*Mailer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("template parse error: %w", err)
	}
	return &Mailer{cfg: cfg, tmpl: tmpl, send: smtp.SendMail}, nil
}

func (m *Mailer) Configured() bool {
	return m != nil && m.cfg.From != "" && m.cfg.Address != ""
}

func (m *Mailer) SendEmail(emailTo, emailSubject string, data EmailData, templateName string) error {
	if !m.Configured() {
		return fmt.Errorf("mail is not configured")
	}
	if data.StoreName == "" {
		data.StoreName = m.cfg.StoreName
	}

	var body bytes.Buffer
	if err := m.tmpl.ExecuteTemplate(&body, templateName, data); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}

	message := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n%s",
		m.cfg.From,
		emailTo,
		emailSubject,
		body.String(),
	)

	var auth smtp.Auth
	if m.cfg.Password != "" {
		auth = smtp.PlainAuth("", m.cfg.From, m.cfg.Password, m.cfg.SMTPHost)
	}
	if err := m.send(m.cfg.Address, auth, m.cfg.From, []string{emailTo}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (m *Mailer) SendPasswordReset(u models.UserProfile, resetURL string) error {
	return m.SendEmail(u.Email, "Reset your password", EmailData{
		Name:      u.Name,
		Message:   "You requested a password reset. Click the button below to choose a new password.",
		ActionURL: resetURL,
	}, "reset_password.html")
}

func (m *Mailer) SendOrderConfirmation(u models.UserProfile, o models.Order, invoiceURL string) error {
	data := EmailData{
		Name:      u.Name,
		Message:   "Thank you for your order. Here is what you bought.",
		ActionURL: invoiceURL,
		OrderID:   o.OrderID,
		Total:     fmt.Sprintf("₹%.2f", o.Total),
	}
	for _, it := range o.Items {
		data.Lines = append(data.Lines, EmailLine{
			Name:     it.Product.Name.En,
			Quantity: strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", it.Quantity), "0"), ".") + " " + string(it.Product.Unit),
			Amount:   fmt.Sprintf("₹%.2f", it.Product.Price*it.Quantity),
		})
	}
	return m.SendEmail(u.Email, "Order "+o.OrderID+" confirmed", data, "order_confirmation.html")
}

// OrderMailer emails a confirmation for every placed order without holding
// up the request; failures are only logged.
type OrderMailer struct {
	mailer      *Mailer
	users       store.UserStore
	frontendURL string
	log         *slog.Logger
}

func NewOrderMailer(m *Mailer, users store.UserStore, frontendURL string, logger *slog.Logger) *OrderMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderMailer{mailer: m, users: users, frontendURL: strings.TrimRight(frontendURL, "/"), log: logger}
}

func (om *OrderMailer) OrderPlaced(_ context.Context, o models.Order) {
	if !om.mailer.Configured() {
		return
	}
	go func() {
		u, err := om.users.GetUser(context.Background(), o.UserID)
		if err != nil {
			om.log.Warn("no recipient for order confirmation", "order_id", o.OrderID, "error", err)
			return
		}
		if err := om.mailer.SendOrderConfirmation(u, o, om.frontendURL+"/invoice/"+o.ID); err != nil {
			om.log.Error("Error sending order confirmation", "order_id", o.OrderID, "error", err)
			return
		}
		om.log.Info("Order confirmation sent", "order_id", o.OrderID, "to", u.Email)
	}()
}
