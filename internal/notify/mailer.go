// Package notify sends operator email for storefront activity. SMTP
// parameters live in runtime settings, so mail can be enabled without
// a restart; an unconfigured mailer drops messages silently.
package notify

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/merchkit/storeadmin/internal/console"
	"github.com/merchkit/storeadmin/internal/events"
)

// SettingsReader exposes the runtime settings the mailer needs.
type SettingsReader interface {
	GetSettingsStringValue(category, key string) string
}

// Mailer sends order notifications over SMTP.
type Mailer struct {
	settings SettingsReader
}

func NewMailer(settings SettingsReader) *Mailer {
	return &Mailer{settings: settings}
}

func (m *Mailer) smtpConfigured() bool {
	return m.settings.GetSettingsStringValue("smtp", "host") != "" &&
		m.settings.GetSettingsStringValue("notify", "order_email") != ""
}

// SendOrderPaid mails the operator about a settled order.
func (m *Mailer) SendOrderPaid(ev events.OrderPaid) error {
	if !m.smtpConfigured() {
		return nil
	}

	host := m.settings.GetSettingsStringValue("smtp", "host")
	port := cast.ToInt(m.settings.GetSettingsStringValue("smtp", "port"))
	if port == 0 {
		port = 587
	}
	username := m.settings.GetSettingsStringValue("smtp", "username")
	password := m.settings.GetSettingsStringValue("smtp", "password")
	from := m.settings.GetSettingsStringValue("smtp", "from")
	if from == "" {
		from = username
	}
	to := m.settings.GetSettingsStringValue("notify", "order_email")

	total := console.FormatUSD(decimal.NewFromInt(ev.TotalCents).Div(decimal.NewFromInt(100)))

	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("Order %d paid (%s)", ev.OrderID, total))
	msg.SetBody("text/html", fmt.Sprintf(
		"<p>Order <b>%d</b> has been paid.</p><p>Total: %s<br>Phone: %s<br>Address: %s</p>",
		ev.OrderID, total, ev.Phone, ev.Address))

	dialer := gomail.NewDialer(host, port, username, password)
	return dialer.DialAndSend(msg)
}

// Subscribe wires the mailer to paid order events.
func (m *Mailer) Subscribe(bus *events.Bus) error {
	return bus.SubscribeOrderPaid(func(ev events.OrderPaid) {
		if err := m.SendOrderPaid(ev); err != nil {
			zap.L().Error("failed to send order notification",
				zap.Int64("order_id", ev.OrderID), zap.Error(err))
		}
	})
}
