package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merchkit/storeadmin/internal/events"
)

type stubSettings map[string]string

func (s stubSettings) GetSettingsStringValue(category, key string) string {
	return s[category+"."+key]
}

func TestMailer_SmtpConfigured(t *testing.T) {
	assert.False(t, NewMailer(stubSettings{}).smtpConfigured())
	assert.False(t, NewMailer(stubSettings{"smtp.host": "mail.test"}).smtpConfigured())
	assert.False(t, NewMailer(stubSettings{"notify.order_email": "ops@example.com"}).smtpConfigured())
	assert.True(t, NewMailer(stubSettings{
		"smtp.host":          "mail.test",
		"notify.order_email": "ops@example.com",
	}).smtpConfigured())
}

func TestMailer_DropsMailWhenUnconfigured(t *testing.T) {
	m := NewMailer(stubSettings{})
	require.NoError(t, m.SendOrderPaid(events.OrderPaid{OrderID: 1, TotalCents: 1999}))
}

func TestMailer_SubscribeSurvivesUnconfiguredSettings(t *testing.T) {
	bus := events.NewBus()
	require.NoError(t, NewMailer(stubSettings{}).Subscribe(bus))

	bus.PublishOrderPaid(events.OrderPaid{OrderID: 9, TotalCents: 500})
	bus.WaitAsync()
}
