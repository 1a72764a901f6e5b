package payment

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/aliskhannn/prompt-study-bot/internal/domain/entities"
)

const testSecret = "whsec_test"

func sign(t *testing.T, payload string) string {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    testSecret,
		Timestamp: time.Now(),
	})
	return signed.Header
}

func eventJSON(id, typ, object string) string {
	return fmt.Sprintf(`{"id":%q,"object":"event","type":%q,"data":{"object":%s}}`, id, typ, object)
}

func TestParseWebhook(t *testing.T) {
	client := NewStripeClient(Config{WebhookSecret: testSecret})

	tests := []struct {
		name    string
		payload string
		want    entities.PaymentEvent
	}{
		{
			name: "checkout completed",
			payload: eventJSON("evt_1", "checkout.session.completed",
				`{"id":"cs_1","object":"checkout.session","client_reference_id":"12345","subscription":"sub_1","customer":"cus_1"}`),
			want: entities.PaymentEvent{
				ID:                     "evt_1",
				Type:                   entities.PaymentCheckoutCompleted,
				ProviderType:           "checkout.session.completed",
				UserID:                 "12345",
				ProviderSubscriptionID: "sub_1",
				ProviderCustomerID:     "cus_1",
			},
		},
		{
			name: "checkout falls back to metadata",
			payload: eventJSON("evt_2", "checkout.session.completed",
				`{"id":"cs_2","object":"checkout.session","metadata":{"user_id":"777"},"subscription":"sub_2"}`),
			want: entities.PaymentEvent{
				ID:                     "evt_2",
				Type:                   entities.PaymentCheckoutCompleted,
				ProviderType:           "checkout.session.completed",
				UserID:                 "777",
				ProviderSubscriptionID: "sub_2",
			},
		},
		{
			name: "subscription deleted",
			payload: eventJSON("evt_3", "customer.subscription.deleted",
				`{"id":"sub_1","object":"subscription","customer":"cus_1"}`),
			want: entities.PaymentEvent{
				ID:                     "evt_3",
				Type:                   entities.PaymentSubscriptionDeleted,
				ProviderType:           "customer.subscription.deleted",
				ProviderSubscriptionID: "sub_1",
				ProviderCustomerID:     "cus_1",
			},
		},
		{
			name: "invoice failed",
			payload: eventJSON("evt_4", "invoice.payment_failed",
				`{"id":"in_1","object":"invoice","subscription":"sub_1","customer":"cus_1"}`),
			want: entities.PaymentEvent{
				ID:                     "evt_4",
				Type:                   entities.PaymentInvoiceFailed,
				ProviderType:           "invoice.payment_failed",
				ProviderSubscriptionID: "sub_1",
				ProviderCustomerID:     "cus_1",
			},
		},
		{
			name:    "unhandled type",
			payload: eventJSON("evt_5", "customer.created", `{"id":"cus_1","object":"customer"}`),
			want: entities.PaymentEvent{
				ID:           "evt_5",
				Type:         entities.PaymentIgnored,
				ProviderType: "customer.created",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := client.ParseWebhook([]byte(tt.payload), sign(t, tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseWebhook_BadSignature(t *testing.T) {
	client := NewStripeClient(Config{WebhookSecret: testSecret})
	payload := eventJSON("evt_1", "checkout.session.completed", `{"id":"cs_1"}`)

	_, err := client.ParseWebhook([]byte(payload), "t=1,v1=deadbeef")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestCheckoutURL(t *testing.T) {
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		form, _ = url.ParseQuery(string(body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test","object":"checkout.session","url":"https://checkout.stripe.test/cs_test"}`))
	}))
	defer srv.Close()

	stripe.SetBackend(stripe.APIBackend, stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL: stripe.String(srv.URL),
	}))
	defer stripe.SetBackend(stripe.APIBackend, nil)

	client := NewStripeClient(Config{SecretKey: "sk_test", PriceID: "price_1", AppURL: "https://bot.test/"})

	got, err := client.CheckoutURL(context.Background(), "12345")
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.test/cs_test", got)

	assert.Equal(t, "subscription", form.Get("mode"))
	assert.Equal(t, "12345", form.Get("client_reference_id"))
	assert.Equal(t, "12345", form.Get("metadata[user_id]"))
	assert.Equal(t, "price_1", form.Get("line_items[0][price]"))
	assert.Equal(t, "https://bot.test/billing/success", form.Get("success_url"))
}
