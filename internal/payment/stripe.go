// Package payment integrates the Stripe subscription checkout.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v79"
	portal "github.com/stripe/stripe-go/v79/billingportal/session"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/aliskhannn/prompt-study-bot/internal/domain/entities"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrInvalidPayload   = errors.New("invalid webhook payload")
)

// Config holds the Stripe settings.
type Config struct {
	SecretKey     string
	WebhookSecret string
	PriceID       string
	AppURL        string
}

// StripeClient creates checkout and portal sessions and verifies webhooks.
type StripeClient struct {
	webhookSecret string
	priceID       string
	appURL        string
}

func NewStripeClient(cfg Config) *StripeClient {
	stripe.Key = cfg.SecretKey

	return &StripeClient{
		webhookSecret: cfg.WebhookSecret,
		priceID:       cfg.PriceID,
		appURL:        strings.TrimRight(cfg.AppURL, "/"),
	}
}

// CheckoutURL creates a subscription checkout session referencing userID.
func (c *StripeClient) CheckoutURL(ctx context.Context, userID string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(c.priceID),
				Quantity: stripe.Int64(1),
			},
		},
		ClientReferenceID: stripe.String(userID),
		SuccessURL:        stripe.String(c.appURL + "/billing/success"),
		CancelURL:         stripe.String(c.appURL + "/billing/cancel"),
	}
	params.Context = ctx
	params.AddMetadata("user_id", userID)

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}

	return sess.URL, nil
}

// PortalURL creates a billing portal session for a Stripe customer.
func (c *StripeClient) PortalURL(ctx context.Context, customerID string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(c.appURL + "/billing"),
	}
	params.Context = ctx

	sess, err := portal.New(params)
	if err != nil {
		return "", fmt.Errorf("create portal session: %w", err)
	}

	return sess.URL, nil
}

// ParseWebhook verifies the signature and maps the event onto a PaymentEvent.
// Event types the bot does not handle come back as PaymentIgnored.
func (c *StripeClient) ParseWebhook(payload []byte, signature string) (entities.PaymentEvent, error) {
	event, err := webhook.ConstructEventWithOptions(
		payload,
		signature,
		c.webhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		return entities.PaymentEvent{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := entities.PaymentEvent{
		ID:           event.ID,
		Type:         entities.PaymentIgnored,
		ProviderType: string(event.Type),
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return out, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		out.Type = entities.PaymentCheckoutCompleted
		out.UserID = sess.ClientReferenceID
		if out.UserID == "" {
			out.UserID = sess.Metadata["user_id"]
		}
		if sess.Subscription != nil {
			out.ProviderSubscriptionID = sess.Subscription.ID
		}
		if sess.Customer != nil {
			out.ProviderCustomerID = sess.Customer.ID
		}

	case "invoice.payment_succeeded", "invoice.payment_failed":
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return out, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		out.Type = entities.PaymentInvoiceSucceeded
		if event.Type == "invoice.payment_failed" {
			out.Type = entities.PaymentInvoiceFailed
		}
		if inv.Subscription != nil {
			out.ProviderSubscriptionID = inv.Subscription.ID
		}
		if inv.Customer != nil {
			out.ProviderCustomerID = inv.Customer.ID
		}

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return out, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		out.Type = entities.PaymentSubscriptionDeleted
		out.ProviderSubscriptionID = sub.ID
		if sub.Customer != nil {
			out.ProviderCustomerID = sub.Customer.ID
		}
	}

	return out, nil
}
