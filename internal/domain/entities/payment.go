package entities

// PaymentEventType is a provider-neutral kind of billing event.
type PaymentEventType string

const (
	PaymentCheckoutCompleted   PaymentEventType = "checkout_completed"
	PaymentInvoiceSucceeded    PaymentEventType = "invoice_succeeded"
	PaymentSubscriptionDeleted PaymentEventType = "subscription_deleted"
	PaymentInvoiceFailed       PaymentEventType = "invoice_failed"
	PaymentIgnored             PaymentEventType = "ignored"
)

// PaymentEvent is a verified webhook event mapped onto the fields the bot cares about.
type PaymentEvent struct {
	ID                     string
	Type                   PaymentEventType
	ProviderType           string // raw provider event type, kept for logging
	UserID                 string // set on checkout completion only
	ProviderSubscriptionID string
	ProviderCustomerID     string
}
