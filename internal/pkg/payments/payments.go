// Package payments talks to the external payment processor. The reconciler
// and controllers depend on the Client interface so tests can substitute
// fakes for the real HTTP client.
package payments

import (
	"context"
	"time"
)

// Client is the surface of the payment processor the platform consumes.
type Client interface {
	// CreateCheckoutSession starts a hosted checkout for a recurring price
	// and returns the URL the buyer is redirected to.
	CreateCheckoutSession(ctx context.Context, priceID, email string, metadata map[string]string) (*CheckoutSession, error)

	// ListInvoices returns the full invoice history of an external
	// subscription, used by the manual resync to backfill missed events.
	ListInvoices(ctx context.Context, subscriptionID string) ([]ProcessorInvoice, error)

	// CreatePixCharge requests a pix instrument for an existing invoice
	// amount, tagged for traceability.
	CreatePixCharge(ctx context.Context, in ChargeInput) (*PixInstrument, error)

	// CreateBoletoCharge requests a boleto voucher for an existing invoice
	// amount, tagged for traceability.
	CreateBoletoCharge(ctx context.Context, in ChargeInput) (*BoletoInstrument, error)

	// CreateProduct and CreatePrice provision catalog plans at the
	// processor (offline task, cmd/plansync).
	CreateProduct(ctx context.Context, name, description string) (string, error)
	CreatePrice(ctx context.Context, productID string, amountCents int64, interval string) (string, error)
}

// CheckoutSession is a started hosted checkout.
type CheckoutSession struct {
	ID  string
	URL string
}

// ProcessorInvoice is an invoice as reported by the processor's API.
type ProcessorInvoice struct {
	ID               string
	SubscriptionID   string
	AmountPaid       int64 // minor units
	Paid             bool
	DueDate          *time.Time
	Created          time.Time
	HostedInvoiceURL string
	InvoicePDF       string
}

// ChargeInput describes the instrument request for an existing invoice.
type ChargeInput struct {
	AmountCents     int64
	Currency        string
	InvoiceRef      string
	SubscriptionRef string
}

// PixInstrument is a scan-code style payment credential.
type PixInstrument struct {
	Code      string
	QRCodeURL string
}

// BoletoInstrument is a reference-number style payment voucher.
type BoletoInstrument struct {
	VoucherURL    string
	DigitableLine string
}
