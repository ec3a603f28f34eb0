package billing

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

// Event types the reconciler dispatches on. Everything else is acknowledged
// and ignored.
const (
	EventCheckoutCompleted       = "checkout.session.completed"
	EventSubscriptionUpdated     = "customer.subscription.updated"
	EventSubscriptionDeleted     = "customer.subscription.deleted"
	EventInvoicePaymentSucceeded = "invoice.payment_succeeded"
)

var ErrInvalidPayload = errors.New("invalid event payload")

// Event is the processor's webhook envelope.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// ParseEvent decodes the webhook envelope from the raw body.
func ParseEvent(raw []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, ErrInvalidPayload
	}
	if ev.Type == "" {
		return nil, ErrInvalidPayload
	}
	return &ev, nil
}

// CheckoutCompleted carries the data needed to provision access after a
// successful hosted checkout.
type CheckoutCompleted struct {
	CustomerEmail        string
	StripeCustomerID     string
	StripeSubscriptionID string
	PlanID               uint
}

func (e *Event) AsCheckoutCompleted() (*CheckoutCompleted, error) {
	var obj struct {
		Customer        string `json:"customer"`
		CustomerEmail   string `json:"customer_email"`
		CustomerDetails struct {
			Email string `json:"email"`
		} `json:"customer_details"`
		Subscription string            `json:"subscription"`
		Metadata     map[string]string `json:"metadata"`
	}
	if err := json.Unmarshal(e.Data.Object, &obj); err != nil {
		return nil, ErrInvalidPayload
	}

	email := strings.TrimSpace(obj.CustomerDetails.Email)
	if email == "" {
		email = strings.TrimSpace(obj.CustomerEmail)
	}
	if email == "" || obj.Subscription == "" {
		return nil, ErrInvalidPayload
	}

	out := &CheckoutCompleted{
		CustomerEmail:        strings.ToLower(email),
		StripeCustomerID:     obj.Customer,
		StripeSubscriptionID: obj.Subscription,
	}
	if raw, ok := obj.Metadata["plan_id"]; ok {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			out.PlanID = uint(id)
		}
	}
	return out, nil
}

// SubscriptionChanged carries a lifecycle update for an existing external
// subscription.
type SubscriptionChanged struct {
	StripeSubscriptionID string
	Status               string
	CancelAtPeriodEnd    bool
	CanceledAt           *time.Time
}

func (e *Event) AsSubscriptionChanged() (*SubscriptionChanged, error) {
	var obj struct {
		ID                string `json:"id"`
		Status            string `json:"status"`
		CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
		CanceledAt        *int64 `json:"canceled_at"`
	}
	if err := json.Unmarshal(e.Data.Object, &obj); err != nil {
		return nil, ErrInvalidPayload
	}
	if obj.ID == "" {
		return nil, ErrInvalidPayload
	}

	out := &SubscriptionChanged{
		StripeSubscriptionID: obj.ID,
		Status:               strings.ToLower(strings.TrimSpace(obj.Status)),
		CancelAtPeriodEnd:    obj.CancelAtPeriodEnd,
	}
	if e.Type == EventSubscriptionDeleted && out.Status == "" {
		out.Status = "canceled"
	}
	if obj.CanceledAt != nil {
		t := time.Unix(*obj.CanceledAt, 0)
		out.CanceledAt = &t
	}
	return out, nil
}

// InvoicePaid carries a settled invoice delivered by the processor.
type InvoicePaid struct {
	StripeInvoiceID      string
	StripeSubscriptionID string
	AmountPaid           int64 // minor units
	DueDate              *time.Time
	Created              time.Time
	HostedInvoiceURL     string
	InvoicePDF           string
	CollectionMethod     string
	PaymentIntentID      string
}

func (e *Event) AsInvoicePaid() (*InvoicePaid, error) {
	var obj struct {
		ID               string `json:"id"`
		Subscription     string `json:"subscription"`
		AmountPaid       int64  `json:"amount_paid"`
		DueDate          *int64 `json:"due_date"`
		Created          int64  `json:"created"`
		HostedInvoiceURL string `json:"hosted_invoice_url"`
		InvoicePDF       string `json:"invoice_pdf"`
		CollectionMethod string `json:"collection_method"`
		PaymentIntent    string `json:"payment_intent"`
	}
	if err := json.Unmarshal(e.Data.Object, &obj); err != nil {
		return nil, ErrInvalidPayload
	}
	if obj.ID == "" {
		return nil, ErrInvalidPayload
	}

	out := &InvoicePaid{
		StripeInvoiceID:      obj.ID,
		StripeSubscriptionID: obj.Subscription,
		AmountPaid:           obj.AmountPaid,
		Created:              time.Unix(obj.Created, 0),
		HostedInvoiceURL:     obj.HostedInvoiceURL,
		InvoicePDF:           obj.InvoicePDF,
		CollectionMethod:     obj.CollectionMethod,
		PaymentIntentID:      obj.PaymentIntent,
	}
	if obj.DueDate != nil {
		t := time.Unix(*obj.DueDate, 0)
		out.DueDate = &t
	}
	return out, nil
}

// CentsToAmount converts minor units to the major-unit decimal string used
// by the journal.
func CentsToAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + strconv.FormatInt(cents/100, 10) + "." + pad2(cents%100)
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}

// AmountToCents parses a major-unit decimal string back to minor units.
func AmountToCents(amount string) (int64, error) {
	s := strings.TrimSpace(amount)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	switch len(frac) {
	case 0:
		frac = "00"
	case 1:
		frac += "0"
	case 2:
	default:
		frac = frac[:2]
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, err
	}
	cents := w*100 + f
	if neg {
		cents = -cents
	}
	return cents, nil
}
