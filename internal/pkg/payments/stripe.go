package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/amparoassist/amparo/internal/pkg/env"
)

const defaultStripeAPIBaseURL = "https://api.stripe.com/v1"

// StripeClient implements Client against the Stripe REST API using
// form-encoded requests.
type StripeClient struct {
	SecretKey  string
	APIBaseURL string
	SuccessURL string
	CancelURL  string

	HTTPClient *http.Client
}

// NewStripeClientFromEnv builds a client from environment configuration.
func NewStripeClientFromEnv() *StripeClient {
	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	successURL := strings.TrimSpace(env.GetEnv("STRIPE_SUCCESS_URL", ""))
	cancelURL := strings.TrimSpace(env.GetEnv("STRIPE_CANCEL_URL", ""))
	if successURL == "" && base != "" {
		successURL = base + "/obrigado"
	}
	if cancelURL == "" && base != "" {
		cancelURL = base + "/planos"
	}

	return &StripeClient{
		SecretKey:  strings.TrimSpace(env.GetEnv("STRIPE_SECRET_KEY", "")),
		APIBaseURL: strings.TrimRight(env.GetEnv("STRIPE_API_BASE_URL", defaultStripeAPIBaseURL), "/"),
		SuccessURL: successURL,
		CancelURL:  cancelURL,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *StripeClient) CreateCheckoutSession(ctx context.Context, priceID, email string, metadata map[string]string) (*CheckoutSession, error) {
	if strings.TrimSpace(priceID) == "" {
		return nil, errors.New("price id is required")
	}

	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("line_items[0][price]", priceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("customer_email", strings.TrimSpace(email))
	form.Set("success_url", c.SuccessURL)
	form.Set("cancel_url", c.CancelURL)
	for k, v := range metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
		form.Set(fmt.Sprintf("subscription_data[metadata][%s]", k), v)
	}

	var out struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := c.postForm(ctx, "/checkout/sessions", form, &out); err != nil {
		return nil, err
	}
	return &CheckoutSession{ID: out.ID, URL: out.URL}, nil
}

func (c *StripeClient) ListInvoices(ctx context.Context, subscriptionID string) ([]ProcessorInvoice, error) {
	if strings.TrimSpace(subscriptionID) == "" {
		return nil, errors.New("subscription id is required")
	}

	q := url.Values{}
	q.Set("subscription", subscriptionID)
	q.Set("limit", "100")

	var out struct {
		Data []stripeInvoice `json:"data"`
	}
	if err := c.get(ctx, "/invoices?"+q.Encode(), &out); err != nil {
		return nil, err
	}

	invoices := make([]ProcessorInvoice, 0, len(out.Data))
	for _, in := range out.Data {
		invoices = append(invoices, in.toProcessorInvoice())
	}
	return invoices, nil
}

func (c *StripeClient) CreatePixCharge(ctx context.Context, in ChargeInput) (*PixInstrument, error) {
	form := chargeForm(in, "pix")

	var out struct {
		NextAction struct {
			PixDisplayQRCode struct {
				Data             string `json:"data"`
				HostedInstrURL   string `json:"hosted_instructions_url"`
				ImageURLPNG      string `json:"image_url_png"`
				ExpiresAtEpochMS int64  `json:"expires_at"`
			} `json:"pix_display_qr_code"`
		} `json:"next_action"`
	}
	if err := c.postForm(ctx, "/payment_intents", form, &out); err != nil {
		return nil, err
	}

	code := strings.TrimSpace(out.NextAction.PixDisplayQRCode.Data)
	if code == "" {
		return nil, errors.New("processor returned no pix payload")
	}
	qrURL := out.NextAction.PixDisplayQRCode.ImageURLPNG
	if qrURL == "" {
		qrURL = out.NextAction.PixDisplayQRCode.HostedInstrURL
	}
	return &PixInstrument{Code: code, QRCodeURL: qrURL}, nil
}

func (c *StripeClient) CreateBoletoCharge(ctx context.Context, in ChargeInput) (*BoletoInstrument, error) {
	form := chargeForm(in, "boleto")

	var out struct {
		NextAction struct {
			BoletoDisplayDetails struct {
				Number           string `json:"number"`
				HostedVoucherURL string `json:"hosted_voucher_url"`
			} `json:"boleto_display_details"`
		} `json:"next_action"`
	}
	if err := c.postForm(ctx, "/payment_intents", form, &out); err != nil {
		return nil, err
	}

	number := strings.TrimSpace(out.NextAction.BoletoDisplayDetails.Number)
	if number == "" {
		return nil, errors.New("processor returned no boleto details")
	}
	return &BoletoInstrument{
		VoucherURL:    out.NextAction.BoletoDisplayDetails.HostedVoucherURL,
		DigitableLine: number,
	}, nil
}

func (c *StripeClient) CreateProduct(ctx context.Context, name, description string) (string, error) {
	form := url.Values{}
	form.Set("name", strings.TrimSpace(name))
	if strings.TrimSpace(description) != "" {
		form.Set("description", strings.TrimSpace(description))
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := c.postForm(ctx, "/products", form, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *StripeClient) CreatePrice(ctx context.Context, productID string, amountCents int64, interval string) (string, error) {
	form := url.Values{}
	form.Set("product", productID)
	form.Set("unit_amount", strconv.FormatInt(amountCents, 10))
	form.Set("currency", "brl")
	form.Set("recurring[interval]", interval)

	var out struct {
		ID string `json:"id"`
	}
	if err := c.postForm(ctx, "/prices", form, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func chargeForm(in ChargeInput, method string) url.Values {
	currency := strings.ToLower(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "brl"
	}
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(in.AmountCents, 10))
	form.Set("currency", currency)
	form.Set("payment_method_types[]", method)
	form.Set("confirm", "true")
	form.Set("payment_method_data[type]", method)
	form.Set("metadata[invoice_ref]", in.InvoiceRef)
	form.Set("metadata[subscription_ref]", in.SubscriptionRef)
	return form
}

type stripeInvoice struct {
	ID               string `json:"id"`
	Subscription     string `json:"subscription"`
	AmountPaid       int64  `json:"amount_paid"`
	Paid             bool   `json:"paid"`
	DueDate          *int64 `json:"due_date"`
	Created          int64  `json:"created"`
	HostedInvoiceURL string `json:"hosted_invoice_url"`
	InvoicePDF       string `json:"invoice_pdf"`
}

func (in stripeInvoice) toProcessorInvoice() ProcessorInvoice {
	out := ProcessorInvoice{
		ID:               in.ID,
		SubscriptionID:   in.Subscription,
		AmountPaid:       in.AmountPaid,
		Paid:             in.Paid,
		Created:          time.Unix(in.Created, 0),
		HostedInvoiceURL: in.HostedInvoiceURL,
		InvoicePDF:       in.InvoicePDF,
	}
	if in.DueDate != nil {
		t := time.Unix(*in.DueDate, 0)
		out.DueDate = &t
	}
	return out
}

func (c *StripeClient) postForm(ctx context.Context, path string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIBaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

func (c *StripeClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIBaseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *StripeClient) do(req *http.Request, out interface{}) error {
	if strings.TrimSpace(c.SecretKey) == "" {
		return errors.New("STRIPE_SECRET_KEY is not configured")
	}
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("stripe request failed: status=%d body=%s", resp.StatusCode, string(body))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}
