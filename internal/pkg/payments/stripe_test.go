package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.Handler) (*StripeClient, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := &StripeClient{
		SecretKey:  "sk_test_123",
		APIBaseURL: srv.URL,
		SuccessURL: "https://amparo.test/obrigado",
		CancelURL:  "https://amparo.test/planos",
		HTTPClient: srv.Client(),
	}
	return c, srv
}

func TestCreateCheckoutSession(t *testing.T) {
	var gotForm map[string][]string
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/checkout/sessions", r.URL.Path)
		require.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		w.Write([]byte(`{"id":"cs_test_1","url":"https://checkout.stripe.com/pay/cs_test_1"}`))
	}))
	defer srv.Close()

	sess, err := c.CreateCheckoutSession(context.Background(), "price_123", "a@x.com", map[string]string{"plan_id": "2"})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", sess.ID)
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_test_1", sess.URL)
	assert.Equal(t, "subscription", gotForm["mode"][0])
	assert.Equal(t, "price_123", gotForm["line_items[0][price]"][0])
	assert.Equal(t, "2", gotForm["metadata[plan_id]"][0])
}

func TestListInvoices(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/invoices", r.URL.Path)
		require.Equal(t, "sub_1", r.URL.Query().Get("subscription"))
		w.Write([]byte(`{"data":[
			{"id":"in_1","subscription":"sub_1","amount_paid":4990,"paid":true,"created":1719792000,"due_date":1720396800,"hosted_invoice_url":"https://inv/1","invoice_pdf":"https://inv/1.pdf"},
			{"id":"in_2","subscription":"sub_1","amount_paid":0,"paid":false,"created":1722470400}
		]}`))
	}))
	defer srv.Close()

	invoices, err := c.ListInvoices(context.Background(), "sub_1")
	require.NoError(t, err)
	require.Len(t, invoices, 2)
	assert.Equal(t, "in_1", invoices[0].ID)
	assert.Equal(t, int64(4990), invoices[0].AmountPaid)
	assert.True(t, invoices[0].Paid)
	require.NotNil(t, invoices[0].DueDate)
	assert.Equal(t, time.Unix(1720396800, 0), *invoices[0].DueDate)
	assert.Nil(t, invoices[1].DueDate)
	assert.False(t, invoices[1].Paid)
}

func TestCreatePixCharge(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payment_intents", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "pix", r.PostForm.Get("payment_method_types[]"))
		assert.Equal(t, "in_1", r.PostForm.Get("metadata[invoice_ref]"))
		w.Write([]byte(`{"next_action":{"pix_display_qr_code":{"data":"00020126580014br.gov.bcb.pix","image_url_png":"https://qr/1.png"}}}`))
	}))
	defer srv.Close()

	pix, err := c.CreatePixCharge(context.Background(), ChargeInput{AmountCents: 4990, InvoiceRef: "in_1", SubscriptionRef: "sub_1"})
	require.NoError(t, err)
	assert.Equal(t, "00020126580014br.gov.bcb.pix", pix.Code)
	assert.Equal(t, "https://qr/1.png", pix.QRCodeURL)
}

func TestCreatePixChargeNoPayload(t *testing.T) {
	// Sandbox mode frequently returns an intent without a usable
	// next_action; the caller falls back to synthesized instruments.
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"pi_1","status":"requires_payment_method"}`))
	}))
	defer srv.Close()

	_, err := c.CreatePixCharge(context.Background(), ChargeInput{AmountCents: 4990})
	assert.Error(t, err)
}

func TestCreateBoletoCharge(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"next_action":{"boleto_display_details":{"number":"34191790010104351004791020150008291070026000","hosted_voucher_url":"https://voucher/1"}}}`))
	}))
	defer srv.Close()

	boleto, err := c.CreateBoletoCharge(context.Background(), ChargeInput{AmountCents: 4990})
	require.NoError(t, err)
	assert.Equal(t, "https://voucher/1", boleto.VoucherURL)
	assert.Len(t, boleto.DigitableLine, 44)
}

func TestRequestErrorSurfacesBody(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"message":"card declined"}}`))
	}))
	defer srv.Close()

	_, err := c.CreateCheckoutSession(context.Background(), "price_1", "a@x.com", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=402")
}
