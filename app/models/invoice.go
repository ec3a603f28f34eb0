package models

import "time"

const (
	InvoiceStatusPending = "pending"
	InvoiceStatusPaid    = "paid"
)

// Invoice records one billing period sourced from processor events. The
// unique index on StripeInvoiceID keeps duplicate event delivery from
// creating a second row. The pix/boleto fields are write-once: once
// populated they are returned as-is on every later request.
type Invoice struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	SubscriptionID      uint       `gorm:"not null;index" json:"subscription_id"`
	StripeInvoiceID     string     `gorm:"type:varchar(191);not null;uniqueIndex" json:"stripe_invoice_id"`
	Amount              string     `gorm:"type:varchar(20);not null" json:"amount"`
	DueDate             *time.Time `gorm:"type:timestamp;default:null" json:"due_date,omitempty"`
	Status              string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	HostedInvoiceURL    string     `gorm:"type:varchar(500)" json:"hosted_invoice_url"`
	InvoicePDFURL       string     `gorm:"type:varchar(500)" json:"invoice_pdf_url"`
	PixCode             string     `gorm:"type:text" json:"pix_code,omitempty"`
	BoletoURL           string     `gorm:"type:varchar(500)" json:"boleto_url,omitempty"`
	BoletoDigitableLine string     `gorm:"type:varchar(60)" json:"boleto_digitable_line,omitempty"`
	CreatedAt           time.Time  `gorm:"autoCreateTime;index" json:"created_at"`

	Subscription Subscription `gorm:"foreignKey:SubscriptionID" json:"-"`
}

// HasInstruments reports whether alternate payment instruments were already
// generated for this invoice.
func (i *Invoice) HasInstruments() bool {
	return i.PixCode != "" && i.BoletoDigitableLine != ""
}
