package billing

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPaidInvoice(t *testing.T, svc *Service, repo *fakeRepo) (uint, string) {
	t.Helper()
	checkout := checkoutEvent("evt_1", "a@x.com", "sub_1")
	require.NoError(t, svc.HandleEvent(context.Background(), checkout, signBody(checkout)))
	paid := invoicePaidEvent("evt_2", "in_1", "sub_1", 4990)
	require.NoError(t, svc.HandleEvent(context.Background(), paid, signBody(paid)))
	return repo.invoices["in_1"].ID, repo.accounts["a@x.com"].ID
}

func TestGenerateInstrumentsFromProcessor(t *testing.T) {
	svc, repo, proc, _ := newTestService(t)
	invoiceID, accountID := setupPaidInvoice(t, svc, repo)

	out, err := svc.GenerateInstruments(context.Background(), invoiceID, accountID)
	require.NoError(t, err)
	assert.Equal(t, InstrumentSourceProcessor, out.Source)
	assert.Equal(t, "00020126pix-in_1", out.PixCode)
	assert.NotEmpty(t, out.BoletoDigitableLine)
	assert.Equal(t, 1, proc.pixCalls)
	assert.Equal(t, 1, proc.boletoCalls)

	// Generated values are persisted on the invoice.
	stored := repo.invoices["in_1"]
	assert.Equal(t, out.PixCode, stored.PixCode)
	assert.Equal(t, out.BoletoDigitableLine, stored.BoletoDigitableLine)
}

func TestGenerateInstrumentsSecondCallIsCached(t *testing.T) {
	svc, repo, proc, _ := newTestService(t)
	invoiceID, accountID := setupPaidInvoice(t, svc, repo)

	first, err := svc.GenerateInstruments(context.Background(), invoiceID, accountID)
	require.NoError(t, err)

	second, err := svc.GenerateInstruments(context.Background(), invoiceID, accountID)
	require.NoError(t, err)
	assert.Equal(t, InstrumentSourceCached, second.Source)
	assert.Equal(t, first.PixCode, second.PixCode)
	assert.Equal(t, first.BoletoDigitableLine, second.BoletoDigitableLine)

	// The processor is not consulted again once values are stored.
	assert.Equal(t, 1, proc.pixCalls)
	assert.Equal(t, 1, proc.boletoCalls)
}

func TestGenerateInstrumentsFallsBackToSynthesized(t *testing.T) {
	svc, repo, proc, _ := newTestService(t)
	proc.failCharges = true
	invoiceID, accountID := setupPaidInvoice(t, svc, repo)

	out, err := svc.GenerateInstruments(context.Background(), invoiceID, accountID)
	require.NoError(t, err)
	assert.Equal(t, InstrumentSourceSynthesized, out.Source)
	assert.True(t, len(out.PixCode) > 20)
	assert.Len(t, out.BoletoDigitableLine, 47)

	// Synthesized values are persisted and cached like real ones.
	second, err := svc.GenerateInstruments(context.Background(), invoiceID, accountID)
	require.NoError(t, err)
	assert.Equal(t, InstrumentSourceCached, second.Source)
	assert.Equal(t, out.PixCode, second.PixCode)
}

func TestGenerateInstrumentsKeepsMintedChargeOnPartialFailure(t *testing.T) {
	svc, repo, proc, _ := newTestService(t)
	proc.failPix = true
	invoiceID, accountID := setupPaidInvoice(t, svc, repo)

	out, err := svc.GenerateInstruments(context.Background(), invoiceID, accountID)
	require.NoError(t, err)
	assert.Equal(t, InstrumentSourceSynthesized, out.Source)

	// The boleto the processor minted is kept, only the pix is synthesized.
	assert.Equal(t, "https://voucher/in_1", out.BoletoURL)
	assert.Len(t, out.BoletoDigitableLine, 47)
	assert.NotEqual(t, "00020126pix-in_1", out.PixCode)
	assert.Contains(t, out.PixCode, "br.gov.bcb.pix")
}

func TestGenerateInstrumentsForeignInvoiceReadsAsNotFound(t *testing.T) {
	svc, repo, proc, _ := newTestService(t)
	invoiceID, _ := setupPaidInvoice(t, svc, repo)

	out, err := svc.GenerateInstruments(context.Background(), invoiceID, "someone-else")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, out)
	assert.Zero(t, proc.pixCalls)
}

func TestGenerateInstrumentsMissingInvoice(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.GenerateInstruments(context.Background(), 999, "acct")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSynthesizePixCodeStructure(t *testing.T) {
	code := SynthesizePixCode("49.90", "in_123")

	assert.True(t, len(code) > 40)
	assert.Equal(t, "000201", code[:6])
	assert.Contains(t, code, "br.gov.bcb.pix")
	assert.Contains(t, code, "540549.90") // amount field: tag 54, length 05

	// The last four characters are the CRC over everything before them.
	payload := code[:len(code)-4]
	want := crc16CCITT([]byte(payload))
	got, err := strconv.ParseUint(code[len(code)-4:], 16, 16)
	require.NoError(t, err)
	assert.Equal(t, want, uint16(got))
}

func TestSynthesizeBoletoLineStructure(t *testing.T) {
	line := SynthesizeBoletoLine(4990)
	require.Len(t, line, 47)
	for _, r := range line {
		assert.True(t, r >= '0' && r <= '9')
	}
	assert.Equal(t, "34191", line[:5])
	assert.Equal(t, "0000004990", line[37:])

	// Per-field mod-10 check digits hold.
	assert.Equal(t, mod10Digit(line[:9]), string(line[9]))
	assert.Equal(t, mod10Digit(line[10:20]), string(line[20]))
	assert.Equal(t, mod10Digit(line[21:31]), string(line[31]))
}
