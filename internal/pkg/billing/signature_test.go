package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func sign(secret, timestamp string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + "."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	secret := "whsec_abc"
	ts := "1700000000"
	header := "t=" + ts + ",v1=" + sign(secret, ts, payload)

	if !VerifyWebhookSignature(payload, header, secret) {
		t.Fatal("expected valid signature to verify")
	}
}

func TestVerifyWebhookSignatureRejects(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	secret := "whsec_abc"
	ts := "1700000000"
	good := sign(secret, ts, payload)

	tests := []struct {
		name    string
		payload []byte
		header  string
		secret  string
	}{
		{name: "missing header", payload: payload, header: "", secret: secret},
		{name: "missing secret", payload: payload, header: "t=" + ts + ",v1=" + good, secret: ""},
		{name: "wrong secret", payload: payload, header: "t=" + ts + ",v1=" + sign("whsec_other", ts, payload), secret: secret},
		{name: "tampered payload", payload: []byte(`{"id":"evt_2"}`), header: "t=" + ts + ",v1=" + good, secret: secret},
		{name: "tampered timestamp", payload: payload, header: "t=1700000001,v1=" + good, secret: secret},
		{name: "no v1 entry", payload: payload, header: "t=" + ts, secret: secret},
		{name: "garbage header", payload: payload, header: "not-a-signature", secret: secret},
		{name: "non-hex v1", payload: payload, header: "t=" + ts + ",v1=zzzz", secret: secret},
	}

	for _, tt := range tests {
		if VerifyWebhookSignature(tt.payload, tt.header, tt.secret) {
			t.Fatalf("%s: expected verification to fail", tt.name)
		}
	}
}

func TestVerifyWebhookSignatureAcceptsRotatedSecrets(t *testing.T) {
	payload := []byte(`{}`)
	secret := "whsec_new"
	ts := "1700000000"
	oldSig := sign("whsec_old", ts, payload)
	newSig := sign(secret, ts, payload)
	header := "t=" + ts + ",v1=" + oldSig + ",v1=" + newSig

	if !VerifyWebhookSignature(payload, header, secret) {
		t.Fatal("expected one matching v1 entry to verify")
	}
}
