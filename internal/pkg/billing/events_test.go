package billing

import "testing"

func TestCentsToAmount(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{in: 0, want: "0.00"},
		{in: 5, want: "0.05"},
		{in: 4990, want: "49.90"},
		{in: 100000, want: "1000.00"},
		{in: -150, want: "-1.50"},
	}

	for _, tt := range tests {
		if got := CentsToAmount(tt.in); got != tt.want {
			t.Fatalf("CentsToAmount(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAmountToCents(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{in: "49.90", want: 4990},
		{in: "49.9", want: 4990},
		{in: "49", want: 4900},
		{in: "0.05", want: 5},
		{in: "-1.50", want: -150},
	}

	for _, tt := range tests {
		got, err := AmountToCents(tt.in)
		if err != nil {
			t.Fatalf("AmountToCents(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("AmountToCents(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}

	if _, err := AmountToCents("not a number"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestParseEventRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "not json", `{"data":{}}`} {
		if _, err := ParseEvent([]byte(raw)); err == nil {
			t.Fatalf("ParseEvent(%q): expected error", raw)
		}
	}
}

func TestAsCheckoutCompletedFallsBackToCustomerEmail(t *testing.T) {
	ev, err := ParseEvent([]byte(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {"object": {
			"customer": "cus_1",
			"customer_email": "Upper@Case.Com",
			"subscription": "sub_1"
		}}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	out, err := ev.AsCheckoutCompleted()
	if err != nil {
		t.Fatal(err)
	}
	if out.CustomerEmail != "upper@case.com" {
		t.Fatalf("email = %q, want lowercased fallback", out.CustomerEmail)
	}
	if out.PlanID != 0 {
		t.Fatalf("plan id = %d, want 0 when metadata missing", out.PlanID)
	}
}

func TestAsSubscriptionChangedDefaultsDeletedStatus(t *testing.T) {
	ev, err := ParseEvent([]byte(`{
		"id": "evt_1",
		"type": "customer.subscription.deleted",
		"data": {"object": {"id": "sub_1"}}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	out, err := ev.AsSubscriptionChanged()
	if err != nil {
		t.Fatal(err)
	}
	if out.Status != "canceled" {
		t.Fatalf("status = %q, want canceled", out.Status)
	}
}
