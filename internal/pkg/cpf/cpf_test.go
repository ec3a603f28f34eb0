package cpf

import "testing"

func TestValidKnownGood(t *testing.T) {
	for _, digits := range []string{"52998224725", "11144477735"} {
		if !Valid(digits) {
			t.Fatalf("Valid(%q) = false, want true", digits)
		}
	}
}

func TestValidRejectsAllIdenticalDigits(t *testing.T) {
	for c := byte('0'); c <= '9'; c++ {
		digits := string(make([]byte, 0, 11))
		for i := 0; i < 11; i++ {
			digits += string(c)
		}
		if Valid(digits) {
			t.Fatalf("Valid(%q) = true, want false", digits)
		}
	}
}

func TestValidRejectsFlippedDigit(t *testing.T) {
	// Flipping the first digit changes the first weighted sum by a value
	// not divisible by 11, so the check digit no longer matches.
	if Valid("62998224725") {
		t.Fatal("expected tampered cpf to be rejected")
	}
	if Valid("52998224726") {
		t.Fatal("expected tampered check digit to be rejected")
	}
}

func TestValidRejectsWrongLength(t *testing.T) {
	for _, digits := range []string{"", "5299822472", "529982247250", "5299822472a"} {
		if Valid(digits) {
			t.Fatalf("Valid(%q) = true, want false", digits)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "529.982.247-25", want: "52998224725", ok: true},
		{in: "52998224725", want: "52998224725", ok: true},
		{in: "111.111.111-11", want: "", ok: false},
		{in: "not a cpf", want: "", ok: false},
	}

	for _, tt := range tests {
		got, ok := Normalize(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("Normalize(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
