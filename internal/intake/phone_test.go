package intake

import "testing"

func TestValidPhone(t *testing.T) {
	cases := map[string]bool{
		"0550123456":        true,
		"+213550123456":     true,
		"(0550) 12-34-56":   true,
		"abc":               false,
		"1234567":           false,
		"1234567890123456":  false,
		"++213550123456":    false,
		"٠٥٥٠١٢٣٤٥٦":        false,
		"":                  false,
		"+213 550 123 456 ": true,
	}
	for in, want := range cases {
		if got := ValidPhone(in); got != want {
			t.Errorf("ValidPhone(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"0550123456", "+213550123456"},
		{"+213550123456", "+213550123456"},
		{"550123456", "+213550123456"},
		{"213550123456", "+213550123456"},
		{"0550 12-34-56", "+213550123456"},
		{"+33 6 12 34 56 78", "+33612345678"},
	}
	for _, tc := range cases {
		if got := NormalizePhone(tc.in, ""); got != tc.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
	if got := NormalizePhone("0612345678", "33"); got != "+33612345678" {
		t.Errorf("custom country code not applied, got %q", got)
	}
}
