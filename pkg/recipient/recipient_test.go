package recipient

import "testing"

func TestDeriveName(t *testing.T) {
	cases := []struct {
		email string
		want  string
	}{
		{"jane.doe@example.com", "Jane Doe"},
		{"bob@example.com", "Bob"},
		{"ana_maria.silva@example.com", "Ana Silva"},
		{"x+filter@example.com", "X Filter"},
		{"@example.com", "Certificate Holder"},
		{"", "Certificate Holder"},
	}
	for _, tc := range cases {
		if got := DeriveName(tc.email); got != tc.want {
			t.Errorf("DeriveName(%q) = %q, want %q", tc.email, got, tc.want)
		}
	}
}
