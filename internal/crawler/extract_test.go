package crawler

import (
	"slices"
	"testing"
)

func TestExtractorExtract(t *testing.T) {
	t.Parallel()

	e, err := NewExtractor("", "")
	if err != nil {
		t.Fatalf("NewExtractor() error = %v", err)
	}

	tests := []struct {
		name       string
		text       string
		wantEmails []string
		wantPhones []string
	}{
		{
			name:       "email is lowercased",
			text:       "Mail ons: Info@Example.NL",
			wantEmails: []string{"info@example.nl"},
		},
		{
			name:       "duplicate emails collapse",
			text:       "info@example.nl INFO@example.nl sales@example.nl",
			wantEmails: []string{"info@example.nl", "sales@example.nl"},
		},
		{
			name:       "national phone with space",
			text:       "Bel 010 1234567 voor informatie",
			wantPhones: []string{"010 1234567"},
		},
		{
			name:       "national phone with dash",
			text:       "Tel: 020-1234567",
			wantPhones: []string{"020-1234567"},
		},
		{
			name:       "international phone",
			text:       "Phone +31 10 123 4567",
			wantPhones: []string{"+31 10 123 4567"},
		},
		{
			name:       "international phone with trunk zero",
			text:       "+31 (0)10 1234567",
			wantPhones: []string{"+31 (0)10 1234567"},
		},
		{
			name:       "0031 prefix",
			text:       "0031 20 1234567",
			wantPhones: []string{"0031 20 1234567"},
		},
		{
			name:       "mobile number",
			text:       "06 12345678",
			wantPhones: []string{"06 12345678"},
		},
		{
			name:       "same number in two formats counts once",
			text:       "010 1234567 of 0101234567",
			wantPhones: []string{"010 1234567"},
		},
		{
			name: "too few digits",
			text: "010 12345",
		},
		{
			name: "nothing",
			text: "Welkom op onze website",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := e.Extract(tt.text)
			if !slices.Equal(got.Emails, tt.wantEmails) {
				t.Errorf("Emails = %v, want %v", got.Emails, tt.wantEmails)
			}
			if !slices.Equal(got.Phones, tt.wantPhones) {
				t.Errorf("Phones = %v, want %v", got.Phones, tt.wantPhones)
			}
		})
	}
}

func TestNewExtractorInvalidPattern(t *testing.T) {
	t.Parallel()

	if _, err := NewExtractor("[", ""); err == nil {
		t.Error("expected error for invalid email pattern")
	}
	if _, err := NewExtractor("", "("); err == nil {
		t.Error("expected error for invalid phone pattern")
	}
}

func TestExtractorCustomPattern(t *testing.T) {
	t.Parallel()

	e, err := NewExtractor("", `\b\d{3}-\d{4}\b`)
	if err != nil {
		t.Fatalf("NewExtractor() error = %v", err)
	}
	got := e.Extract("call 555-1234 now")
	if !slices.Equal(got.Phones, []string{"555-1234"}) {
		t.Errorf("Phones = %v, want [555-1234]", got.Phones)
	}
}

func TestPhoneKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "010 1234567", want: "0101234567"},
		{in: "010-123 4567", want: "0101234567"},
		{in: "+31 (0)10 1234567", want: "+310101234567"},
		{in: " +31 10 1234567 ", want: "+31101234567"},
		{in: "+", want: ""},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			if got := PhoneKey(tt.in); got != tt.want {
				t.Errorf("PhoneKey(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
