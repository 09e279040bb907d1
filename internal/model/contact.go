package model

import "time"

// ContactKind identifies the type of a harvested contact value.
type ContactKind int

const (
	// KindEmail marks an email address.
	KindEmail ContactKind = iota

	// KindPhone marks a phone number.
	KindPhone
)

// String returns the lowercase name of the kind, which is also the
// column name used in CSV output ("email" or "phone").
func (k ContactKind) String() string {
	switch k {
	case KindEmail:
		return "email"
	case KindPhone:
		return "phone"
	default:
		return "unknown"
	}
}

// ParseContactKind converts "email" or "phone" back to a ContactKind.
// The second return value is false for any other input.
func ParseContactKind(s string) (ContactKind, bool) {
	switch s {
	case "email":
		return KindEmail, true
	case "phone":
		return KindPhone, true
	default:
		return 0, false
	}
}

// ContactRecord is a single contact value discovered on a page.
// Records are append-only: each one is handed to the output sink the moment
// it is discovered so partial results survive a crash mid-crawl.
type ContactRecord struct {
	// Company is the name of the company being crawled.
	Company string `json:"company"`

	// Site is the canonical seed URL of the company website.
	Site string `json:"site"`

	// BaseDomain is the registrable domain of the company website.
	BaseDomain string `json:"base_domain"`

	// Page is the canonical URL of the page the value was found on.
	Page string `json:"page"`

	// Value is the email address or phone number.
	Value string `json:"value"`

	// Kind tells whether Value is an email or a phone number.
	Kind ContactKind `json:"kind"`

	// FoundAt is the time the value was discovered.
	FoundAt time.Time `json:"found_at"`
}
