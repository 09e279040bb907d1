package model

import "strings"

// Company is a single lead: a company name and the website to crawl.
// Name is the identity key used by the resume ledger and in all output rows.
// A Company is immutable once read from the input list.
type Company struct {
	// Name is the company name as it appears in the lead list.
	Name string `json:"name"`

	// SeedURL is the website of the company. It may lack a scheme
	// (e.g. "www.example.nl"); the crawler normalizes it.
	SeedURL string `json:"seed_url"`
}

// NewCompany creates a Company with surrounding whitespace trimmed from both fields.
func NewCompany(name, seedURL string) Company {
	return Company{
		Name:    strings.TrimSpace(name),
		SeedURL: strings.TrimSpace(seedURL),
	}
}

// Valid reports whether both the name and the seed URL are non-empty.
func (c Company) Valid() bool {
	return c.Name != "" && c.SeedURL != ""
}
