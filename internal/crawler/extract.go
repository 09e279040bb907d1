package crawler

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultEmailPattern matches email addresses in visible page text.
// The pattern is permissive; matches are lowercased before use.
const DefaultEmailPattern = `(?i)[a-z0-9.\-+_]+@[a-z0-9.\-+_]+\.[a-z]+`

// DefaultPhonePattern matches Dutch phone numbers: national format with a
// trunk zero, or international format with a +31 or 0031 prefix and an
// optional "(0)". Digit groups may be separated by single spaces or dashes.
const DefaultPhonePattern = `(?:(?:\+|00(?:\s|\s?-\s?)?)31(?:\s|\s?-\s?)?(?:\(0\)[-\s]?)?|\b0)[1-9](?:(?:\s|\s?-\s?)?[0-9]){3}\s?[0-9]\s?[0-9]\s?[0-9]\s?[0-9]\s?[0-9]\b`

// Contacts holds the values found in one piece of text, in order of first
// appearance and without duplicates.
type Contacts struct {
	Emails []string
	Phones []string
}

// Empty reports whether nothing was found.
func (c Contacts) Empty() bool {
	return len(c.Emails) == 0 && len(c.Phones) == 0
}

// Extractor finds email addresses and phone numbers in text.
// An Extractor is safe for concurrent use.
type Extractor struct {
	email *regexp.Regexp
	phone *regexp.Regexp
}

// NewExtractor compiles the given patterns. Empty patterns fall back to
// DefaultEmailPattern and DefaultPhonePattern.
func NewExtractor(emailPattern, phonePattern string) (*Extractor, error) {
	if emailPattern == "" {
		emailPattern = DefaultEmailPattern
	}
	if phonePattern == "" {
		phonePattern = DefaultPhonePattern
	}

	email, err := regexp.Compile(emailPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid email pattern: %w", err)
	}
	phone, err := regexp.Compile(phonePattern)
	if err != nil {
		return nil, fmt.Errorf("invalid phone pattern: %w", err)
	}

	return &Extractor{email: email, phone: phone}, nil
}

// Extract returns the emails and phones found in text.
// Emails are lowercased. Phones keep the formatting they had on the page;
// two phones with the same PhoneKey count as one.
func (e *Extractor) Extract(text string) Contacts {
	var c Contacts

	seenEmails := make(map[string]struct{})
	for _, m := range e.email.FindAllString(text, -1) {
		m = strings.ToLower(m)
		if _, ok := seenEmails[m]; ok {
			continue
		}
		seenEmails[m] = struct{}{}
		c.Emails = append(c.Emails, m)
	}

	seenPhones := make(map[string]struct{})
	for _, m := range e.phone.FindAllString(text, -1) {
		m = strings.TrimSpace(m)
		key := PhoneKey(m)
		if key == "" {
			continue
		}
		if _, ok := seenPhones[key]; ok {
			continue
		}
		seenPhones[key] = struct{}{}
		c.Phones = append(c.Phones, m)
	}

	return c
}

// PhoneKey reduces a phone number to its digits, keeping a leading "+".
// "010-123 4567" and "010 1234567" share the key "0101234567".
func PhoneKey(phone string) string {
	phone = strings.TrimSpace(phone)
	var b strings.Builder
	for i, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	if b.String() == "+" {
		return ""
	}
	return b.String()
}
