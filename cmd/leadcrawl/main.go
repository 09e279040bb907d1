// Package main provides the entry point for the leadcrawl CLI.
//
// leadcrawl harvests email addresses and phone numbers from company websites.
// It reads company names and websites from CSV or XLSX lead files, crawls
// each site breadth-first up to a bounded depth and appends every new contact
// to daily CSV files. Finished companies are recorded in a ledger so an
// interrupted batch resumes where it stopped.
//
// Usage:
//
//	leadcrawl enrich leads.csv
//	leadcrawl enrich --leads-dir ./input
//	leadcrawl history "Acme BV"
//
// See --help for all available options.
package main

func main() {
	Execute()
}
