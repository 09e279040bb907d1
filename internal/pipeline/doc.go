// Package pipeline runs the crawl controller over a list of companies.
//
// The Orchestrator de-duplicates the list, skips companies the resume ledger
// already holds, crawls the rest on a bounded worker pool and records each
// company in the ledger once its crawl terminated cleanly. A failing company
// never stops the batch, and a company interrupted by cancellation is left
// out of the ledger so the next run picks it up again.
package pipeline
