// Package model defines the core data structures shared across leadcrawl.
//
// This package contains the following main types:
//   - Company: A lead read from the input list (name + seed URL)
//   - ContactRecord: A single email address or phone number found on a page
//   - ContactKind: Discriminates email records from phone records
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The crawler, the sinks and the orchestrator all need these
// types, so centralizing them prevents import cycles.
package model
