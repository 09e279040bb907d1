// Package config holds the leadcrawl configuration: CLI settings with their
// defaults, the optional .leadcrawl YAML file with crawl tuning and per-site
// overrides, and the XDG locations used for output, ledger and database.
package config
