// Package output implements the sinks contact records are written to.
//
// CSVSink appends records to daily email_YYYY-MM-DD.csv and
// phone_YYYY-MM-DD.csv files. DBSink stores them in the contact database.
// Multi fans one record out to several sinks.
//
// All sinks are safe for concurrent use. Files are only ever appended to,
// so results of earlier runs on the same day are kept.
package output
