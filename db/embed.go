// Package db embeds the SQL schema applied at startup and by the
// integration test harness.
package db

import _ "embed"

// Schema is the full DDL for the checkout core. Statements are written to
// be re-runnable (IF NOT EXISTS) so applying it on boot is idempotent.
//
//go:embed schema.sql
var Schema string
