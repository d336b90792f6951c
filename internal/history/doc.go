// Package history records fetch results in a SQLite database under state_dir
// and, optionally, as JSON lines in separate success and error logs.
//
// The database is an operator convenience rather than a source of truth: the
// artifacts on disk decide whether a download is skipped. The schema is
// versioned with PRAGMA user_version and upgraded in place on Open.
package history
