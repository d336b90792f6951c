// Package artifacts checks, verifies, and cleans the files a download leaves
// in its planned location.
//
// Cleanup is best effort: failures are logged with event_type, error_hint,
// and impact fields and collected in CleanupResult, but never surface as
// errors that could mask the failure which triggered the cleanup.
package artifacts
