// Package fetch orchestrates a single download: resolve the URL, probe
// metadata, plan paths, skip when artifacts already exist, download under the
// retry controller, verify, and clean up after failures.
//
// Run never returns an error. Every path ends in exactly one Result built by
// finish, carrying a Success, Skipped, or Failed outcome. Failure kinds are
// assigned where the failure is first observed and are not rewritten by
// cleanup or by context cancellation.
package fetch
