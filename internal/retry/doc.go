// Package retry implements the bounded linear-backoff loop around a download
// attempt. Next is a pure transition function; Controller drives it with an
// injectable, context-aware sleeper.
package retry
