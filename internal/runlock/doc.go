// Package runlock serializes fetches of the same video ID across processes
// with advisory file locks in state_dir/locks.
package runlock
