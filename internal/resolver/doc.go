// Package resolver turns user supplied video URLs into resource identifiers
// and canonical watch URLs.
//
// Watch, short-link, embed, and legacy /v/ forms are recognized; any
// youtube.com URL carrying a valid v query parameter is accepted as a
// fallback. Failures are classified as invalid_input.
package resolver
