package resolver

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"tubeaudio/internal/services"
)

// ResourceID is the 11-character token naming a remote video.
type ResourceID string

func (id ResourceID) String() string { return string(id) }

const canonicalURLPrefix = "https://www.youtube.com/watch?v="

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// Tried in order; the first match wins.
var urlPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/watch\?v=([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtu\.be/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/embed/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/v/([A-Za-z0-9_-]{11})`),
}

// ValidID reports whether s matches the resource identifier grammar.
func ValidID(s string) bool {
	return idPattern.MatchString(s)
}

// ExtractID returns the resource identifier encoded in raw.
func ExtractID(raw string) (ResourceID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", services.Wrap(services.KindInvalidInput, "resolve", "", "URL must be a non-empty string", nil)
	}

	for _, pattern := range urlPatterns {
		match := pattern.FindStringSubmatch(trimmed)
		if match == nil {
			continue
		}
		if ValidID(match[1]) {
			return ResourceID(match[1]), nil
		}
	}

	if id, ok := idFromQuery(trimmed); ok {
		return id, nil
	}

	return "", services.Wrap(services.KindInvalidInput, "resolve", "", fmt.Sprintf("could not extract valid video ID from URL: %s", trimmed), nil)
}

// idFromQuery handles watch URLs where v is not the first query parameter.
func idFromQuery(raw string) (ResourceID, bool) {
	parsed, err := url.Parse(raw)
	if err != nil || !strings.Contains(strings.ToLower(parsed.Host), "youtube.com") {
		return "", false
	}
	values := parsed.Query()["v"]
	if len(values) == 0 || !ValidID(values[0]) {
		return "", false
	}
	return ResourceID(values[0]), true
}

// CanonicalURL returns the single normalized URL for id.
func CanonicalURL(id ResourceID) string {
	return canonicalURLPrefix + string(id)
}

// Normalize converts any supported URL form to its canonical URL.
func Normalize(raw string) (string, error) {
	id, err := ExtractID(raw)
	if err != nil {
		return "", err
	}
	return CanonicalURL(id), nil
}

// Validate reports whether raw encodes a resource identifier.
func Validate(raw string) bool {
	_, err := ExtractID(raw)
	return err == nil
}

// Resolve returns both the identifier and canonical URL for raw.
func Resolve(raw string) (ResourceID, string, error) {
	id, err := ExtractID(raw)
	if err != nil {
		return "", "", err
	}
	return id, CanonicalURL(id), nil
}
