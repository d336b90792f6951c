package textutil

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// reservedChars are illegal in file names on at least one common filesystem.
var reservedChars = regexp.MustCompile(`[<>:"/\\|?*]`)

var whitespaceRun = regexp.MustCompile(`\s+`)

// CleanTitle removes reserved characters, trims surrounding whitespace and
// dots, and collapses whitespace runs to a single underscore. The title is
// NFC-normalized first so visually identical titles produce identical names.
// Dot-only titles such as "." or ".." clean to "".
func CleanTitle(title string) string {
	cleaned := norm.NFC.String(title)
	cleaned = reservedChars.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimFunc(cleaned, func(r rune) bool { return r == '.' || unicode.IsSpace(r) })
	return whitespaceRun.ReplaceAllString(cleaned, "_")
}

// BoundedStem cleans title and bounds the result to maxLen runes. When the
// cleaned title is too long it is truncated and "_<id>" appended so the stem
// stays unique. A blank title or empty cleaning result yields id.
func BoundedStem(title, id string, maxLen int) string {
	cleaned := CleanTitle(title)
	if cleaned == "" {
		return id
	}
	if utf8.RuneCountInString(cleaned) <= maxLen {
		return cleaned
	}
	suffix := "_" + id
	keep := maxLen - utf8.RuneCountInString(suffix)
	if keep <= 0 {
		return id
	}
	runes := []rune(cleaned)
	head := strings.TrimRight(string(runes[:keep]), "_")
	if head == "" {
		return id
	}
	return head + suffix
}

// FileToken maps id onto the characters a YouTube id may contain so it can
// name a file directly. Anything else becomes '_'; case is preserved since ids
// are case sensitive. A blank id yields "unknown".
func FileToken(id string) string {
	token := strings.Map(func(r rune) rune {
		if r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_') {
			return r
		}
		return '_'
	}, strings.TrimSpace(id))
	return OrDefault(token, "unknown")
}
