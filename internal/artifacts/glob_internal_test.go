package artifacts

import (
	"path/filepath"
	"testing"
)

func TestEscapeGlobMatchesLiterally(t *testing.T) {
	for _, name := range []string{"Song_[Live]", "What?", "A*B", "x]y", "plain"} {
		base := filepath.Join("/music", name)
		pattern := escapeGlob(base) + ".*"
		if ok, err := filepath.Match(pattern, base+".mp3"); err != nil || !ok {
			t.Fatalf("pattern %q should match %q (err=%v)", pattern, base+".mp3", err)
		}
		if name != "plain" {
			if ok, _ := filepath.Match(pattern, filepath.Join("/music", "other.mp3")); ok {
				t.Fatalf("pattern %q matched an unrelated file", pattern)
			}
		}
	}
}
