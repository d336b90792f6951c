package extraction

import (
	"errors"
	"strings"

	"github.com/samber/lo"

	"tubeaudio/internal/services"
	"tubeaudio/internal/services/ytdlp"
)

var codeKinds = map[ytdlp.Code]services.Kind{
	ytdlp.CodeUnavailable: services.KindResourceUnavailable,
	ytdlp.CodeNetwork:     services.KindNetwork,
	ytdlp.CodeTimeout:     services.KindNetwork,
	ytdlp.CodeNoOutput:    services.KindExtractionFailed,
	ytdlp.CodeBadMetadata: services.KindExtractionFailed,
	ytdlp.CodeMissingTool: services.KindExtractionFailed,
}

var (
	unavailableKeywords = []string{"private", "unavailable", "deleted", "removed"}
	networkKeywords     = []string{"network", "connection", "timeout"}
)

// Classify maps err onto the failure taxonomy. An error that already carries
// a kind keeps it; engine errors map by code, then by message keywords.
func Classify(err error) services.Kind {
	if err == nil {
		return ""
	}
	if services.Classified(err) {
		return services.KindOf(err)
	}
	var engineErr *ytdlp.EngineError
	if !errors.As(err, &engineErr) {
		return services.KindUnexpected
	}
	if kind, ok := codeKinds[engineErr.Code]; ok {
		return kind
	}
	return classifyMessage(engineErr.Error())
}

func classifyMessage(message string) services.Kind {
	lower := strings.ToLower(message)
	contains := func(keyword string) bool { return strings.Contains(lower, keyword) }
	switch {
	case lo.SomeBy(unavailableKeywords, contains):
		return services.KindResourceUnavailable
	case lo.SomeBy(networkKeywords, contains):
		return services.KindNetwork
	default:
		return services.KindExtractionFailed
	}
}
