package capture

import "strings"

// chatEndpointKeywords identifies upstream paths that carry conversational
// payloads. Matching is intentionally loose to keep catching endpoints as
// the client renames them.
var chatEndpointKeywords = []string{
	"chat",
	"stream",
	"unified",
	"warmstream",
	"aiserver",
}

// IsCursorHost reports whether the host belongs to the Cursor API. Matches
// any cursor.sh host so api2, api3 and future shards all qualify.
func IsCursorHost(host string) bool {
	return strings.Contains(strings.ToLower(host), "cursor.sh")
}

// IsChatEndpoint reports whether the request path looks like a chat/AI
// endpoint worth capturing.
func IsChatEndpoint(path string) bool {
	lower := strings.ToLower(path)
	for _, kw := range chatEndpointKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}

	return false
}
