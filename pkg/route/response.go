package route

// ResponseKind is a response shape a handler may declare in its `return`
// instruction.
type ResponseKind int

const (
	KindBytes ResponseKind = iota
	KindText
	KindEmpty
	KindHTML
	KindJavaScript
	KindCSS
	KindJSON
	KindSVG
	KindNotFound
	KindRedirect
	KindWebSocketUpgrade
	KindStream
)

var responseKindNames = []string{
	"Bytes", "Text", "Empty", "HTML", "JavaScript", "CSS", "JSON", "SVG",
	"NotFound", "Redirect", "WebSocketUpgrade", "Stream",
}

// ResponseKinds lists every kind in declaration order.
func ResponseKinds() []ResponseKind {
	out := make([]ResponseKind, len(responseKindNames))
	for i := range responseKindNames {
		out[i] = ResponseKind(i)
	}
	return out
}

// ParseResponseKind resolves a kind by name.
func ParseResponseKind(s string) (ResponseKind, bool) {
	for i, name := range responseKindNames {
		if name == s {
			return ResponseKind(i), true
		}
	}
	return 0, false
}

func (k ResponseKind) String() string {
	if int(k) >= 0 && int(k) < len(responseKindNames) {
		return responseKindNames[k]
	}
	return "Unknown"
}

// ContentType is the media type usually served for the kind.
func (k ResponseKind) ContentType() string {
	switch k {
	case KindText:
		return "text/plain; charset=utf-8"
	case KindHTML, KindNotFound:
		return "text/html; charset=utf-8"
	case KindJavaScript:
		return "text/javascript; charset=utf-8"
	case KindCSS:
		return "text/css; charset=utf-8"
	case KindJSON:
		return "application/json"
	case KindSVG:
		return "image/svg+xml"
	case KindBytes, KindStream:
		return "application/octet-stream"
	default:
		return ""
	}
}
