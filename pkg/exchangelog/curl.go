package exchangelog

import (
	"strings"

	"mercator-hq/chatclient/pkg/auth"
	"mercator-hq/chatclient/pkg/transport"
)

// RenderCurl renders the exchange's request as a curl command line that
// reproduces it, with the Authorization header masked. The result is
// suitable for a POSIX shell once the real key is pasted back in.
//
//	curl -X POST 'https://api.openai.com/v1/chat/completions' \
//	  -H 'Content-Type: application/json' \
//	  -H 'Authorization: Bearer sk-...abcd' \
//	  -d '{"model":"gpt-3.5-turbo",...}'
func RenderCurl(ex *transport.Exchange) string {
	var b strings.Builder

	b.WriteString("curl -X ")
	b.WriteString(ex.Method)
	b.WriteString(" ")
	b.WriteString(shellQuote(ex.URL))

	for _, h := range ex.RequestHeaders {
		value := h.Value
		if strings.EqualFold(h.Name, auth.HeaderAuthorization) {
			value = auth.MaskAuth(value)
		}
		b.WriteString(" \\\n  -H ")
		b.WriteString(shellQuote(h.Name + ": " + value))
	}

	if len(ex.RequestBody) > 0 {
		b.WriteString(" \\\n  -d ")
		b.WriteString(shellQuote(string(ex.RequestBody)))
	}

	return b.String()
}

// shellQuote wraps s in single quotes, escaping embedded single quotes.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
