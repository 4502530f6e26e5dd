package stream

import (
	"regexp"
	"strings"

	"github.com/bytedance/sonic"
)

// Classification is the outcome of classifying one frame payload.
type Classification struct {
	// Text is the human-readable fragment to render, valid when HasText.
	Text    string
	HasText bool
	// Structured indicates the payload carries structured data (a
	// recommendation, suggestions or a conversation id) that should be
	// handed to ExtractStructured.
	Structured bool
	// Object is the parsed top-level JSON object when the payload was
	// valid JSON, nil otherwise.
	Object map[string]interface{}
}

// messagePattern captures the value of a "message" key in raw (possibly
// truncated) JSON text, tolerating escaped quotes inside the value.
var messagePattern = regexp.MustCompile(`"message"\s*:\s*"((?:[^"\\]|\\.)*)"`)

// ClassifyPayload decides whether a frame payload is renderable text,
// structured metadata, or JSON-within-JSON that must be unwrapped.
//
// The strategies are ordered and the first success wins:
//  1. valid JSON with a top-level "message" string
//  2. valid JSON with a "content" field: parse content as JSON, then scan it
//     for an embedded brace-delimited object with a "message" key, then fall
//     back to content verbatim only when it is plain text
//  3. non-JSON payloads are rendered verbatim unless they look like the
//     beginning of a JSON object, in which case a best-effort regex pull of
//     the "message" value is attempted
//
// Raw JSON syntax is never emitted as text: when in doubt the classifier
// suppresses the fragment and lets later chunks (or the session's final
// cleanup pass) resolve it.
func ClassifyPayload(payload string) Classification {
	var obj map[string]interface{}
	if err := sonic.UnmarshalString(payload, &obj); err == nil && obj != nil {
		c := Classification{Object: obj, Structured: hasStructuredData(obj)}

		if msg, ok := obj["message"].(string); ok {
			c.Text, c.HasText = msg, true
			return c
		}

		if content, ok := obj["content"].(string); ok {
			if text, ok := messageFromContent(content); ok {
				c.Text, c.HasText = text, true
			}
			return c
		}

		// No message and no content. Unless the object is purely
		// structured metadata, try one last pull from the raw payload
		// in case the message key is buried in an unexpected shape.
		if !c.Structured {
			if text, ok := extractMessageValue(payload); ok {
				c.Text, c.HasText = text, true
			}
		}
		return c
	}

	// Not valid JSON. Plain text is rendered verbatim; anything that looks
	// like the start of a JSON object (e.g. truncated at a chunk boundary)
	// must not leak to the transcript.
	if !strings.HasPrefix(strings.TrimSpace(payload), "{") {
		return Classification{Text: payload, HasText: true}
	}
	if text, ok := extractMessageValue(payload); ok {
		return Classification{Text: text, HasText: true}
	}
	return Classification{}
}

// messageFromContent resolves the "content" field: it may itself be JSON, or
// plain text with a JSON object embedded in it, or just plain text.
func messageFromContent(content string) (string, bool) {
	var nested map[string]interface{}
	if err := sonic.UnmarshalString(content, &nested); err == nil && nested != nil {
		if msg, ok := nested["message"].(string); ok {
			return msg, true
		}
		// Valid JSON without a message key: structured only, no text.
		return "", false
	}

	// Not a full JSON document; scan for a brace-delimited region carrying
	// a message key (the surrounding text may be arbitrary).
	for _, candidate := range scanJSONObjects(content) {
		if !strings.Contains(candidate, `"message"`) {
			continue
		}
		var embedded map[string]interface{}
		if err := sonic.UnmarshalString(candidate, &embedded); err != nil {
			continue
		}
		if msg, ok := embedded["message"].(string); ok {
			return msg, true
		}
	}

	// Plain text content is shown as-is; content that starts a JSON object
	// is suppressed rather than leaked.
	if !strings.HasPrefix(strings.TrimSpace(content), "{") {
		return content, true
	}
	return "", false
}

// hasStructuredData reports whether the object carries fields for the
// structured-data extractor. A content string that embeds a recommendation
// counts: the extractor unwraps it.
func hasStructuredData(obj map[string]interface{}) bool {
	if _, ok := obj["recommendation"]; ok {
		return true
	}
	if _, ok := obj["suggestions"]; ok {
		return true
	}
	if _, ok := obj["conversation_id"]; ok {
		return true
	}
	if content, ok := obj["content"].(string); ok {
		return strings.Contains(content, `"recommendation"`) ||
			strings.Contains(content, `"suggestions"`)
	}
	return false
}

// extractMessageValue pulls the value of a "message" key out of raw JSON-ish
// text with a regular expression, unescaping the common sequences. Used when
// a payload failed to parse, typically because it was cut at a chunk
// boundary.
func extractMessageValue(raw string) (string, bool) {
	m := messagePattern.FindStringSubmatch(raw)
	if m == nil || m[1] == "" {
		return "", false
	}
	return unescapeJSONString(m[1]), true
}

func unescapeJSONString(s string) string {
	r := strings.NewReplacer(
		`\"`, `"`,
		`\n`, "\n",
		`\t`, "\t",
		`\\`, `\`,
	)
	return r.Replace(s)
}

// scanJSONObjects walks the text and returns every balanced brace-delimited
// region, skipping braces inside JSON string literals. This is a structural
// scan, not a parse: candidates still need to be unmarshalled.
func scanJSONObjects(s string) []string {
	var (
		objects  []string
		depth    int
		start    int
		inString bool
		escaped  bool
	)
	for i, r := range s {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				if depth == 0 {
					start = i
				}
				depth++
			}
		case '}':
			if !inString && depth > 0 {
				depth--
				if depth == 0 {
					objects = append(objects, s[start:i+1])
				}
			}
		}
	}
	return objects
}
