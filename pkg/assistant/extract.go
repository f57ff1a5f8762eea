package assistant

import (
	"encoding/json"
	"strings"
)

// Outcome says how a model reply was turned into JSON.
type Outcome int

const (
	// Failed means no JSON object could be recovered.
	Failed Outcome = iota
	// Structured means the whole reply was a JSON object.
	Structured
	// Recovered means the object was cut out of surrounding prose.
	Recovered
)

func (o Outcome) String() string {
	switch o {
	case Structured:
		return "structured"
	case Recovered:
		return "recovered"
	default:
		return "failed"
	}
}

// Extract parses a model reply into a JSON object. When the reply is not
// pure JSON, the first balanced {...} block is tried instead.
func Extract(content string) (map[string]interface{}, Outcome) {
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &parsed); err == nil && parsed != nil {
		return parsed, Structured
	}

	block, ok := firstObject(content)
	if !ok {
		return nil, Failed
	}
	parsed = nil
	if err := json.Unmarshal([]byte(block), &parsed); err != nil || parsed == nil {
		return nil, Failed
	}
	return parsed, Recovered
}

// firstObject returns the first brace-balanced block. Braces inside string
// literals, including escaped quotes, do not count.
func firstObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
