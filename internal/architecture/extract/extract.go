// Package extract pulls the structured update out of generator text.
package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"archrecon/internal/util/jsonutil"
)

// ErrNoPayload is returned when the text carries no JSON object or array.
var ErrNoPayload = errors.New("extract: no structured payload in response")

var (
	reFence  = regexp.MustCompile("(?s)```[ \t]*(?:json|JSON)?[ \t]*\r?\n(.*?)```")
	reMarker = regexp.MustCompile(`(?i)\[\[\s*ARCHITECTURE_UPDATE\s*:\s*([A-Za-z_]+)\s*\]\]`)
)

// Update is the structured part of a generator response.
type Update struct {
	// Section is the marker's section token, empty when the text has no marker.
	Section string
	Payload any
	// Prose is the text with the payload block and marker removed.
	Prose string
}

// Marker renders the tag a generator appends to name the updated section.
func Marker(section string) string {
	return fmt.Sprintf("[[ARCHITECTURE_UPDATE:%s]]", section)
}

// Parse finds the payload in text. A fenced block wins; otherwise the first
// balanced object or array that decodes is used. The last marker in the text
// names the section.
func Parse(text string) (Update, error) {
	var u Update
	if ms := reMarker.FindAllStringSubmatch(text, -1); len(ms) > 0 {
		u.Section = strings.ToLower(ms[len(ms)-1][1])
	}
	prose := reMarker.ReplaceAllString(text, "")

	var v any
	if loc := reFence.FindStringSubmatchIndex(prose); loc != nil {
		var err error
		v, err = jsonutil.ParseValue([]byte(prose[loc[2]:loc[3]]))
		if err != nil {
			return Update{}, fmt.Errorf("extract: decode payload: %w", err)
		}
		if !structured(v) {
			return Update{}, ErrNoPayload
		}
		prose = prose[:loc[0]] + prose[loc[1]:]
	} else {
		start, end, val, ok := firstJSON(prose)
		if !ok {
			return Update{}, ErrNoPayload
		}
		v = val
		prose = prose[:start] + prose[end:]
	}
	u.Payload = v
	u.Prose = strings.TrimSpace(prose)
	return u, nil
}

func structured(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}

// firstJSON locates the first object or array whose brackets balance and
// whose text decodes, skipping brackets inside string literals.
func firstJSON(s string) (int, int, any, bool) {
	for start := strings.IndexAny(s, "{["); start >= 0; {
		if end, ok := closeAt(s, start); ok {
			if v, err := jsonutil.ParseValue([]byte(s[start:end])); err == nil && structured(v) {
				return start, end, v, true
			}
		}
		next := strings.IndexAny(s[start+1:], "{[")
		if next < 0 {
			break
		}
		start += next + 1
	}
	return 0, 0, nil, false
}

func closeAt(s string, start int) (int, bool) {
	var stack []byte
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return 0, false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}
