package scene

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Reasoning delimiters some models leak into their final answer.
var reasoningMarkers = []struct {
	open  string
	close string
}{
	{"<think>", "</think>"},
	{"<thinking>", "</thinking>"},
	{"<reasoning>", "</reasoning>"},
}

var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// StripReasoning removes chain-of-thought spans from raw model output.
// Matched open/close pairs are cut out; if an orphan close marker remains
// (the open marker was swallowed upstream), everything before the last
// close marker is dropped.
func StripReasoning(text string) string {
	for _, m := range reasoningMarkers {
		for {
			start := strings.Index(text, m.open)
			if start == -1 {
				break
			}
			end := strings.Index(text[start:], m.close)
			if end == -1 {
				// Unterminated span: drop the tail from the open marker.
				text = text[:start]
				break
			}
			text = text[:start] + text[start+end+len(m.close):]
		}
		if idx := strings.LastIndex(text, m.close); idx != -1 {
			text = text[idx+len(m.close):]
		}
	}
	return strings.TrimSpace(text)
}

// jsonCandidates scans text left to right with a brace-depth counter and
// returns every span where the depth returns to zero after having been
// positive, i.e. every syntactically complete top-level object.
func jsonCandidates(text string) []string {
	var candidates []string
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		ch := text[i]
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
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					candidates = append(candidates, text[start:i+1])
				}
			}
		}
	}
	return candidates
}

// ExtractDescription recovers a structured scene description from noisy
// model output. Returns the description and true on success; on any parse
// failure or a missing location field it returns false and the caller
// substitutes DefaultDescription. It never returns an error: generation
// fails open to a generic scene rather than aborting.
func ExtractDescription(raw string) (Description, bool) {
	text := StripReasoning(raw)

	// A fenced code block, when present, is the model's explicit answer.
	if m := fencedBlockRe.FindStringSubmatch(text); m != nil {
		text = m[1]
	}

	candidates := jsonCandidates(text)
	// Models emit partial or exploratory objects before the final answer,
	// so candidates are tried back to front.
	for i := len(candidates) - 1; i >= 0; i-- {
		var desc Description
		if err := json.Unmarshal([]byte(candidates[i]), &desc); err != nil {
			continue
		}
		if strings.TrimSpace(desc.Location) == "" {
			continue
		}
		desc.Validate()
		return desc, true
	}
	return Description{}, false
}

// ExtractTagList recovers a flat tag list from single-pass model output:
// strip reasoning, split on commas, trim, lowercase, drop empties.
func ExtractTagList(raw string) []string {
	text := StripReasoning(raw)
	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.ToLower(strings.TrimSpace(p))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
