package llm

import (
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ExtractJSONObject slices the outermost {...} span out of a model response
// that may be wrapped in markdown fences or prose, and returns it only if
// it parses as valid JSON. Returns "" if no valid object can be found.
func ExtractJSONObject(raw string) string {
	return extractSpan(raw, '{', '}')
}

// ExtractJSONArray slices the outermost [...] span, used by the
// cross-source aligner to pull its alignment array out of a response that
// may carry leading/trailing commentary.
func ExtractJSONArray(raw string) string {
	return extractSpan(raw, '[', ']')
}

func extractSpan(raw string, open, close byte) string {
	start := strings.IndexByte(raw, open)
	end := strings.LastIndexByte(raw, close)
	if start < 0 || end < 0 || end <= start {
		return ""
	}
	candidate := raw[start : end+1]
	if !gjson.Valid(candidate) {
		return ""
	}
	return candidate
}

// FilterValidArrayItems parses a JSON array tolerantly and drops any
// element missing one of requiredKeys, instead of failing the whole batch
// on one malformed item. The cross-source aligner does not call it: it
// decodes into typed structs and drops incomplete candidates in AlignBatch.
func FilterValidArrayItems(jsonArray string, requiredKeys ...string) []string {
	result := gjson.Parse(jsonArray)
	if !result.IsArray() {
		return nil
	}

	var kept []string
	result.ForEach(func(_, item gjson.Result) bool {
		for _, key := range requiredKeys {
			if !item.Get(key).Exists() {
				return true
			}
		}
		kept = append(kept, item.Raw)
		return true
	})
	return kept
}

// TagFallbackExtracted marks a generic-provider response that only parsed
// after span extraction (the model wrapped its JSON in prose or markdown
// fences) with a diagnostic field, so call sites can log how often the
// fallback path fires without an unmarshal/marshal round trip through the
// destination struct. Unknown fields are ignored by encoding/json, so the
// tag never breaks the caller's decode. Returns jsonObj unchanged if it
// isn't a valid JSON object.
func TagFallbackExtracted(jsonObj string) string {
	patched, err := sjson.Set(jsonObj, "_fallback_extracted", true)
	if err != nil {
		return jsonObj
	}
	return patched
}
