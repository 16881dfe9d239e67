package store

import "encoding/json"

// toJSON marshals v for a JSON-valued column, returning nil (SQL NULL) for
// an empty []string or map[string]any so absent data round-trips as NULL
// rather than "[]". Other types are always marshaled.
func toJSON(v any) ([]byte, error) {
	switch t := v.(type) {
	case []string:
		if len(t) == 0 {
			return nil, nil
		}
	case map[string]any:
		if len(t) == 0 {
			return nil, nil
		}
	}
	return json.Marshal(v)
}

// fromJSON unmarshals a JSON-valued column into dst, treating NULL/empty
// as a no-op rather than an error.
func fromJSON(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
