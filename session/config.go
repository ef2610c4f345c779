package session

import "maps"

// Config holds the generation parameters sent with every request, e.g.
// model, temperature or max_tokens. Values must be JSON-encodable.
type Config map[string]any

// Clone returns a deep copy of c. Nested maps and slices are copied; other
// values are shared.
func (c Config) Clone() Config {
	if c == nil {
		return Config{}
	}
	out := make(Config, len(c))
	for k, v := range c {
		out[k] = cloneValue(v)
	}
	return out
}

// Model returns the "model" entry as a string, or "".
func (c Config) Model() string {
	model, _ := c["model"].(string)
	return model
}

func cloneValue(v any) any {
	switch value := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(value))
		for k, nested := range value {
			out[k] = cloneValue(nested)
		}
		return out
	case Config:
		return value.Clone()
	case []any:
		out := make([]any, len(value))
		for i, nested := range value {
			out[i] = cloneValue(nested)
		}
		return out
	case []string:
		return append([]string(nil), value...)
	case map[string]string:
		return maps.Clone(value)
	default:
		return v
	}
}
