package inventory

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseTags parses a provider tag cell into a key/value map.
//
// Three formats are attempted in order: a JSON object, comma/semicolon
// delimited "key=value" pairs, and comma/semicolon delimited "key:value"
// pairs. The first format that applies wins. An unparsable cell yields an
// empty tag set, never an error: a bad tag cell must not fail its row.
func ParseTags(cell string) map[string]string {
	tags := map[string]string{}

	cell = strings.TrimSpace(cell)
	if cell == "" {
		return tags
	}

	// JSON object syntax
	if strings.HasPrefix(cell, "{") {
		var raw map[string]any
		if err := json.Unmarshal([]byte(cell), &raw); err == nil {
			for k, v := range raw {
				tags[k] = stringify(v)
			}
			return tags
		}
	}

	switch {
	case strings.Contains(cell, "="):
		parsePairs(cell, "=", tags)
	case strings.Contains(cell, ":"):
		parsePairs(cell, ":", tags)
	}

	return tags
}

// parsePairs splits the cell on commas and semicolons and each pair on the
// first occurrence of sep.
func parsePairs(cell, sep string, tags map[string]string) {
	pairs := strings.FieldsFunc(cell, func(r rune) bool {
		return r == ',' || r == ';'
	})
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, sep)
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		tags[key] = strings.TrimSpace(value)
	}
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		// JSON numbers decode as float64; keep integers integral
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%v", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
