package tools

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/ajitpratap0/hudu-mcp/pkg/hudu"
)

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

func objectArg(args map[string]interface{}, key string) map[string]interface{} {
	m, _ := args[key].(map[string]interface{})
	return m
}

func boolArg(args map[string]interface{}, key string) *bool {
	b, ok := args[key].(bool)
	if !ok {
		return nil
	}
	return &b
}

// idArg returns a positive integer id. Numeric strings are accepted.
func idArg(args map[string]interface{}, key string) (int64, bool) {
	switch v := args[key].(type) {
	case json.Number:
		return parseID(v.String())
	case float64:
		if v <= 0 || v != math.Trunc(v) || v >= math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case int:
		return int64(v), v > 0
	case int64:
		return v, v > 0
	case string:
		return parseID(strings.TrimSpace(v))
	default:
		return 0, false
	}
}

func parseID(s string) (int64, bool) {
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return id, id > 0
	}
	f, err := strconv.ParseFloat(s, 64)
	// float64(math.MaxInt64) rounds up to 2^63, which does not fit in an int64
	if err != nil || f <= 0 || f != math.Trunc(f) || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// present reports whether v would count as supplied: not null, not an empty
// string, not zero and not false.
func present(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case json.Number:
		f, err := x.Float64()
		return err != nil || f != 0
	case float64:
		return x != 0
	case int:
		return x != 0
	case int64:
		return x != 0
	default:
		return true
	}
}

func allPresent(fields map[string]interface{}, keys []string) bool {
	for _, key := range keys {
		if !present(fields[key]) {
			return false
		}
	}
	return true
}

// pick copies the listed keys into a filter set; absent keys stay absent
func pick(args map[string]interface{}, keys ...string) hudu.Filters {
	filters := hudu.Filters{}
	for _, key := range keys {
		if v, ok := args[key]; ok && v != nil {
			filters[key] = v
		}
	}
	return filters
}

// filtersFrom passes every argument through as a query parameter
func filtersFrom(args map[string]interface{}) hudu.Filters {
	filters := make(hudu.Filters, len(args))
	for key, value := range args {
		if _, nested := value.(map[string]interface{}); nested {
			continue
		}
		if _, list := value.([]interface{}); list {
			continue
		}
		filters[key] = value
	}
	return filters
}

// rawData decodes a gateway payload so it nests as JSON inside a ToolResult
func rawData(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return raw
}

func rawList(items []json.RawMessage) interface{} {
	if items == nil {
		return []json.RawMessage{}
	}
	return items
}
