package frappe

import (
	"encoding/json"
	"strings"
)

// ResultMarker prefixes the line a script prints through emit().
const ResultMarker = "__RESULT__"

// Output is the JSON object a script reported. A missing key means the
// script did not say, not that the value is false or zero.
type Output map[string]any

// ParseOutput extracts the script result from stdout. The last line carrying
// ResultMarker wins; failing that, the last line that is a JSON object.
// Output with no such line parses to an empty Output.
func ParseOutput(stdout string) Output {
	lines := strings.Split(strings.TrimSpace(stdout), "\n")

	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if rest, ok := strings.CutPrefix(line, ResultMarker); ok {
			if out, ok := decodeObject(rest); ok {
				return out
			}
		}
	}
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, "{") && strings.HasSuffix(line, "}") {
			if out, ok := decodeObject(line); ok {
				return out
			}
		}
	}
	return Output{}
}

func decodeObject(s string) (Output, bool) {
	var out Output
	if err := json.Unmarshal([]byte(s), &out); err != nil || out == nil {
		return nil, false
	}
	return out, true
}

func (o Output) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// Bool returns the value at key and whether it was a JSON boolean.
func (o Output) Bool(key string) (bool, bool) {
	v, ok := o[key].(bool)
	return v, ok
}

// Int returns the value at key as an int when it is a JSON number.
func (o Output) Int(key string) (int, bool) {
	v, ok := o[key].(float64)
	return int(v), ok
}

// String returns the value at key when it is a JSON string.
func (o Output) String(key string) (string, bool) {
	v, ok := o[key].(string)
	return v, ok
}

// Into decodes the whole object into dst.
func (o Output) Into(dst any) error {
	b, err := json.Marshal(o)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}
