package security

import (
	"sort"
	"strconv"
)

// Scrub cleans and inspects every string reachable from v, which is a value
// decoded from JSON. Nested fields are reported as "parent.child" and
// "list[0]". Map keys are visited in sorted order so the first offending
// field is deterministic.
func Scrub(field string, v any) (any, error) {
	switch t := v.(type) {
	case string:
		cleaned := Clean(t)
		if err := Inspect(field, cleaned); err != nil {
			return nil, err
		}
		return cleaned, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			name := k
			if field != "" {
				name = field + "." + k
			}
			cleaned, err := Scrub(name, t[k])
			if err != nil {
				return nil, err
			}
			t[k] = cleaned
		}
		return t, nil
	case []any:
		for i, item := range t {
			cleaned, err := Scrub(field+"["+strconv.Itoa(i)+"]", item)
			if err != nil {
				return nil, err
			}
			t[i] = cleaned
		}
		return t, nil
	default:
		return v, nil
	}
}

// ScrubValues cleans and inspects multi-valued form or query values in place.
func ScrubValues(values map[string][]string) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for i, v := range values[k] {
			cleaned := Clean(v)
			if err := Inspect(k, cleaned); err != nil {
				return err
			}
			values[k][i] = cleaned
		}
	}
	return nil
}
