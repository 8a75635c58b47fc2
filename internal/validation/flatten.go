package validation

import (
	"fmt"
	"sort"
)

// Flatten maps every leaf of a nested document to its dotted key path.
// Non-array objects are namespaces; everything else, arrays included, is a
// leaf.
func Flatten(doc map[string]any) map[string]any {
	out := make(map[string]any)
	flattenInto(out, "", doc)

	return out
}

func flattenInto(out map[string]any, prefix string, doc map[string]any) {
	for key, value := range doc {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			flattenInto(out, path, nested)
			continue
		}
		out[path] = value
	}
}

// Keys returns the sorted leaf paths of a document.
func Keys(doc map[string]any) []string {
	flat := Flatten(doc)
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

// Diff returns the keys of base missing from other and the keys of other
// absent from base, both sorted.
func Diff(base, other []string) (missing, extra []string) {
	inBase := make(map[string]struct{}, len(base))
	for _, k := range base {
		inBase[k] = struct{}{}
	}
	inOther := make(map[string]struct{}, len(other))
	for _, k := range other {
		inOther[k] = struct{}{}
	}

	for _, k := range base {
		if _, ok := inOther[k]; !ok {
			missing = append(missing, k)
		}
	}
	for _, k := range other {
		if _, ok := inBase[k]; !ok {
			extra = append(extra, k)
		}
	}
	sort.Strings(missing)
	sort.Strings(extra)

	return missing, extra
}

// stringsIn calls fn for every string reachable from a leaf value, with the
// path extended by [i] for array elements and .key inside objects in arrays.
func stringsIn(path string, value any, fn func(path, text string)) {
	switch v := value.(type) {
	case string:
		fn(path, v)
	case []any:
		for i, elem := range v {
			stringsIn(fmt.Sprintf("%s[%d]", path, i), elem, fn)
		}
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			stringsIn(path+"."+k, v[k], fn)
		}
	}
}

// isEmpty reports whether a leaf is null or the empty string.
func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	}

	return false
}
