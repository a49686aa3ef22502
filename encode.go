package refetch

import (
	"fmt"
	"mime/multipart"
	"net/url"
	"reflect"
	"sort"
	"strconv"
)

// populateQuery folds src into dst with set semantics: the last value written
// for a key replaces any existing entries, so query strings never carry
// duplicate keys. Nil values are skipped, slice values expand to one entry
// per element (the final element winning under set semantics).
func populateQuery(dst url.Values, src map[string]any) url.Values {
	for _, key := range sortedKeys(src) {
		values, ok := expandValue(src[key])
		if !ok {
			continue
		}
		for _, v := range values {
			dst.Set(key, v)
		}
	}
	return dst
}

// populateForm folds src into dst with append semantics: a slice of length N
// produces exactly N entries for its key.
func populateForm(dst url.Values, src map[string]any) url.Values {
	for _, key := range sortedKeys(src) {
		values, ok := expandValue(src[key])
		if !ok {
			continue
		}
		for _, v := range values {
			dst.Add(key, v)
		}
	}
	return dst
}

// populateMultipart writes src into a multipart body with append semantics,
// mirroring populateForm.
func populateMultipart(w *multipart.Writer, src map[string]any) error {
	for _, key := range sortedKeys(src) {
		values, ok := expandValue(src[key])
		if !ok {
			continue
		}
		for _, v := range values {
			if err := w.WriteField(key, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// expandValue turns one config value into its encoded entries. Nil (and typed
// nil pointers) report ok=false; slices and arrays expand element-wise.
func expandValue(value any) ([]string, bool) {
	if value == nil {
		return nil, false
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil, false
		}
		return expandValue(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if b, isBytes := value.([]byte); isBytes {
			return []string{string(b)}, true
		}
		out := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elem, ok := expandValue(rv.Index(i).Interface())
			if !ok {
				continue
			}
			out = append(out, elem...)
		}
		return out, true
	}
	return []string{stringify(value)}, true
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
