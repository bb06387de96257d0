package identity

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

// canonicalParameters renders parameter values into a single stable
// string: each value canonicalized, joined with commas. The rendering
// must be identical across machines and runs for identical inputs —
// locale-dependent formatting, pointer addresses and map iteration order
// are all forbidden here.
func canonicalParameters(params []any) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = canonicalValue(p)
	}
	return strings.Join(parts, ",")
}

// canonicalValue renders one value to its stable string form.
func canonicalValue(v any) string {
	if v == nil {
		return "null"
	}

	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float32:
		// Fixed precision so 0.1+0.2 artifacts don't fork identities
		return strconv.FormatFloat(float64(val), 'f', 6, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', 6, 64)
	case int:
		return strconv.FormatInt(int64(val), 10)
	case int8:
		return strconv.FormatInt(int64(val), 10)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint8:
		return strconv.FormatUint(uint64(val), 10)
	case uint16:
		return strconv.FormatUint(uint64(val), 10)
	case uint32:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case time.Duration:
		return strconv.FormatInt(val.Nanoseconds(), 10)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			parts[i] = canonicalValue(rv.Index(i).Interface())
		}
		return "[" + strings.Join(parts, ",") + "]"
	case reflect.Map:
		// Sorted by rendered key so iteration order can't fork the hash
		keys := rv.MapKeys()
		entries := make([]string, len(keys))
		for i, k := range keys {
			entries[i] = canonicalValue(k.Interface()) + "=" + canonicalValue(rv.MapIndex(k).Interface())
		}
		sort.Strings(entries)
		return "[" + strings.Join(entries, ",") + "]"
	case reflect.Ptr:
		if rv.IsNil() {
			return "null"
		}
		return canonicalValue(rv.Elem().Interface())
	}

	// A type defining its own textual form uses it directly; the
	// type-name prefix is reserved for values with no better rendering.
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T:%v", v, v)
}
