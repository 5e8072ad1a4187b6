package toml

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// Unmarshal parses TOML data into the value pointed to by v
// Fields already set in v are kept when the document omits them
func Unmarshal(data []byte, v any) error {
	parsed, err := NewParser(data).Parse()
	if err != nil {
		return err
	}
	return Decode(parsed, v)
}

// Decode maps a parsed tree onto v using `toml` tags, falling back to field names
// Keys with no matching field are reported as errors
func Decode(data map[string]any, v any) error {
	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("target must be a non-nil pointer")
	}
	return decodeValue(data, val.Elem(), "")
}

func decodeValue(data any, val reflect.Value, path string) error {
	if data == nil {
		return nil
	}

	// Durations are written as strings ("30ms") or integer nanoseconds
	if val.Type() == durationType {
		switch d := data.(type) {
		case string:
			parsed, err := time.ParseDuration(d)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			val.SetInt(int64(parsed))
			return nil
		case int64:
			val.SetInt(d)
			return nil
		}
		return fmt.Errorf("%s: cannot convert %T to duration", path, data)
	}

	switch val.Kind() {
	case reflect.Ptr:
		if val.IsNil() {
			val.Set(reflect.New(val.Type().Elem()))
		}
		return decodeValue(data, val.Elem(), path)

	case reflect.Struct:
		m, ok := data.(map[string]any)
		if !ok {
			return fmt.Errorf("%s: expected table, got %T", path, data)
		}
		return decodeStruct(m, val, path)

	case reflect.Slice:
		items, ok := data.([]any)
		if !ok {
			return fmt.Errorf("%s: expected array, got %T", path, data)
		}
		out := reflect.MakeSlice(val.Type(), len(items), len(items))
		for i, item := range items {
			if err := decodeValue(item, out.Index(i), fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
		val.Set(out)

	case reflect.Map:
		if val.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("%s: only map[string]T is supported", path)
		}
		m, ok := data.(map[string]any)
		if !ok {
			return fmt.Errorf("%s: expected table, got %T", path, data)
		}
		out := reflect.MakeMapWithSize(val.Type(), len(m))
		for k, item := range m {
			elem := reflect.New(val.Type().Elem()).Elem()
			if err := decodeValue(item, elem, join(path, k)); err != nil {
				return err
			}
			out.SetMapIndex(reflect.ValueOf(k), elem)
		}
		val.Set(out)

	case reflect.Interface:
		val.Set(reflect.ValueOf(data))

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := data.(int64)
		if !ok {
			return fmt.Errorf("%s: cannot convert %T to int", path, data)
		}
		if val.OverflowInt(n) {
			return fmt.Errorf("%s: %d overflows %s", path, n, val.Type())
		}
		val.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := data.(int64)
		if !ok || n < 0 || val.OverflowUint(uint64(n)) {
			return fmt.Errorf("%s: cannot convert %v to %s", path, data, val.Type())
		}
		val.SetUint(uint64(n))

	case reflect.Float32, reflect.Float64:
		switch f := data.(type) {
		case float64:
			if val.Kind() == reflect.Float32 && math.Abs(f) > math.MaxFloat32 {
				return fmt.Errorf("%s: %g overflows float32", path, f)
			}
			val.SetFloat(f)
		case int64:
			val.SetFloat(float64(f))
		default:
			return fmt.Errorf("%s: cannot convert %T to float", path, data)
		}

	case reflect.String:
		s, ok := data.(string)
		if !ok {
			return fmt.Errorf("%s: cannot convert %T to string", path, data)
		}
		val.SetString(s)

	case reflect.Bool:
		b, ok := data.(bool)
		if !ok {
			return fmt.Errorf("%s: cannot convert %T to bool", path, data)
		}
		val.SetBool(b)

	default:
		return fmt.Errorf("%s: unsupported kind %s", path, val.Kind())
	}

	return nil
}

func decodeStruct(data map[string]any, val reflect.Value, path string) error {
	typ := val.Type()
	seen := make(map[string]bool, len(data))

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		key := field.Name
		if tag := field.Tag.Get("toml"); tag != "" {
			name, _, _ := strings.Cut(tag, ",")
			if name == "-" {
				continue
			}
			if name != "" {
				key = name
			}
		}

		item, ok := data[key]
		if !ok {
			continue
		}
		seen[key] = true
		if err := decodeValue(item, val.Field(i), join(path, key)); err != nil {
			return err
		}
	}

	for key := range data {
		if !seen[key] {
			return fmt.Errorf("unknown key %q", join(path, key))
		}
	}
	return nil
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
