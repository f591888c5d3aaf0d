package ljson

import (
	"encoding"
	stdjson "encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cast"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	jsonUnmarshalerType = reflect.TypeOf((*stdjson.Unmarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// Unmarshal decodes data into ret. A strict decode is tried first; when it
// fails the raw value is walked against ret's type, coercing scalars ("30"
// into an int, 1 into "1") and decoding objects or arrays that the model sent
// as JSON strings. Structural mismatches still fail.
func Unmarshal(data []byte, ret any) error {
	strictErr := json.Unmarshal(data, ret)
	if strictErr == nil {
		return nil
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("error unmarshalling JSON: %w", err)
	}
	return UnmarshalValue(raw, ret)
}

// UnmarshalValue loosely assigns an already decoded JSON value to ret.
func UnmarshalValue(raw any, ret any) error {
	v := reflect.ValueOf(ret)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return errors.New("ljson: target must be a non-nil pointer")
	}
	target := reflect.New(v.Elem().Type())
	if err := assign(target.Elem(), raw, "$"); err != nil {
		return err
	}
	v.Elem().Set(target.Elem())
	return nil
}

func assign(dst reflect.Value, raw any, path string) error {
	if raw == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	if dst.Kind() != reflect.Ptr && dst.CanAddr() {
		pt := dst.Addr().Type()
		if pt.Implements(jsonUnmarshalerType) || pt.Implements(textUnmarshalerType) {
			bs, err := json.Marshal(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if err := json.Unmarshal(bs, dst.Addr().Interface()); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			return nil
		}
	}

	switch dst.Kind() {
	case reflect.Ptr:
		elem := reflect.New(dst.Type().Elem())
		if err := assign(elem.Elem(), raw, path); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	case reflect.Interface:
		rv := reflect.ValueOf(raw)
		if !rv.Type().AssignableTo(dst.Type()) {
			return fmt.Errorf("%s: cannot assign %T to %s", path, raw, dst.Type())
		}
		dst.Set(rv)
		return nil
	case reflect.String:
		if isComposite(raw) {
			return mismatch(path, raw, dst)
		}
		s, err := cast.ToStringE(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		dst.SetString(s)
		return nil
	case reflect.Bool:
		b, err := cast.ToBoolE(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		dst.SetBool(b)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if !integral(raw, true) {
			return mismatch(path, raw, dst)
		}
		n, err := cast.ToInt64E(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if dst.OverflowInt(n) {
			return fmt.Errorf("%s: %d overflows %s", path, n, dst.Type())
		}
		dst.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if !integral(raw, false) {
			return mismatch(path, raw, dst)
		}
		n, err := cast.ToUint64E(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if dst.OverflowUint(n) {
			return fmt.Errorf("%s: %d overflows %s", path, n, dst.Type())
		}
		dst.SetUint(n)
		return nil
	case reflect.Float32, reflect.Float64:
		f, err := cast.ToFloat64E(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		dst.SetFloat(f)
		return nil
	}

	raw = unquoteComposite(raw)
	switch dst.Kind() {
	case reflect.Slice:
		if s, ok := raw.(string); ok && dst.Type().Elem().Kind() == reflect.Uint8 {
			bs, err := json.Marshal(s)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if err := json.Unmarshal(bs, dst.Addr().Interface()); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			return nil
		}
		list, ok := raw.([]any)
		if !ok {
			return mismatch(path, raw, dst)
		}
		slice := reflect.MakeSlice(dst.Type(), len(list), len(list))
		for idx, item := range list {
			if err := assign(slice.Index(idx), item, fmt.Sprintf("%s[%d]", path, idx)); err != nil {
				return err
			}
		}
		dst.Set(slice)
		return nil
	case reflect.Array:
		list, ok := raw.([]any)
		if !ok || len(list) != dst.Len() {
			return mismatch(path, raw, dst)
		}
		for idx, item := range list {
			if err := assign(dst.Index(idx), item, fmt.Sprintf("%s[%d]", path, idx)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Map:
		m, ok := raw.(map[string]any)
		if !ok || dst.Type().Key().Kind() != reflect.String {
			return mismatch(path, raw, dst)
		}
		out := reflect.MakeMapWithSize(dst.Type(), len(m))
		for key, item := range m {
			elem := reflect.New(dst.Type().Elem()).Elem()
			if err := assign(elem, item, path+"."+key); err != nil {
				return err
			}
			out.SetMapIndex(reflect.ValueOf(key).Convert(dst.Type().Key()), elem)
		}
		dst.Set(out)
		return nil
	case reflect.Struct:
		m, ok := raw.(map[string]any)
		if !ok {
			return mismatch(path, raw, dst)
		}
		for key, item := range m {
			field, ok := findField(dst, key)
			if !ok {
				continue
			}
			if err := assign(field, item, path+"."+key); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("%s: unsupported type %s", path, dst.Type())
}

// findField resolves key the way encoding/json does: json tag name or field
// name, exact match first, then case-insensitive.
func findField(v reflect.Value, key string) (reflect.Value, bool) {
	var fold []int
	for _, f := range reflect.VisibleFields(v.Type()) {
		if !f.IsExported() || isEmbeddedStruct(f) {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("json"); ok {
			if tag == "-" {
				continue
			}
			if n, _, _ := strings.Cut(tag, ","); n != "" {
				name = n
			}
		}
		if name == key {
			return fieldByIndex(v, f.Index), true
		}
		if fold == nil && strings.EqualFold(name, key) {
			fold = f.Index
		}
	}
	if fold != nil {
		return fieldByIndex(v, fold), true
	}
	return reflect.Value{}, false
}

// fieldByIndex allocates nil embedded pointers on the way down.
func fieldByIndex(v reflect.Value, index []int) reflect.Value {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Ptr {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v
}

func isEmbeddedStruct(f reflect.StructField) bool {
	if !f.Anonymous {
		return false
	}
	if name, _, _ := strings.Cut(f.Tag.Get("json"), ","); name != "" {
		return false
	}
	t := f.Type
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

// integral reports whether a JSON number fits an integer kind without losing
// its fraction or sign. Other values are left to cast.
func integral(raw any, signed bool) bool {
	f, ok := raw.(float64)
	if !ok {
		return true
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return false
	}
	if signed {
		return f >= math.MinInt64 && f < math.MaxInt64
	}
	return f >= 0 && f < math.MaxUint64
}

func isComposite(raw any) bool {
	switch raw.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}

// unquoteComposite decodes an object or array that was sent as a JSON string.
func unquoteComposite(raw any) any {
	s, ok := raw.(string)
	if !ok {
		return raw
	}
	s = strings.TrimSpace(s)
	if len(s) < 2 || (s[0] != '{' && s[0] != '[') {
		return raw
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return raw
	}
	return v
}

func mismatch(path string, raw any, dst reflect.Value) error {
	return fmt.Errorf("%s: cannot decode %T into %s", path, raw, dst.Type())
}
