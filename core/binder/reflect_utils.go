package binder

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"
)

// bindToStruct copies values into the exported fields of the struct v points to.
func bindToStruct(v any, tagName string, values map[string][]string, bindErr error) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: target must be a non-nil pointer", bindErr)
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("%w: target must be a pointer to struct", bindErr)
	}

	rt := rv.Type()
	for i := range rv.NumField() {
		field, sf := rv.Field(i), rt.Field(i)
		if !field.CanSet() {
			continue
		}

		name := fieldName(sf, tagName)
		if name == "" {
			continue
		}

		raw := values[name]
		if len(raw) == 0 {
			continue
		}

		if err := setValue(field, raw); err != nil {
			return fmt.Errorf("%w: %s: %v", bindErr, name, err)
		}
	}

	return nil
}

// fieldName returns the parameter name for sf, or "" if the field is skipped.
func fieldName(sf reflect.StructField, tagName string) string {
	tag, ok := sf.Tag.Lookup(tagName)
	if !ok || tag == "" {
		return strings.ToLower(sf.Name)
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	return name
}

func setValue(field reflect.Value, raw []string) error {
	switch field.Kind() {
	case reflect.Pointer:
		elem := reflect.New(field.Type().Elem())
		if err := setValue(elem.Elem(), raw); err != nil {
			return err
		}
		field.Set(elem)
		return nil

	case reflect.Slice:
		var parts []string
		for _, v := range raw {
			for p := range strings.SplitSeq(v, ",") {
				parts = append(parts, strings.TrimSpace(p))
			}
		}
		slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
		for i, p := range parts {
			if err := setScalar(slice.Index(i), p); err != nil {
				return err
			}
		}
		field.Set(slice)
		return nil
	}

	return setScalar(field, raw[0])
}

func setScalar(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(sanitizeStringValue(value))

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(strings.TrimSpace(value), 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer %q", value)
		}
		field.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(strings.TrimSpace(value), 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid unsigned integer %q", value)
		}
		field.SetUint(n)

	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(strings.TrimSpace(value), field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid number %q", value)
		}
		field.SetFloat(n)

	case reflect.Bool:
		b, err := parseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported type %s", field.Kind())
	}

	return nil
}

// parseBool accepts strconv forms plus on/off and yes/no, case-insensitively.
func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "t", "true", "on", "yes":
		return true, nil
	case "", "0", "f", "false", "off", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid bool %q", value)
}

// sanitizeStringValue drops NUL bytes, CR/LF and other control characters
// except tab, and replaces invalid UTF-8.
func sanitizeStringValue(value string) string {
	value = strings.ToValidUTF8(value, "")
	return strings.Map(func(r rune) rune {
		if r == '\t' || !unicode.IsControl(r) {
			return r
		}
		return -1
	}, value)
}
