package environment

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// ParseEnvTags fills a struct from environment variables using struct tags:
//
//	env:"SYNC_TIMEOUT"       variable name, joined to prefix with "_"
//	default:"30s"            value used when the variable is unset or empty
//	required:"true"          fail when neither the variable nor a default is set
//	separator:","            element separator for []string fields
//
// Nested structs without an env tag are walked with the same prefix.
func ParseEnvTags(prefix string, cfg any) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return errors.New("cfg must be a pointer to a struct")
	}
	return parseStruct(prefix, v.Elem())
}

func parseStruct(prefix string, v reflect.Value) error {
	t := v.Type()

	for i := range v.NumField() {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.CanSet() {
			continue
		}

		envKey := fieldType.Tag.Get("env")
		if envKey == "" {
			if field.Kind() == reflect.Struct && field.Type() != reflect.TypeOf(time.Time{}) {
				if err := parseStruct(prefix, field); err != nil {
					return err
				}
			}
			continue
		}

		ek := GetNamespaceEnvKey(prefix, envKey)
		value := os.Getenv(ek)
		if value == "" {
			value = fieldType.Tag.Get("default")
		}
		if value == "" && fieldType.Tag.Get("required") == "true" {
			return fmt.Errorf("required environment variable %s is not set", ek)
		}

		if err := setFieldValue(field, value, fieldType.Tag.Get("separator")); err != nil {
			return fmt.Errorf("setting field %s from %s: %w", fieldType.Name, ek, err)
		}
	}

	return nil
}

// setFieldValue sets a reflect.Value from its string form. Empty values leave
// the zero value in place.
func setFieldValue(field reflect.Value, value, separator string) error {
	if value == "" {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int32, reflect.Int64:
		if field.Type() == durationType {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("cannot parse duration: %w", err)
			}
			field.SetInt(int64(d))
			return nil
		}
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("cannot parse int: %w", err)
		}
		field.SetInt(n)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("cannot parse bool: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type())
		}
		if separator == "" {
			separator = ","
		}
		parts := strings.Split(value, separator)
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		field.Set(reflect.ValueOf(out))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}
