package dataview

import (
	"encoding/json"
	"fmt"
	"html/template"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// StripTags removes anything that looks like an HTML tag.
func StripTags(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}

// Stringify converts a cell value into its plain text form. Nil and nil
// pointers become the empty string.
func Stringify(v any) string {
	if text, ok := textOf(v); ok {
		return text
	}
	if v == nil {
		return ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return ""
		}
		return Stringify(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = Stringify(rv.Index(i).Interface())
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(v)
}

// textOf reports the text of values that have a clean string form.
func textOf(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case template.HTML:
		return StripTags(string(val)), true
	case json.Number:
		return val.String(), true
	case bool:
		return strconv.FormatBool(val), true
	case int:
		return strconv.Itoa(val), true
	case int32:
		return strconv.FormatInt(int64(val), 10), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case uint:
		return strconv.FormatUint(uint64(val), 10), true
	case uint64:
		return strconv.FormatUint(val, 10), true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case time.Time:
		if val.IsZero() {
			return "", true
		}
		return val.Format(time.RFC3339), true
	case fmt.Stringer:
		if isNilPointer(val) {
			return "", true
		}
		return val.String(), true
	case error:
		if isNilPointer(val) {
			return "", true
		}
		return val.Error(), true
	}
	return "", false
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// fold lowers s for case-insensitive comparisons.
func fold(s string) string {
	return cases.Lower(language.Und).String(s)
}
