package actions

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
)

// Named is implemented by actions that report a stable name for logging,
// filtering and history.
type Named interface {
	Name() string
}

// Parameterized is implemented by actions that can render their payload.
type Parameterized interface {
	Params() string
}

// Name returns a's name, falling back to its dynamic type name.
func Name(a any) string {
	if n, ok := a.(Named); ok {
		return n.Name()
	}
	if a == nil {
		return "<nil>"
	}
	t := reflect.TypeOf(a)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.Name()
}

// Params renders a's payload, or "" when a carries none.
func Params(a any) string {
	if p, ok := a.(Parameterized); ok {
		return p.Params()
	}
	if a == nil {
		return ""
	}
	v := reflect.ValueOf(a)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	if v.Kind() == reflect.Struct && v.NumField() == 0 {
		return ""
	}
	return fmt.Sprintf("%+v", v.Interface())
}

// Category derives the lowercase category prefix from a CamelCase action
// name: "WeatherDidLoad" is "weather", "SearchQueryChange" is "search".
// Single-word names have no category and return "".
func Category(name string) string {
	runes := []rune(name)
	if len(runes) == 0 {
		return ""
	}
	end := -1
	for i := 1; i < len(runes); i++ {
		if unicode.IsUpper(runes[i]) {
			end = i
			break
		}
	}
	if end < 0 {
		return ""
	}
	return strings.ToLower(string(runes[:end]))
}

// IsAsyncResult reports whether name follows the "Did" convention used for
// actions produced by completed work (e.g. "WeatherDidLoad", "DidConnect").
func IsAsyncResult(name string) bool {
	if strings.HasPrefix(name, "Did") {
		return true
	}
	i := strings.Index(name, "Did")
	return i > 0 && i+3 < len(name) && unicode.IsUpper(rune(name[i+3]))
}
