package instrumentation

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"unicode/utf8"
)

// FunctionName returns the short name of the calling function, e.g.
// "handleChat" or "(*Client).Send".
func FunctionName() string {
	pc, _, _, ok := runtime.Caller(1)
	if !ok {
		return "unknown"
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknown"
	}
	name := fn.Name()
	if slash := strings.LastIndex(name, "/"); slash >= 0 {
		name = name[slash+1:]
	}
	if dot := strings.Index(name, "."); dot >= 0 {
		name = name[dot+1:]
	}
	return name
}

// CallerInfo reports the fully qualified function, file and line skip
// frames above its caller.
func CallerInfo(skip int) (function, file string, line int) {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return "unknown", "unknown", 0
	}
	if fn := runtime.FuncForPC(pc); fn != nil {
		return fn.Name(), file, line
	}
	return "unknown", file, line
}

// SafeString formats any value, including nil, as a string.
func SafeString(value interface{}) string {
	if IsNil(value) {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case error:
		return v.Error()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// TruncateString keeps at most maxLen bytes of s without splitting a UTF-8
// sequence and appends "..." when anything was cut, so a cut result is up to
// maxLen+3 bytes long. A negative maxLen disables truncation.
func TruncateString(s string, maxLen int) string {
	if maxLen < 0 || len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// IsNil reports whether value is nil or a typed nil pointer, map, slice,
// channel, func or interface.
func IsNil(value interface{}) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}
