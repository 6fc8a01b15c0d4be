package instrumentation

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

type namedClient struct{}

func (namedClient) callerName() string { return FunctionName() }

func TestFunctionName(t *testing.T) {
	assert.Equal(t, "TestFunctionName", FunctionName())
	assert.Equal(t, "namedClient.callerName", namedClient{}.callerName())
}

func TestCallerInfo(t *testing.T) {
	fn, file, line := CallerInfo(0)
	assert.True(t, strings.HasSuffix(fn, ".TestCallerInfo"), fn)
	assert.True(t, strings.HasSuffix(file, "util_test.go"), file)
	assert.Positive(t, line)

	fn, file, line = CallerInfo(1000)
	assert.Equal(t, "unknown", fn)
	assert.Equal(t, "unknown", file)
	assert.Zero(t, line)
}

func TestSafeString(t *testing.T) {
	var nilErr error
	var nilPtr *int
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"nil", nil, ""},
		{"nil error", nilErr, ""},
		{"typed nil pointer", nilPtr, ""},
		{"string", "hello", "hello"},
		{"bytes", []byte("raw"), "raw"},
		{"error", errors.New("failed"), "failed"},
		{"stringer", 1500 * time.Millisecond, "1.5s"},
		{"int", 42, "42"},
		{"struct", struct{ A int }{1}, "{1}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeString(tt.value))
		})
	}
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "exact", TruncateString("exact", 5))
	assert.Equal(t, "abc...", TruncateString("abcdef", 3))
	assert.Equal(t, "...", TruncateString("abc", 0))
	assert.Equal(t, "unbounded", TruncateString("unbounded", -1))

	// "é" is two bytes; cutting inside it backs up to the rune start.
	got := TruncateString("aé", 2)
	assert.Equal(t, "a...", got)
}

func TestTruncateStringLengthBound(t *testing.T) {
	inputs := []string{"", "ascii text of some length", "héllo wörld ünïcode", "日本語のテキスト"}
	for _, in := range inputs {
		for maxLen := 0; maxLen <= len(in)+1; maxLen++ {
			got := TruncateString(in, maxLen)
			if len(in) <= maxLen {
				assert.Equal(t, in, got)
				continue
			}
			assert.LessOrEqual(t, len(got), maxLen+len("..."), "%q cut at %d", in, maxLen)
			assert.True(t, utf8.ValidString(got), "%q cut at %d", in, maxLen)
		}
	}
}

func TestIsNil(t *testing.T) {
	var m map[string]int
	var s []int
	var ch chan int
	var fn func()
	var p *struct{}

	for _, v := range []interface{}{nil, m, s, ch, fn, p} {
		assert.True(t, IsNil(v), "%T", v)
	}
	for _, v := range []interface{}{0, "", struct{}{}, map[string]int{}, &struct{}{}} {
		assert.False(t, IsNil(v), "%T", v)
	}
}
