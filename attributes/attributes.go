package attributes

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// Redacted replaces the value of a sensitive attribute.
const Redacted = "[REDACTED]"

// sensitiveFragments mark a key as carrying a credential when found anywhere
// in the lower-cased key.
var sensitiveFragments = []string{
	"password",
	"secret",
	"token",
	"key",
	"auth",
	"credential",
	"api_key",
	"access_token",
	"refresh_token",
}

// sdkPrefixes are the namespaces whose keys the SDK itself defines.
// They are never redacted ("llm.prompt_tokens" contains "token").
var sdkPrefixes = []string{"llm.", "vector_db.", "framework.", "workflow."}

// LLM returns the identifying attributes of an LLM call.
func LLM(provider, model, operation string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(LLMProvider, provider),
		attribute.String(LLMModel, model),
		attribute.String(LLMOperation, operation),
	}
}

// VectorDB returns the identifying attributes of a vector database call.
func VectorDB(provider, operation string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(VectorDBProvider, provider),
		attribute.String(VectorDBOperation, operation),
	}
}

// Framework returns the identifying attributes of a framework operation.
func Framework(name, operation string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(FrameworkName, name),
		attribute.String(FrameworkOperation, operation),
	}
}

// Workflow returns the identifying attributes of a workflow run.
func Workflow(name, runID string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(WorkflowName, name),
		attribute.String(WorkflowRunID, runID),
	}
}

// FromValue converts an arbitrary Go value into a typed attribute.
// Unknown types are rendered with %v.
func FromValue(key string, value interface{}) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case bool:
		return attribute.Bool(key, v)
	case int:
		return attribute.Int(key, v)
	case int32:
		return attribute.Int64(key, int64(v))
	case int64:
		return attribute.Int64(key, v)
	case uint32:
		return attribute.Int64(key, int64(v))
	case float32:
		return attribute.Float64(key, float64(v))
	case float64:
		return attribute.Float64(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	case []int:
		return attribute.IntSlice(key, v)
	case []int64:
		return attribute.Int64Slice(key, v)
	case []float64:
		return attribute.Float64Slice(key, v)
	case []bool:
		return attribute.BoolSlice(key, v)
	case time.Time:
		return attribute.String(key, v.Format(time.RFC3339Nano))
	case time.Duration:
		return attribute.Int64(key, v.Milliseconds())
	case error:
		return attribute.String(key, v.Error())
	case fmt.Stringer:
		return attribute.String(key, v.String())
	case nil:
		return attribute.String(key, "")
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}

// FromMap converts a map into attributes, sorted by key.
func FromMap(m map[string]interface{}) []attribute.KeyValue {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]attribute.KeyValue, 0, len(keys))
	for _, k := range keys {
		out = append(out, FromValue(k, m[k]))
	}
	return out
}

// IsSensitiveKey reports whether a key looks like it carries a credential.
func IsSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, prefix := range sdkPrefixes {
		if strings.HasPrefix(lower, prefix) && !strings.HasPrefix(lower, WorkflowMetadata+".") {
			return false
		}
	}
	for _, fragment := range sensitiveFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

// Sanitize returns a copy of attrs with sensitive values replaced by
// "[REDACTED]". The input is not modified.
func Sanitize(attrs map[string]interface{}) map[string]interface{} {
	sanitized := make(map[string]interface{}, len(attrs))
	for k, v := range attrs {
		if IsSensitiveKey(k) {
			sanitized[k] = Redacted
		} else {
			sanitized[k] = v
		}
	}
	return sanitized
}

// SanitizeKeyValues is Sanitize for attribute lists. Order is preserved.
func SanitizeKeyValues(kvs []attribute.KeyValue) []attribute.KeyValue {
	out := make([]attribute.KeyValue, len(kvs))
	for i, kv := range kvs {
		if IsSensitiveKey(string(kv.Key)) {
			out[i] = attribute.String(string(kv.Key), Redacted)
		} else {
			out[i] = kv
		}
	}
	return out
}

// Merge combines maps left to right; later maps win on key conflicts.
func Merge(maps ...map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{})
	for _, m := range maps {
		for k, v := range m {
			merged[k] = v
		}
	}
	return merged
}
