package attributes

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

type region string

func (r region) String() string { return "region-" + string(r) }

func TestWireKeys(t *testing.T) {
	// Backends index on these exact strings.
	assert.Equal(t, "llm.prompt_tokens", LLMPromptTokens)
	assert.Equal(t, "llm.cost_total", LLMCostTotal)
	assert.Equal(t, "llm.request_id", LLMRequestID)
	assert.Equal(t, "vector_db.similarity_threshold", VectorDBSimilarityThreshold)
	assert.Equal(t, "framework.status_code", FrameworkStatusCode)
	assert.Equal(t, "workflow.parent_id", WorkflowParentID)
	assert.Equal(t, "workflow.metadata.tenant", MetadataKey("tenant"))
}

func TestBuilders(t *testing.T) {
	assert.Equal(t, []attribute.KeyValue{
		attribute.String("llm.provider", "openai"),
		attribute.String("llm.model", "gpt-4o"),
		attribute.String("llm.operation", "chat"),
	}, LLM("openai", "gpt-4o", "chat"))

	assert.Equal(t, []attribute.KeyValue{
		attribute.String("vector_db.provider", "pinecone"),
		attribute.String("vector_db.operation", "query"),
	}, VectorDB("pinecone", "query"))

	assert.Equal(t, []attribute.KeyValue{
		attribute.String("framework.name", "langchain"),
		attribute.String("framework.operation", "invoke"),
	}, Framework("langchain", "invoke"))

	assert.Equal(t, []attribute.KeyValue{
		attribute.String("workflow.name", "w1"),
		attribute.String("workflow.run_id", "r1"),
	}, Workflow("w1", "r1"))
}

func TestFromValue(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name  string
		value interface{}
		want  attribute.Value
	}{
		{"string", "x", attribute.StringValue("x")},
		{"bool", true, attribute.BoolValue(true)},
		{"int", 7, attribute.IntValue(7)},
		{"int32", int32(7), attribute.Int64Value(7)},
		{"int64", int64(7), attribute.Int64Value(7)},
		{"float32", float32(0.5), attribute.Float64Value(0.5)},
		{"float64", 0.25, attribute.Float64Value(0.25)},
		{"strings", []string{"a", "b"}, attribute.StringSliceValue([]string{"a", "b"})},
		{"ints", []int{1, 2}, attribute.IntSliceValue([]int{1, 2})},
		{"time", ts, attribute.StringValue("2024-01-02T03:04:05Z")},
		{"duration", 1500 * time.Millisecond, attribute.Int64Value(1500)},
		{"error", errors.New("boom"), attribute.StringValue("boom")},
		{"stringer", region("eu"), attribute.StringValue("region-eu")},
		{"nil", nil, attribute.StringValue("")},
		{"struct", struct{ A int }{1}, attribute.StringValue("{1}")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := FromValue("k", tt.value)
			assert.Equal(t, attribute.Key("k"), kv.Key)
			assert.Equal(t, tt.want, kv.Value)
		})
	}
}

func TestFromMapSorted(t *testing.T) {
	kvs := FromMap(map[string]interface{}{"b": 1, "a": "x", "c": true})

	assert.Equal(t, []attribute.KeyValue{
		attribute.String("a", "x"),
		attribute.Int("b", 1),
		attribute.Bool("c", true),
	}, kvs)
	assert.Nil(t, FromMap(nil))
}

func TestSanitize(t *testing.T) {
	in := map[string]interface{}{
		"password":                  "hunter2",
		"OpenAI_API_Key":            "sk-123",
		"authorization":             "Bearer x",
		"user":                      "alice",
		"llm.prompt_tokens":         12,
		"llm.max_tokens":            256,
		"workflow.metadata.api_key": "leak",
		"workflow.metadata.tenant":  "acme",
	}

	out := Sanitize(in)

	assert.Equal(t, Redacted, out["password"])
	assert.Equal(t, Redacted, out["OpenAI_API_Key"])
	assert.Equal(t, Redacted, out["authorization"])
	assert.Equal(t, "alice", out["user"])
	assert.Equal(t, 12, out["llm.prompt_tokens"])
	assert.Equal(t, 256, out["llm.max_tokens"])
	assert.Equal(t, Redacted, out["workflow.metadata.api_key"])
	assert.Equal(t, "acme", out["workflow.metadata.tenant"])

	// input untouched
	assert.Equal(t, "hunter2", in["password"])
}

func TestSanitizeKeyValues(t *testing.T) {
	out := SanitizeKeyValues([]attribute.KeyValue{
		attribute.String("refresh_token", "r"),
		attribute.Int("llm.total_tokens", 3),
	})

	assert.Equal(t, attribute.String("refresh_token", Redacted), out[0])
	assert.Equal(t, attribute.Int("llm.total_tokens", 3), out[1])
}

func TestMerge(t *testing.T) {
	merged := Merge(
		map[string]interface{}{"a": 1, "b": 1},
		nil,
		map[string]interface{}{"b": 2, "c": 3},
	)
	assert.Equal(t, map[string]interface{}{"a": 1, "b": 2, "c": 3}, merged)
	assert.Empty(t, Merge())
}
