package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/untrace-dev/untrace-go/attributes"
)

// LLMOperation is the kind of call made to a model provider.
type LLMOperation string

const (
	OperationCompletion         LLMOperation = "completion"
	OperationChat               LLMOperation = "chat"
	OperationEmbedding          LLMOperation = "embedding"
	OperationFineTune           LLMOperation = "fine_tune"
	OperationImageGeneration    LLMOperation = "image_generation"
	OperationAudioTranscription LLMOperation = "audio_transcription"
	OperationAudioGeneration    LLMOperation = "audio_generation"
	OperationModeration         LLMOperation = "moderation"
	OperationToolUse            LLMOperation = "tool_use"
)

// LLMSpanOptions describes an LLM call. Nil pointer fields are omitted from
// the span; everything else maps to exactly one llm.* attribute.
type LLMSpanOptions struct {
	Provider  string
	Model     string
	Operation LLMOperation

	PromptTokens     *int
	CompletionTokens *int
	TotalTokens      *int
	Temperature      *float64
	TopP             *float64
	MaxTokens        *int
	Stream           *bool
	Tools            *string
	ToolCalls        *string
	DurationMs       *int64
	CostPrompt       *float64
	CostCompletion   *float64
	CostTotal        *float64
	Error            *string
	ErrorType        *string
	RequestID        *string
	UsageReason      *string

	// Attributes are added after sanitization.
	Attributes map[string]interface{}
}

// KeyValues converts the options into span attributes.
func (o LLMSpanOptions) KeyValues() []attribute.KeyValue {
	var attrs []attribute.KeyValue
	str := func(key, v string) {
		if v != "" {
			attrs = append(attrs, attribute.String(key, v))
		}
	}
	strPtr := func(key string, v *string) {
		if v != nil {
			attrs = append(attrs, attribute.String(key, *v))
		}
	}
	intPtr := func(key string, v *int) {
		if v != nil {
			attrs = append(attrs, attribute.Int(key, *v))
		}
	}
	floatPtr := func(key string, v *float64) {
		if v != nil {
			attrs = append(attrs, attribute.Float64(key, *v))
		}
	}

	str(attributes.LLMProvider, o.Provider)
	str(attributes.LLMModel, o.Model)
	str(attributes.LLMOperation, string(o.Operation))
	intPtr(attributes.LLMPromptTokens, o.PromptTokens)
	intPtr(attributes.LLMCompletionTokens, o.CompletionTokens)
	intPtr(attributes.LLMTotalTokens, o.TotalTokens)
	floatPtr(attributes.LLMTemperature, o.Temperature)
	floatPtr(attributes.LLMTopP, o.TopP)
	intPtr(attributes.LLMMaxTokens, o.MaxTokens)
	if o.Stream != nil {
		attrs = append(attrs, attribute.Bool(attributes.LLMStream, *o.Stream))
	}
	strPtr(attributes.LLMTools, o.Tools)
	strPtr(attributes.LLMToolCalls, o.ToolCalls)
	if o.DurationMs != nil {
		attrs = append(attrs, attribute.Int64(attributes.LLMDurationMs, *o.DurationMs))
	}
	floatPtr(attributes.LLMCostPrompt, o.CostPrompt)
	floatPtr(attributes.LLMCostCompletion, o.CostCompletion)
	floatPtr(attributes.LLMCostTotal, o.CostTotal)
	strPtr(attributes.LLMError, o.Error)
	strPtr(attributes.LLMErrorType, o.ErrorType)
	strPtr(attributes.LLMRequestID, o.RequestID)
	strPtr(attributes.LLMUsageReason, o.UsageReason)

	return append(attrs, attributes.FromMap(attributes.Sanitize(o.Attributes))...)
}

// VectorDBSpanOptions describes a vector database call.
type VectorDBSpanOptions struct {
	Provider            string
	Collection          string
	Operation           string
	Dimensions          *int
	VectorCount         *int
	QueryVectorCount    *int
	ResultCount         *int
	SimilarityThreshold *float64
	Filter              *string
	Metadata            *string
	Attributes          map[string]interface{}
}

// KeyValues converts the options into span attributes.
func (o VectorDBSpanOptions) KeyValues() []attribute.KeyValue {
	var attrs []attribute.KeyValue
	for _, kv := range []struct{ key, value string }{
		{attributes.VectorDBProvider, o.Provider},
		{attributes.VectorDBCollection, o.Collection},
		{attributes.VectorDBOperation, o.Operation},
	} {
		if kv.value != "" {
			attrs = append(attrs, attribute.String(kv.key, kv.value))
		}
	}
	for _, kv := range []struct {
		key   string
		value *int
	}{
		{attributes.VectorDBDimensions, o.Dimensions},
		{attributes.VectorDBVectorCount, o.VectorCount},
		{attributes.VectorDBQueryVectorCount, o.QueryVectorCount},
		{attributes.VectorDBResultCount, o.ResultCount},
	} {
		if kv.value != nil {
			attrs = append(attrs, attribute.Int(kv.key, *kv.value))
		}
	}
	if o.SimilarityThreshold != nil {
		attrs = append(attrs, attribute.Float64(attributes.VectorDBSimilarityThreshold, *o.SimilarityThreshold))
	}
	if o.Filter != nil {
		attrs = append(attrs, attribute.String(attributes.VectorDBFilter, *o.Filter))
	}
	if o.Metadata != nil {
		attrs = append(attrs, attribute.String(attributes.VectorDBMetadata, *o.Metadata))
	}
	return append(attrs, attributes.FromMap(attributes.Sanitize(o.Attributes))...)
}

// SpanOptions configures a generic span.
type SpanOptions struct {
	Kind trace.SpanKind
	// Parent, when valid, becomes the parent instead of the span in ctx.
	Parent     trace.SpanContext
	Attributes map[string]interface{}
	Links      []trace.Link
}

// TokenUsage is the token accounting of one LLM call.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
	Provider         string
}

// Total returns TotalTokens, or the sum of prompt and completion tokens
// when the provider did not report a total.
func (u TokenUsage) Total() int {
	if u.TotalTokens > 0 {
		return u.TotalTokens
	}
	return u.PromptTokens + u.CompletionTokens
}

// Cost is the monetary cost of one LLM call.
type Cost struct {
	Prompt     float64
	Completion float64
	Total      float64
	Currency   string
	Model      string
	Provider   string
}

// Ptr returns a pointer to v. Handy for the optional option fields.
func Ptr[T any](v T) *T {
	return &v
}
