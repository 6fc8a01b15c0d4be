// Package attributes defines the dotted attribute keys the SDK emits and
// helpers to build, convert and sanitize attribute sets.
//
// The key strings are a wire contract: backends index spans on them, so
// they must never change.
package attributes

// LLM attribute keys
const (
	LLMProvider         = "llm.provider"
	LLMModel            = "llm.model"
	LLMOperation        = "llm.operation"
	LLMPromptTokens     = "llm.prompt_tokens"
	LLMCompletionTokens = "llm.completion_tokens"
	LLMTotalTokens      = "llm.total_tokens"
	LLMTemperature      = "llm.temperature"
	LLMTopP             = "llm.top_p"
	LLMMaxTokens        = "llm.max_tokens"
	LLMStream           = "llm.stream"
	LLMTools            = "llm.tools"
	LLMToolCalls        = "llm.tool_calls"
	LLMDurationMs       = "llm.duration_ms"
	LLMCostPrompt       = "llm.cost_prompt"
	LLMCostCompletion   = "llm.cost_completion"
	LLMCostTotal        = "llm.cost_total"
	LLMError            = "llm.error"
	LLMErrorType        = "llm.error_type"
	LLMRequestID        = "llm.request_id"
	LLMUsageReason      = "llm.usage_reason"
	LLMRequestBody      = "llm.request.body"
	LLMResponseBody     = "llm.response.body"
)

// Vector database attribute keys
const (
	VectorDBProvider            = "vector_db.provider"
	VectorDBCollection          = "vector_db.collection"
	VectorDBOperation           = "vector_db.operation"
	VectorDBDimensions          = "vector_db.dimensions"
	VectorDBVectorCount         = "vector_db.vector_count"
	VectorDBQueryVectorCount    = "vector_db.query_vector_count"
	VectorDBResultCount         = "vector_db.result_count"
	VectorDBSimilarityThreshold = "vector_db.similarity_threshold"
	VectorDBFilter              = "vector_db.filter"
	VectorDBMetadata            = "vector_db.metadata"
)

// Framework attribute keys
const (
	FrameworkName       = "framework.name"
	FrameworkVersion    = "framework.version"
	FrameworkType       = "framework.type"
	FrameworkOperation  = "framework.operation"
	FrameworkComponent  = "framework.component"
	FrameworkMethod     = "framework.method"
	FrameworkRoute      = "framework.route"
	FrameworkStatusCode = "framework.status_code"
	FrameworkDurationMs = "framework.duration_ms"
	FrameworkError      = "framework.error"
	FrameworkErrorType  = "framework.error_type"
)

// Workflow attribute keys
const (
	WorkflowID         = "workflow.id"
	WorkflowName       = "workflow.name"
	WorkflowRunID      = "workflow.run_id"
	WorkflowUserID     = "workflow.user_id"
	WorkflowSessionID  = "workflow.session_id"
	WorkflowVersion    = "workflow.version"
	WorkflowParentID   = "workflow.parent_id"
	WorkflowStatus     = "workflow.status"
	WorkflowDurationMs = "workflow.duration_ms"
	WorkflowError      = "workflow.error"
	WorkflowErrorType  = "workflow.error_type"

	// WorkflowMetadata is the prefix for per-key metadata attributes.
	WorkflowMetadata = "workflow.metadata"
)

// SDK identification, attached to the exported resource.
const (
	SDKName     = "untrace.sdk.name"
	SDKVersion  = "untrace.sdk.version"
	SDKLanguage = "untrace.sdk.language"
)

// MetadataKey returns the attribute key for a workflow metadata entry,
// e.g. MetadataKey("tenant") == "workflow.metadata.tenant".
func MetadataKey(key string) string {
	return WorkflowMetadata + "." + key
}
