package untrace

import (
	"github.com/untrace-dev/untrace-go/core"
	"github.com/untrace-dev/untrace-go/instrumentation"
	"github.com/untrace-dev/untrace-go/providers"
	"github.com/untrace-dev/untrace-go/telemetry"
	"github.com/untrace-dev/untrace-go/workflow"
)

// Re-export the types most callers need so a single import suffices.
type (
	// Configuration
	Config       = core.Config
	ConfigOption = core.Option
	Logger       = core.Logger
	Error        = core.Error

	// Spans and metrics
	LLMOperation        = telemetry.LLMOperation
	LLMSpanOptions      = telemetry.LLMSpanOptions
	LLMResult           = telemetry.LLMResult
	VectorDBSpanOptions = telemetry.VectorDBSpanOptions
	SpanOptions         = telemetry.SpanOptions
	TokenUsage          = telemetry.TokenUsage
	Cost                = telemetry.Cost
	HealthStatus        = telemetry.HealthStatus

	// Workflows and providers
	Workflow              = workflow.Workflow
	WorkflowOptions       = workflow.Options
	Provider              = providers.Provider
	InstrumentationConfig = instrumentation.Config
)

// LLM operations.
const (
	OperationCompletion         = telemetry.OperationCompletion
	OperationChat               = telemetry.OperationChat
	OperationEmbedding          = telemetry.OperationEmbedding
	OperationFineTune           = telemetry.OperationFineTune
	OperationImageGeneration    = telemetry.OperationImageGeneration
	OperationAudioTranscription = telemetry.OperationAudioTranscription
	OperationAudioGeneration    = telemetry.OperationAudioGeneration
	OperationModeration         = telemetry.OperationModeration
	OperationToolUse            = telemetry.OperationToolUse
)

// Sentinel errors, for errors.Is.
var (
	ErrMissingAPIKey         = core.ErrMissingAPIKey
	ErrInvalidSamplingRate   = core.ErrInvalidSamplingRate
	ErrInvalidBatchSize      = core.ErrInvalidBatchSize
	ErrInvalidExportInterval = core.ErrInvalidExportInterval
	ErrAlreadyInitialized    = core.ErrAlreadyInitialized
	ErrShutdown              = core.ErrShutdown
	ErrProviderNotFound      = core.ErrProviderNotFound
	ErrNoActiveWorkflow      = core.ErrNoActiveWorkflow
)

// Re-export configuration constructors and options.
var (
	DefaultConfig    = core.DefaultConfig
	NewConfig        = core.NewConfig
	NewConfigFromEnv = core.NewConfigFromEnv

	WithAPIKey              = core.WithAPIKey
	WithBaseURL             = core.WithBaseURL
	WithServiceName         = core.WithServiceName
	WithServiceVersion      = core.WithServiceVersion
	WithEnvironment         = core.WithEnvironment
	WithDebug               = core.WithDebug
	WithSamplingRate        = core.WithSamplingRate
	WithMaxBatchSize        = core.WithMaxBatchSize
	WithExportInterval      = core.WithExportInterval
	WithCapture             = core.WithCapture
	WithAutoInstrumentation = core.WithAutoInstrumentation
	WithProviders           = core.WithProviders
	WithHeaders             = core.WithHeaders
	WithResourceAttributes  = core.WithResourceAttributes
	WithExporterProtocol    = core.WithExporterProtocol
	WithInsecure            = core.WithInsecure
	WithConsoleExport       = core.WithConsoleExport
	WithMetrics             = core.WithMetrics
	WithConfigFile          = core.WithConfigFile
	IsConfigurationError    = core.IsConfigurationError
	IsValidationError       = core.IsValidationError
	IsInitializationError   = core.IsInitializationError
	IsInstrumentationError  = core.IsInstrumentationError
)

// Ptr returns a pointer to v, for the optional fields of LLMSpanOptions.
func Ptr[T any](v T) *T {
	return telemetry.Ptr(v)
}
