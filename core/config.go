package core

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default configuration values.
const (
	DefaultBaseURL        = "https://untrace.dev"
	DefaultServiceName    = "untrace-app"
	DefaultServiceVersion = "0.1.0"
	DefaultEnvironment    = "production"
	DefaultSamplingRate   = 1.0
	DefaultMaxBatchSize   = 512
	DefaultExportInterval = 5 * time.Second

	// AllProviders in Providers keeps every registered provider enabled.
	AllProviders = "all"

	ProtocolHTTP = "http"
	ProtocolGRPC = "grpc"
)

// Config holds all configuration options for the SDK.
// It supports four-layer configuration priority:
//  1. Default values (lowest priority)
//  2. Environment variables
//  3. Config file (LoadFromFile), when the caller loads one
//  4. Functional options (highest priority)
//
// Example usage:
//
//	cfg, err := NewConfig(
//	    WithAPIKey("utr_..."),
//	    WithServiceName("checkout"),
//	    WithSamplingRate(0.25),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
type Config struct {
	APIKey         string `json:"api_key" yaml:"api_key"`
	BaseURL        string `json:"base_url" yaml:"base_url"`
	ServiceName    string `json:"service_name" yaml:"service_name"`
	ServiceVersion string `json:"service_version" yaml:"service_version"`
	Environment    string `json:"environment" yaml:"environment"`
	Debug          bool   `json:"debug" yaml:"debug"`

	// SamplingRate is the fraction of root traces kept, inclusive on both ends.
	SamplingRate   float64       `json:"sampling_rate" yaml:"sampling_rate"`
	MaxBatchSize   int           `json:"max_batch_size" yaml:"max_batch_size"`
	ExportInterval time.Duration `json:"export_interval" yaml:"export_interval"`

	CaptureBody                bool     `json:"capture_body" yaml:"capture_body"`
	CaptureErrors              bool     `json:"capture_errors" yaml:"capture_errors"`
	DisableAutoInstrumentation bool     `json:"disable_auto_instrumentation" yaml:"disable_auto_instrumentation"`
	Providers                  []string `json:"providers" yaml:"providers"`

	// Headers are sent with every export request in addition to auth.
	Headers            map[string]string      `json:"headers,omitempty" yaml:"headers,omitempty"`
	ResourceAttributes map[string]interface{} `json:"resource_attributes,omitempty" yaml:"resource_attributes,omitempty"`

	ExporterProtocol string `json:"exporter_protocol" yaml:"exporter_protocol"`
	Insecure         bool   `json:"insecure" yaml:"insecure"`
	ConsoleExport    bool   `json:"console_export" yaml:"console_export"`
	MetricsEnabled   bool   `json:"metrics_enabled" yaml:"metrics_enabled"`
}

// Option is a functional option for configuring the SDK.
// Options are applied in order and can return an error if the value is invalid.
type Option func(*Config) error

// DefaultConfig returns a configuration with every field at its default.
// The API key is left empty, so the result does not validate on its own.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:          DefaultBaseURL,
		ServiceName:      DefaultServiceName,
		ServiceVersion:   DefaultServiceVersion,
		Environment:      DefaultEnvironment,
		SamplingRate:     DefaultSamplingRate,
		MaxBatchSize:     DefaultMaxBatchSize,
		ExportInterval:   DefaultExportInterval,
		CaptureBody:      true,
		CaptureErrors:    true,
		Providers:        []string{AllProviders},
		ExporterProtocol: ProtocolHTTP,
		MetricsEnabled:   true,
	}
}

// LoadFromEnv overlays UNTRACE_* environment variables onto the config.
// Unset variables leave the field untouched; values that fail to parse are
// ignored so the field keeps its previous (default) value.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("UNTRACE_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("UNTRACE_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("UNTRACE_SERVICE_NAME"); v != "" {
		c.ServiceName = v
	}
	if v := os.Getenv("UNTRACE_SERVICE_VERSION"); v != "" {
		c.ServiceVersion = v
	}
	if v := os.Getenv("UNTRACE_ENVIRONMENT"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("UNTRACE_DEBUG"); v != "" {
		c.Debug = parseBoolOr(v, c.Debug)
	}

	// Export settings
	if v := os.Getenv("UNTRACE_SAMPLING_RATE"); v != "" {
		if rate, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			c.SamplingRate = rate
		}
	}
	if v := os.Getenv("UNTRACE_MAX_BATCH_SIZE"); v != "" {
		// Values below 1 cannot be a batch size and fall back like any other
		// unparsable value.
		if size, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && size > 0 {
			c.MaxBatchSize = size
		}
	}
	if v := os.Getenv("UNTRACE_EXPORT_INTERVAL"); v != "" {
		if d, ok := parseSeconds(v); ok && d > 0 {
			c.ExportInterval = d
		}
	}
	if v := os.Getenv("UNTRACE_EXPORTER_PROTOCOL"); v != "" {
		c.ExporterProtocol = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("UNTRACE_INSECURE"); v != "" {
		c.Insecure = parseBoolOr(v, c.Insecure)
	}
	if v := os.Getenv("UNTRACE_CONSOLE_EXPORT"); v != "" {
		c.ConsoleExport = parseBoolOr(v, c.ConsoleExport)
	}
	if v := os.Getenv("UNTRACE_METRICS_ENABLED"); v != "" {
		c.MetricsEnabled = parseBoolOr(v, c.MetricsEnabled)
	}
	if v := os.Getenv("UNTRACE_HEADERS"); v != "" {
		for k, val := range parseKeyValueList(v) {
			if c.Headers == nil {
				c.Headers = make(map[string]string)
			}
			c.Headers[k] = val
		}
	}
	if v := os.Getenv("UNTRACE_RESOURCE_ATTRIBUTES"); v != "" {
		for k, val := range parseKeyValueList(v) {
			if c.ResourceAttributes == nil {
				c.ResourceAttributes = make(map[string]interface{})
			}
			c.ResourceAttributes[k] = val
		}
	}

	// Capture settings
	if v := os.Getenv("UNTRACE_CAPTURE_BODY"); v != "" {
		c.CaptureBody = parseBoolOr(v, c.CaptureBody)
	}
	if v := os.Getenv("UNTRACE_CAPTURE_ERRORS"); v != "" {
		c.CaptureErrors = parseBoolOr(v, c.CaptureErrors)
	}
	if v := os.Getenv("UNTRACE_DISABLE_AUTO_INSTRUMENTATION"); v != "" {
		c.DisableAutoInstrumentation = parseBoolOr(v, c.DisableAutoInstrumentation)
	}
	if v := os.Getenv("UNTRACE_PROVIDERS"); v != "" {
		if providers := parseStringList(v); len(providers) > 0 {
			c.Providers = providers
		}
	}

	return nil
}

// fileConfig mirrors Config with optional fields so a file only overrides
// what it sets. Export interval is given in seconds, like the env variable.
type fileConfig struct {
	APIKey                     *string                `json:"api_key" yaml:"api_key"`
	BaseURL                    *string                `json:"base_url" yaml:"base_url"`
	ServiceName                *string                `json:"service_name" yaml:"service_name"`
	ServiceVersion             *string                `json:"service_version" yaml:"service_version"`
	Environment                *string                `json:"environment" yaml:"environment"`
	Debug                      *bool                  `json:"debug" yaml:"debug"`
	SamplingRate               *float64               `json:"sampling_rate" yaml:"sampling_rate"`
	MaxBatchSize               *int                   `json:"max_batch_size" yaml:"max_batch_size"`
	ExportInterval             *fileDuration          `json:"export_interval" yaml:"export_interval"`
	CaptureBody                *bool                  `json:"capture_body" yaml:"capture_body"`
	CaptureErrors              *bool                  `json:"capture_errors" yaml:"capture_errors"`
	DisableAutoInstrumentation *bool                  `json:"disable_auto_instrumentation" yaml:"disable_auto_instrumentation"`
	Providers                  []string               `json:"providers" yaml:"providers"`
	Headers                    map[string]string      `json:"headers" yaml:"headers"`
	ResourceAttributes         map[string]interface{} `json:"resource_attributes" yaml:"resource_attributes"`
	ExporterProtocol           *string                `json:"exporter_protocol" yaml:"exporter_protocol"`
	Insecure                   *bool                  `json:"insecure" yaml:"insecure"`
	ConsoleExport              *bool                  `json:"console_export" yaml:"console_export"`
	MetricsEnabled             *bool                  `json:"metrics_enabled" yaml:"metrics_enabled"`
}

// LoadFromFile overlays a JSON or YAML config file onto the config.
// The format is chosen by extension (.json, .yaml, .yml).
func (c *Config) LoadFromFile(path string) error {
	cleanPath := filepath.Clean(path)

	ext := filepath.Ext(cleanPath)
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return &Error{
			Op:      "Config.LoadFromFile",
			Kind:    KindConfiguration,
			ID:      path,
			Message: fmt.Sprintf("unsupported config file extension %q", ext),
			Err:     ErrInvalidConfiguration,
		}
	}

	data, err := os.ReadFile(cleanPath) // #nosec G304 -- caller-supplied config path
	if err != nil {
		return &Error{Op: "Config.LoadFromFile", Kind: KindConfiguration, ID: path, Err: err}
	}

	var fc fileConfig
	switch ext {
	case ".json":
		err = json.Unmarshal(data, &fc)
	default:
		err = yaml.Unmarshal(data, &fc)
	}
	if err != nil {
		return &Error{
			Op:      "Config.LoadFromFile",
			Kind:    KindConfiguration,
			ID:      path,
			Message: fmt.Sprintf("failed to parse %s: %v", filepath.Base(cleanPath), err),
			Err:     ErrInvalidConfiguration,
		}
	}

	fc.applyTo(c)
	return nil
}

func (fc *fileConfig) applyTo(c *Config) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}

	setString(&c.APIKey, fc.APIKey)
	setString(&c.BaseURL, fc.BaseURL)
	setString(&c.ServiceName, fc.ServiceName)
	setString(&c.ServiceVersion, fc.ServiceVersion)
	setString(&c.Environment, fc.Environment)
	setString(&c.ExporterProtocol, fc.ExporterProtocol)
	setBool(&c.Debug, fc.Debug)
	setBool(&c.CaptureBody, fc.CaptureBody)
	setBool(&c.CaptureErrors, fc.CaptureErrors)
	setBool(&c.DisableAutoInstrumentation, fc.DisableAutoInstrumentation)
	setBool(&c.Insecure, fc.Insecure)
	setBool(&c.ConsoleExport, fc.ConsoleExport)
	setBool(&c.MetricsEnabled, fc.MetricsEnabled)

	if fc.SamplingRate != nil {
		c.SamplingRate = *fc.SamplingRate
	}
	if fc.MaxBatchSize != nil {
		c.MaxBatchSize = *fc.MaxBatchSize
	}
	if fc.ExportInterval != nil {
		c.ExportInterval = time.Duration(*fc.ExportInterval)
	}
	if len(fc.Providers) > 0 {
		c.Providers = append([]string(nil), fc.Providers...)
	}
	for k, v := range fc.Headers {
		if c.Headers == nil {
			c.Headers = make(map[string]string)
		}
		c.Headers[k] = v
	}
	for k, v := range fc.ResourceAttributes {
		if c.ResourceAttributes == nil {
			c.ResourceAttributes = make(map[string]interface{})
		}
		c.ResourceAttributes[k] = v
	}
}

// Validate checks the rules that must hold before the SDK is usable.
// Each violation returns a distinct validation error naming the field.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return &Error{
			Op:      "Config.Validate",
			Kind:    KindValidation,
			ID:      "api_key",
			Message: "API key is required",
			Err:     ErrMissingAPIKey,
		}
	}

	// NaN fails both comparisons, so it is rejected here as well.
	if !(c.SamplingRate >= 0.0 && c.SamplingRate <= 1.0) {
		return &Error{
			Op:      "Config.Validate",
			Kind:    KindValidation,
			ID:      "sampling_rate",
			Message: fmt.Sprintf("sampling rate must be between 0.0 and 1.0, got %v", c.SamplingRate),
			Err:     ErrInvalidSamplingRate,
		}
	}

	if c.MaxBatchSize <= 0 {
		return &Error{
			Op:      "Config.Validate",
			Kind:    KindValidation,
			ID:      "max_batch_size",
			Message: fmt.Sprintf("max batch size must be greater than 0, got %d", c.MaxBatchSize),
			Err:     ErrInvalidBatchSize,
		}
	}

	if c.ExportInterval <= 0 {
		return &Error{
			Op:      "Config.Validate",
			Kind:    KindValidation,
			ID:      "export_interval",
			Message: fmt.Sprintf("export interval must be greater than 0, got %s", c.ExportInterval),
			Err:     ErrInvalidExportInterval,
		}
	}

	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return &Error{
			Op:      "Config.Validate",
			Kind:    KindValidation,
			ID:      "base_url",
			Message: fmt.Sprintf("base URL must be an absolute URL, got %q", c.BaseURL),
			Err:     ErrInvalidConfiguration,
		}
	}

	if c.ExporterProtocol != ProtocolHTTP && c.ExporterProtocol != ProtocolGRPC {
		return &Error{
			Op:      "Config.Validate",
			Kind:    KindValidation,
			ID:      "exporter_protocol",
			Message: fmt.Sprintf("exporter protocol must be %q or %q, got %q", ProtocolHTTP, ProtocolGRPC, c.ExporterProtocol),
			Err:     ErrInvalidConfiguration,
		}
	}

	return nil
}

// NewConfig creates a configuration from defaults, the environment and the
// given options, in that order, and validates the result.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load env config: %w", err)
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// NewConfigFromEnv is NewConfig for environment-driven setups. A missing
// UNTRACE_API_KEY is reported as a configuration error before validation runs.
func NewConfigFromEnv(opts ...Option) (*Config, error) {
	if os.Getenv("UNTRACE_API_KEY") == "" {
		return nil, &Error{
			Op:      "NewConfigFromEnv",
			Kind:    KindConfiguration,
			ID:      "UNTRACE_API_KEY",
			Message: "UNTRACE_API_KEY environment variable is required",
			Err:     ErrMissingAPIKey,
		}
	}
	return NewConfig(opts...)
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	out := *c
	out.Providers = append([]string(nil), c.Providers...)
	if c.Headers != nil {
		out.Headers = make(map[string]string, len(c.Headers))
		for k, v := range c.Headers {
			out.Headers[k] = v
		}
	}
	if c.ResourceAttributes != nil {
		out.ResourceAttributes = make(map[string]interface{}, len(c.ResourceAttributes))
		for k, v := range c.ResourceAttributes {
			out.ResourceAttributes[k] = v
		}
	}
	return &out
}

// Redacted returns a copy that is safe to print: the API key and any
// authorization header are masked.
func (c *Config) Redacted() *Config {
	out := c.Clone()
	out.APIKey = MaskSecret(c.APIKey)
	for k, v := range out.Headers {
		if strings.EqualFold(k, "authorization") {
			out.Headers[k] = MaskSecret(v)
		}
	}
	return out
}

// AllProvidersSelected reports whether Providers contains "all".
func (c *Config) AllProvidersSelected() bool {
	for _, p := range c.Providers {
		if strings.EqualFold(p, AllProviders) {
			return true
		}
	}
	return false
}

// MaskSecret keeps the first four characters of long secrets and masks the rest.
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****"
}

// Helper functions

// parseBoolOr parses common boolean spellings and returns def for anything else.
func parseBoolOr(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return def
	}
}

// fileDuration reads either a number of seconds (2.5) or a Go duration
// string ("2.5s"), so the YAML printed for a Config loads back unchanged.
type fileDuration time.Duration

func (d *fileDuration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("export_interval: expected a number or duration, got %s", value.Tag)
	}
	return d.set(value.Value)
}

func (d *fileDuration) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		*d = fileDuration(v * float64(time.Second))
		return nil
	case string:
		return d.set(v)
	default:
		return fmt.Errorf("export_interval: expected a number or duration, got %s", string(data))
	}
}

func (d *fileDuration) set(s string) error {
	parsed, ok := parseSeconds(s)
	if !ok {
		return fmt.Errorf("export_interval: invalid duration %q", s)
	}
	*d = fileDuration(parsed)
	return nil
}

// parseSeconds accepts a number of seconds ("5", "0.5") or a Go duration ("750ms").
func parseSeconds(s string) (time.Duration, bool) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), true
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, true
	}
	return 0, false
}

func parseStringList(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// parseKeyValueList parses "k1=v1,k2=v2". Entries without '=' are skipped.
func parseKeyValueList(s string) map[string]string {
	result := make(map[string]string)
	for _, part := range parseStringList(s) {
		k, v, ok := strings.Cut(part, "=")
		if !ok || strings.TrimSpace(k) == "" {
			continue
		}
		result[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return result
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Functional Options

// WithAPIKey sets the API key sent as a bearer token with every export.
func WithAPIKey(key string) Option {
	return func(c *Config) error {
		c.APIKey = key
		return nil
	}
}

// WithBaseURL sets the collector base URL. Traces go to <base>/v1/traces.
func WithBaseURL(baseURL string) Option {
	return func(c *Config) error {
		c.BaseURL = strings.TrimRight(baseURL, "/")
		return nil
	}
}

// WithServiceName sets the service.name resource attribute.
func WithServiceName(name string) Option {
	return func(c *Config) error {
		c.ServiceName = name
		return nil
	}
}

// WithServiceVersion sets the service.version resource attribute.
func WithServiceVersion(version string) Option {
	return func(c *Config) error {
		c.ServiceVersion = version
		return nil
	}
}

// WithEnvironment sets the deployment environment.
func WithEnvironment(env string) Option {
	return func(c *Config) error {
		c.Environment = env
		return nil
	}
}

// WithDebug enables debug logging.
func WithDebug(debug bool) Option {
	return func(c *Config) error {
		c.Debug = debug
		return nil
	}
}

// WithSamplingRate sets the trace sampling rate.
// Returns an error if the rate is outside [0.0, 1.0].
func WithSamplingRate(rate float64) Option {
	return func(c *Config) error {
		if !(rate >= 0.0 && rate <= 1.0) {
			return &Error{
				Op:      "WithSamplingRate",
				Kind:    KindValidation,
				ID:      "sampling_rate",
				Message: fmt.Sprintf("sampling rate must be between 0.0 and 1.0, got %v", rate),
				Err:     ErrInvalidSamplingRate,
			}
		}
		c.SamplingRate = rate
		return nil
	}
}

// WithMaxBatchSize sets the maximum number of spans per export batch.
func WithMaxBatchSize(size int) Option {
	return func(c *Config) error {
		if size <= 0 {
			return &Error{
				Op:      "WithMaxBatchSize",
				Kind:    KindValidation,
				ID:      "max_batch_size",
				Message: fmt.Sprintf("max batch size must be greater than 0, got %d", size),
				Err:     ErrInvalidBatchSize,
			}
		}
		c.MaxBatchSize = size
		return nil
	}
}

// WithExportInterval sets how often batched spans and metrics are exported.
func WithExportInterval(d time.Duration) Option {
	return func(c *Config) error {
		if d <= 0 {
			return &Error{
				Op:      "WithExportInterval",
				Kind:    KindValidation,
				ID:      "export_interval",
				Message: fmt.Sprintf("export interval must be greater than 0, got %s", d),
				Err:     ErrInvalidExportInterval,
			}
		}
		c.ExportInterval = d
		return nil
	}
}

// WithCapture toggles request/response body and error capture.
func WithCapture(body, errors bool) Option {
	return func(c *Config) error {
		c.CaptureBody = body
		c.CaptureErrors = errors
		return nil
	}
}

// WithAutoInstrumentation enables or disables automatic instrumentation.
func WithAutoInstrumentation(enabled bool) Option {
	return func(c *Config) error {
		c.DisableAutoInstrumentation = !enabled
		return nil
	}
}

// WithProviders restricts instrumentation to the named providers.
// Pass "all" to keep every provider enabled.
func WithProviders(providers ...string) Option {
	return func(c *Config) error {
		if len(providers) == 0 {
			return &Error{
				Op:      "WithProviders",
				Kind:    KindValidation,
				ID:      "providers",
				Message: "at least one provider is required",
				Err:     ErrInvalidConfiguration,
			}
		}
		c.Providers = append([]string(nil), providers...)
		return nil
	}
}

// WithHeaders adds headers sent with every export request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Config) error {
		if c.Headers == nil {
			c.Headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			c.Headers[k] = v
		}
		return nil
	}
}

// WithResourceAttributes adds attributes to the exported resource.
func WithResourceAttributes(attrs map[string]interface{}) Option {
	return func(c *Config) error {
		if c.ResourceAttributes == nil {
			c.ResourceAttributes = make(map[string]interface{}, len(attrs))
		}
		for k, v := range attrs {
			c.ResourceAttributes[k] = v
		}
		return nil
	}
}

// WithExporterProtocol selects the OTLP transport, "http" or "grpc".
func WithExporterProtocol(protocol string) Option {
	return func(c *Config) error {
		protocol = strings.ToLower(protocol)
		if protocol != ProtocolHTTP && protocol != ProtocolGRPC {
			return &Error{
				Op:      "WithExporterProtocol",
				Kind:    KindValidation,
				ID:      "exporter_protocol",
				Message: fmt.Sprintf("unsupported exporter protocol %q", protocol),
				Err:     ErrInvalidConfiguration,
			}
		}
		c.ExporterProtocol = protocol
		return nil
	}
}

// WithInsecure disables TLS on the exporter transport.
func WithInsecure(insecure bool) Option {
	return func(c *Config) error {
		c.Insecure = insecure
		return nil
	}
}

// WithConsoleExport also writes finished spans to stdout.
func WithConsoleExport(enabled bool) Option {
	return func(c *Config) error {
		c.ConsoleExport = enabled
		return nil
	}
}

// WithMetrics enables or disables the metrics pipeline.
func WithMetrics(enabled bool) Option {
	return func(c *Config) error {
		c.MetricsEnabled = enabled
		return nil
	}
}

// WithConfigFile overlays a JSON or YAML file. Options after it still win.
func WithConfigFile(path string) Option {
	return func(c *Config) error {
		return c.LoadFromFile(path)
	}
}
