// Package providers tracks which LLM provider integrations are enabled.
package providers

import (
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/untrace-dev/untrace-go/core"
)

// DefaultVersion is the version recorded for the built-in providers.
const DefaultVersion = "1.0.0"

// Provider describes one instrumentable integration.
type Provider struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

// Registry maps provider names to their records.
// It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	logger    core.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger core.Logger) *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		logger:    core.OrNoOp(logger),
	}
}

// DefaultProviders returns the built-in provider set, all enabled.
func DefaultProviders() []Provider {
	names := []string{"anthropic", "aws", "cohere", "google", "microsoft", "openai"}
	out := make([]Provider, 0, len(names))
	for _, name := range names {
		out = append(out, Provider{Name: name, Version: DefaultVersion, Enabled: true})
	}
	return out
}

// RegisterDefaults registers every built-in provider.
func (r *Registry) RegisterDefaults() {
	for _, p := range DefaultProviders() {
		r.Register(p)
	}
}

// Register inserts or replaces the provider with p.Name.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name] = p
}

// RegisterNamed registers an enabled provider.
func (r *Registry) RegisterNamed(name, version string) {
	r.Register(Provider{Name: name, Version: version, Enabled: true})
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// All returns every provider sorted by name.
func (r *Registry) All() []Provider {
	return r.snapshot(func(Provider) bool { return true })
}

// Enabled returns the enabled providers sorted by name.
func (r *Registry) Enabled() []Provider {
	return r.snapshot(func(p Provider) bool { return p.Enabled })
}

// Names returns every registered name in ascending order.
func (r *Registry) Names() []string {
	all := r.All()
	names := make([]string, len(all))
	for i, p := range all {
		names[i] = p.Name
	}
	return names
}

func (r *Registry) snapshot(keep func(Provider) bool) []Provider {
	r.mu.RLock()
	out := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		if keep(p) {
			out = append(out, p)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Enable turns a registered provider on. Enabling twice is harmless.
func (r *Registry) Enable(name string) error {
	return r.setEnabled("Registry.Enable", name, true)
}

// Disable turns a registered provider off. Disabling twice is harmless.
func (r *Registry) Disable(name string) error {
	return r.setEnabled("Registry.Disable", name, false)
}

func (r *Registry) setEnabled(op, name string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.providers[name]
	if !ok {
		return &core.Error{
			Op:   op,
			Kind: core.KindInstrumentation,
			ID:   name,
			Err:  core.ErrProviderNotFound,
		}
	}
	p.Enabled = enabled
	r.providers[name] = p
	return nil
}

// IsEnabled reports whether name is registered and enabled.
func (r *Registry) IsEnabled(name string) bool {
	p, ok := r.Get(name)
	return ok && p.Enabled
}

// ApplySelection enables exactly the selected providers. A selection that
// contains "all" (any case) leaves every provider enabled. Unknown names are
// logged and skipped.
func (r *Registry) ApplySelection(selected []string) {
	for _, s := range selected {
		if strings.EqualFold(s, core.AllProviders) {
			for _, name := range r.Names() {
				_ = r.Enable(name)
			}
			return
		}
	}

	want := make(map[string]bool, len(selected))
	for _, s := range selected {
		want[strings.ToLower(s)] = true
	}

	r.mu.Lock()
	for name, p := range r.providers {
		p.Enabled = want[strings.ToLower(name)]
		r.providers[name] = p
		delete(want, strings.ToLower(name))
	}
	r.mu.Unlock()

	for _, name := range core.SortedKeys(want) {
		r.logger.Warn("Unknown provider in selection", map[string]interface{}{
			"operation": "provider_selection",
			"provider":  name,
			"impact":    "provider ignored",
		})
	}
}

// credentialEnv lists the environment variables that indicate a provider
// has credentials configured in this process.
var credentialEnv = map[string][]string{
	"openai":    {"OPENAI_API_KEY"},
	"anthropic": {"ANTHROPIC_API_KEY"},
	"google":    {"GEMINI_API_KEY", "GOOGLE_API_KEY", "GOOGLE_APPLICATION_CREDENTIALS"},
	"microsoft": {"AZURE_OPENAI_API_KEY", "AZURE_OPENAI_ENDPOINT"},
	"aws":       {"AWS_ACCESS_KEY_ID", "AWS_PROFILE", "AWS_LAMBDA_FUNCTION_NAME", "AWS_CONTAINER_CREDENTIALS_RELATIVE_URI"},
	"cohere":    {"COHERE_API_KEY", "CO_API_KEY"},
}

// DetectCredentials returns, sorted, the built-in providers whose
// credentials are present in the environment.
func DetectCredentials() []string {
	var found []string
	for _, name := range core.SortedKeys(credentialEnv) {
		for _, env := range credentialEnv[name] {
			if os.Getenv(env) != "" {
				found = append(found, name)
				break
			}
		}
	}
	return found
}
