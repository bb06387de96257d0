// Package retrydetect identifies retry markers across test frameworks.
//
// Each framework annotates retried tests differently (attribute names,
// tags, labels). The registry maps a framework identifier to its known
// retry marker names and is user-extensible for custom retry wrappers.
// Adapters use it to translate framework metadata into attempt counts
// before recording an execution.
package retrydetect

import (
	"strconv"
	"strings"
	"sync"
)

// builtinMarkers are the retry marker names shipped per framework.
// Framework keys are lowercase.
var builtinMarkers = map[string][]string{
	"gotest": {"retry", "flaky", "rerun"},
	"nunit":  {"Retry", "RetryAttribute"},
	"xunit":  {"RetryFact", "RetryTheory", "RetryAttribute"},
	"mstest": {"TestRetry", "RetryAttribute"},
}

// Registry maps framework identifiers to their retry marker names.
type Registry struct {
	mu      sync.RWMutex
	markers map[string]map[string]struct{}
}

// NewRegistry creates a registry seeded with the built-in marker names.
func NewRegistry() *Registry {
	r := &Registry{markers: make(map[string]map[string]struct{})}
	for framework, names := range builtinMarkers {
		for _, name := range names {
			r.add(framework, name)
		}
	}
	return r
}

// Register adds marker names for a framework. Unknown frameworks are
// created on first registration, so custom runners can participate.
func (r *Registry) Register(framework string, names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range names {
		r.add(strings.ToLower(framework), name)
	}
}

// add assumes the caller holds the lock (or exclusive access during init).
func (r *Registry) add(framework, name string) {
	set, ok := r.markers[framework]
	if !ok {
		set = make(map[string]struct{})
		r.markers[framework] = set
	}
	set[name] = struct{}{}
}

// IsRetryMarker reports whether name is a known retry marker for the
// framework.
func (r *Registry) IsRetryMarker(framework, name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.markers[strings.ToLower(framework)]
	if !ok {
		return false
	}
	_, ok = set[name]
	return ok
}

// Detect scans a test's annotations (marker name -> value) for a known
// retry marker and parses the configured attempt ceiling from its value.
// A marker with a non-numeric or empty value reports ok with zero
// attempts, meaning "retried, ceiling unknown".
func (r *Registry) Detect(framework string, annotations map[string]string) (maxAttempts int, ok bool) {
	r.mu.RLock()
	set, known := r.markers[strings.ToLower(framework)]
	r.mu.RUnlock()
	if !known {
		return 0, false
	}

	for name, value := range annotations {
		if _, found := set[name]; !found {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && n > 0 {
			return n, true
		}
		return 0, true
	}
	return 0, false
}

// defaultRegistry backs the package-level convenience functions.
var defaultRegistry = NewRegistry()

// Register adds marker names to the default registry.
func Register(framework string, names ...string) {
	defaultRegistry.Register(framework, names...)
}

// Detect scans annotations against the default registry.
func Detect(framework string, annotations map[string]string) (int, bool) {
	return defaultRegistry.Detect(framework, annotations)
}
