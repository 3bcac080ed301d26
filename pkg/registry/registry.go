// Package registry provides test registration, enumeration in
// registration order, and wildcard selection.
package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"digital.vasic.verify/pkg/testcase"
	"digital.vasic.verify/pkg/verr"
)

// UnnamedPrefix prefixes the generated names of tests
// registered without one.
const UnnamedPrefix = "unnamed/"

// Registry defines the interface for managing registered
// tests.
type Registry interface {
	// Register adds a test unless its identity is already
	// present.
	Register(info testcase.Info)

	// AllTests returns every test in registration order.
	AllTests() []testcase.Info

	// Matching returns the tests whose names match spec, in
	// registration order.
	Matching(spec string) []testcase.Info

	// Select returns the tests matching any of specs, in
	// registration order. No specs selects everything.
	Select(specs ...string) []testcase.Info

	// Count returns the number of registered tests.
	Count() int

	// Clear removes every test and resets the unnamed
	// counter.
	Clear()
}

// DefaultRegistry is the standard Registry implementation.
// It is safe for concurrent use.
type DefaultRegistry struct {
	mu         sync.RWMutex
	tests      []testcase.Info
	identities map[testcase.Identity]struct{}
	unnamed    int
}

// NewRegistry creates a new, empty DefaultRegistry.
func NewRegistry() *DefaultRegistry {
	return &DefaultRegistry{
		identities: make(map[testcase.Identity]struct{}),
	}
}

// Default returns the process-wide registry that package-level
// registrations go to.
var Default = sync.OnceValue(NewRegistry)

// Register adds info unless a test with the same identity is
// already registered, in which case the first registration
// wins. An empty name is replaced with "unnamed/<N>" before
// the check; the counter advances on every such replacement.
// Infos without a test case are ignored.
func (r *DefaultRegistry) Register(info testcase.Info) {
	if info.Case == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if info.Name == "" {
		r.unnamed++
		info.Name = fmt.Sprintf("%s%d", UnnamedPrefix, r.unnamed)
	}

	id := info.Case.Identity()
	if _, exists := r.identities[id]; exists {
		return
	}

	r.identities[id] = struct{}{}
	r.tests = append(r.tests, info)
}

// AllTests returns a copy of the registered tests in
// registration order.
func (r *DefaultRegistry) AllTests() []testcase.Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]testcase.Info, len(r.tests))
	copy(out, r.tests)
	return out
}

// Matching returns the tests whose names match spec. An empty
// spec matches everything; a spec without wildcards matches
// one name exactly.
func (r *DefaultRegistry) Matching(spec string) []testcase.Info {
	return r.Select(spec)
}

// Select returns the tests matching any of specs, each test at
// most once, in registration order.
func (r *DefaultRegistry) Select(specs ...string) []testcase.Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(specs) == 0 {
		out := make([]testcase.Info, len(r.tests))
		copy(out, r.tests)
		return out
	}

	parsed := make([]Spec, len(specs))
	for i, s := range specs {
		parsed[i] = Spec(s)
	}

	out := make([]testcase.Info, 0)
	for _, info := range r.tests {
		for _, s := range parsed {
			if s.Matches(info.Name) {
				out = append(out, info)
				break
			}
		}
	}
	return out
}

// Validate reports names shared by tests with different
// identities. Such tests still run; the error lets callers
// warn about ambiguous selections.
func (r *DefaultRegistry) Validate() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]int, len(r.tests))
	for _, info := range r.tests {
		seen[info.Name]++
	}

	var dups []string
	for name, n := range seen {
		if n > 1 {
			dups = append(dups, name)
		}
	}
	if len(dups) == 0 {
		return nil
	}

	sort.Strings(dups)
	return verr.Newf(
		verr.RegistryCollision,
		"test names registered more than once: %s",
		strings.Join(dups, ", "),
	)
}

// Clear removes all tests and resets the unnamed counter.
func (r *DefaultRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tests = nil
	r.identities = make(map[testcase.Identity]struct{})
	r.unnamed = 0
}

// Count returns the number of registered tests.
func (r *DefaultRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tests)
}
