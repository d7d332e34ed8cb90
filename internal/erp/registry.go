// Package erp maps ERP keys (and their aliases) to bundles of knowledge,
// flow, validation, diagnostic, and recommendation services, so one tool
// surface can serve multiple pluggable knowledge domains.
package erp

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"erpmcp/internal/core"
	"erpmcp/internal/storage"
)

// Info identifies one registered ERP integration.
type Info struct {
	Key         string
	Aliases     []string
	Version     string
	Description string
}

// ServiceBundle holds the services an ERP provides. Knowledge is
// mandatory; every other field is optional and nil when the ERP does not
// support that capability. Call sites handle the nil branch explicitly,
// reporting "unsupported" instead of failing.
type ServiceBundle struct {
	Knowledge   storage.KnowledgeStore
	Flows       storage.FlowStore
	Query       core.QueryService
	Validator   core.Validator
	Diagnoser   core.Diagnoser
	Recommender core.Recommender
}

// registration is one immutable ERP entry.
type registration struct {
	info   Info
	bundle ServiceBundle
}

// Registry maps ERP keys and aliases to registrations. Registrations are
// write-once at startup; Resolve is safe for concurrent use afterwards.
type Registry struct {
	mu      sync.RWMutex
	byKey   map[string]*registration
	byAlias map[string]string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byKey:   make(map[string]*registration),
		byAlias: make(map[string]string),
	}
}

// Register adds an ERP. Duplicate keys or aliases are a configuration
// defect and return an error, as does a bundle without a knowledge store.
func (r *Registry) Register(info Info, bundle ServiceBundle) error {
	key := strings.ToLower(strings.TrimSpace(info.Key))
	if key == "" {
		return fmt.Errorf("registering ERP: key must not be empty")
	}
	if bundle.Knowledge == nil {
		return fmt.Errorf("registering ERP %q: knowledge store is required", key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byKey[key]; exists {
		return fmt.Errorf("registering ERP %q: key already registered", key)
	}
	if owner, exists := r.byAlias[key]; exists {
		return fmt.Errorf("registering ERP %q: key collides with alias of %q", key, owner)
	}

	aliases := make([]string, 0, len(info.Aliases))
	for _, alias := range info.Aliases {
		alias = strings.ToLower(strings.TrimSpace(alias))
		if alias == "" || alias == key {
			continue
		}
		if _, exists := r.byKey[alias]; exists {
			return fmt.Errorf("registering ERP %q: alias %q collides with a registered key", key, alias)
		}
		if owner, exists := r.byAlias[alias]; exists {
			return fmt.Errorf("registering ERP %q: alias %q already taken by %q", key, alias, owner)
		}
		aliases = append(aliases, alias)
	}

	info.Key = key
	info.Aliases = aliases
	r.byKey[key] = &registration{info: info, bundle: bundle}
	for _, alias := range aliases {
		r.byAlias[alias] = key
	}
	return nil
}

// Resolve returns a fresh Facade for the given key or alias. An unknown
// key is the hard-failure class: the error names the registered keys so
// the caller can correct its configuration.
func (r *Registry) Resolve(keyOrAlias string) (*Facade, error) {
	lookup := strings.ToLower(strings.TrimSpace(keyOrAlias))

	r.mu.RLock()
	defer r.mu.RUnlock()

	if key, ok := r.byAlias[lookup]; ok {
		lookup = key
	}
	reg, ok := r.byKey[lookup]
	if !ok {
		return nil, fmt.Errorf("ERP %q is not registered (registered: %s)", keyOrAlias, strings.Join(r.keysLocked(), ", "))
	}

	return &Facade{info: reg.info, bundle: reg.bundle}, nil
}

// Infos returns the Info of every registered ERP, sorted by key.
func (r *Registry) Infos() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.byKey))
	for _, key := range r.keysLocked() {
		infos = append(infos, r.byKey[key].info)
	}
	return infos
}

// Keys returns the registered ERP keys, sorted.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.keysLocked()
}

func (r *Registry) keysLocked() []string {
	keys := make([]string, 0, len(r.byKey))
	for key := range r.byKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
