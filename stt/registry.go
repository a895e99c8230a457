package stt

import (
	"errors"
	"sort"
)

// Factory constructs a Service from a flat provider configuration map.
// The configuration shape is provider-specific; each factory performs its own
// validation and fails fast on missing or invalid keys.
type Factory func(cfg map[string]any) (Service, error)

// factories is the process-wide table of STT constructors. It is populated by
// adapter init functions at startup and only written by tests afterwards, so
// no locking is required.
var factories = make(map[string]Factory)

// Register adds a named constructor to the STT registry. Registering an
// existing name overwrites it (last writer wins), which tests use to install
// doubles.
func Register(name string, factory Factory) {
	factories[name] = factory
}

// Providers returns the registered STT provider names, sorted.
func Providers() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New instantiates the named STT provider from its configuration. Unknown
// names fail with *UnknownProviderError; construction failures are wrapped in
// *InitError so misconfiguration is loud and immediate, never deferred to
// first use.
func New(name string, cfg map[string]any) (Service, error) {
	factory, ok := factories[name]
	if !ok {
		return nil, &UnknownProviderError{Name: name, Known: Providers()}
	}

	svc, err := factory(cfg)
	if err != nil {
		var initErr *InitError
		if errors.As(err, &initErr) {
			return nil, err
		}
		return nil, &InitError{Provider: name, Cause: err}
	}
	return svc, nil
}
