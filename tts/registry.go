package tts

import (
	"errors"
	"sort"
)

// Factory constructs a Service from a flat provider configuration map.
// Configuration shapes differ per backend; validation lives in each factory.
type Factory func(cfg map[string]any) (Service, error)

// factories is the process-wide table of TTS constructors, independent from
// the STT namespace. Populated by adapter init functions at startup; written
// afterwards only by tests.
var factories = make(map[string]Factory)

// Register adds a named constructor to the TTS registry. Registering an
// existing name overwrites it (last writer wins).
func Register(name string, factory Factory) {
	factories[name] = factory
}

// Providers returns the registered TTS provider names, sorted.
func Providers() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New instantiates the named TTS provider from its configuration. Unknown
// names fail with *UnknownProviderError; construction failures are wrapped in
// *InitError and never deferred to first use.
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
