package tts

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeSynth is a minimal Service for registry tests.
type fakeSynth struct {
	name string
}

func (f *fakeSynth) Name() string { return f.name }

func (f *fakeSynth) Synthesize(_ context.Context, text, _ string, _ ...Option) error {
	if text == "" {
		return ErrEmptyText
	}
	return nil
}

func (f *fakeSynth) SynthesizeStream(_ context.Context, _ string, _ ...Option) (<-chan Chunk, error) {
	return nil, ErrStreamingNotSupported
}

func (f *fakeSynth) Voices(_ context.Context) ([]string, error) {
	return []string{"default"}, nil
}

func TestRegistry_New(t *testing.T) {
	Register("test-fake", func(cfg map[string]any) (Service, error) {
		return &fakeSynth{name: "test-fake"}, nil
	})

	svc, err := New("test-fake", nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if svc.Name() != "test-fake" {
		t.Errorf("Name() = %v, want test-fake", svc.Name())
	}
}

func TestRegistry_UnknownProvider(t *testing.T) {
	_, err := New("does-not-exist", nil)
	var unknownErr *UnknownProviderError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("error = %T, want *UnknownProviderError", err)
	}
	if !strings.Contains(err.Error(), "does-not-exist") {
		t.Errorf("error message should name the unknown provider: %v", err)
	}
}

func TestRegistry_NamespaceIndependentFromSTT(t *testing.T) {
	// "whisper" is an STT provider; the TTS registry must not know it.
	_, err := New("whisper", nil)
	var unknownErr *UnknownProviderError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("error = %T, want *UnknownProviderError", err)
	}
}

func TestRegistry_FactoryFailureWrappedAsInitError(t *testing.T) {
	cause := errors.New("bad voice id")
	Register("test-broken", func(cfg map[string]any) (Service, error) {
		return nil, cause
	})

	_, err := New("test-broken", nil)
	var initErr *InitError
	if !errors.As(err, &initErr) {
		t.Fatalf("error = %T, want *InitError", err)
	}
	if !errors.Is(err, cause) {
		t.Error("InitError should wrap the factory failure")
	}
}

func TestRegistry_RegisterOverwrites(t *testing.T) {
	Register("test-overwrite", func(cfg map[string]any) (Service, error) {
		return &fakeSynth{name: "first"}, nil
	})
	Register("test-overwrite", func(cfg map[string]any) (Service, error) {
		return &fakeSynth{name: "second"}, nil
	})

	svc, err := New("test-overwrite", nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if svc.Name() != "second" {
		t.Errorf("Name() = %v, want second (last writer wins)", svc.Name())
	}
}

func TestRegistry_BuiltinProvidersRegistered(t *testing.T) {
	names := Providers()
	for _, want := range []string{"kokoro", "openai", "elevenlabs", "edge"} {
		found := false
		for _, name := range names {
			if name == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("provider %q not registered", want)
		}
	}
}

func TestQuickSynthesize_UnknownProvider(t *testing.T) {
	err := QuickSynthesize(context.Background(), "nope", "hi", "out.mp3", nil)
	var unknownErr *UnknownProviderError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("error = %T, want *UnknownProviderError", err)
	}
}
