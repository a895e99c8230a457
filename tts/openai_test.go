package tts

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestNewOpenAI_MissingAPIKey(t *testing.T) {
	_, err := NewOpenAI(map[string]any{})
	var initErr *InitError
	if !errors.As(err, &initErr) {
		t.Fatalf("error = %T, want *InitError", err)
	}
	if initErr.Provider != "openai" {
		t.Errorf("Provider = %v, want openai", initErr.Provider)
	}
}

func TestOpenAI_Synthesize_EmptyText(t *testing.T) {
	svc, err := NewOpenAI(map[string]any{"api_key": "test-key"})
	if err != nil {
		t.Fatalf("NewOpenAI() error = %v", err)
	}

	outputPath := filepath.Join(t.TempDir(), "out.mp3")
	if err := svc.Synthesize(t.Context(), "", outputPath); !errors.Is(err, ErrEmptyText) {
		t.Errorf("error = %v, want ErrEmptyText", err)
	}
	if _, statErr := os.Stat(outputPath); !os.IsNotExist(statErr) {
		t.Error("empty text must not write an output file")
	}
}

func TestOpenAI_Synthesize(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/speech" {
			t.Errorf("Path = %v, want /audio/speech", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		_, _ = w.Write([]byte("mock speech audio"))
	}))
	defer server.Close()

	svc, err := NewOpenAI(map[string]any{
		"api_key":  "test-key",
		"base_url": server.URL,
	})
	if err != nil {
		t.Fatalf("NewOpenAI() error = %v", err)
	}

	outputPath := filepath.Join(t.TempDir(), "out.mp3")
	if err := svc.Synthesize(t.Context(), "Hello world", outputPath); err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}

	if gotBody["input"] != "Hello world" {
		t.Errorf("input = %v, want Hello world", gotBody["input"])
	}
	if gotBody["voice"] != defaultOpenAIVoice {
		t.Errorf("voice = %v, want %v", gotBody["voice"], defaultOpenAIVoice)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if string(data) != "mock speech audio" {
		t.Errorf("output = %q, want mock speech audio", data)
	}
}

func TestOpenAI_Synthesize_VoiceOverride(t *testing.T) {
	var voices []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		voices = append(voices, body["voice"].(string))
		_, _ = w.Write([]byte("audio"))
	}))
	defer server.Close()

	svc, err := NewOpenAI(map[string]any{
		"api_key":  "test-key",
		"base_url": server.URL,
	})
	if err != nil {
		t.Fatalf("NewOpenAI() error = %v", err)
	}

	dir := t.TempDir()
	if err := svc.Synthesize(t.Context(), "a", filepath.Join(dir, "a.mp3"), WithVoice("nova")); err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if err := svc.Synthesize(t.Context(), "b", filepath.Join(dir, "b.mp3")); err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}

	if voices[0] != "nova" {
		t.Errorf("first call voice = %q, want nova", voices[0])
	}
	if voices[1] != defaultOpenAIVoice {
		t.Errorf("second call voice = %q, want %q (override must not stick)", voices[1], defaultOpenAIVoice)
	}
}

func TestOpenAI_Synthesize_Unreachable(t *testing.T) {
	svc, err := NewOpenAI(map[string]any{
		"api_key":  "test-key",
		"base_url": "http://127.0.0.1:1",
	})
	if err != nil {
		t.Fatalf("NewOpenAI() error = %v", err)
	}

	err = svc.Synthesize(t.Context(), "hello", filepath.Join(t.TempDir(), "out.mp3"))
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Errorf("error = %v, want ErrServiceUnavailable in chain", err)
	}
}

func TestOpenAI_Voices_StaticTable(t *testing.T) {
	svc, err := NewOpenAI(map[string]any{"api_key": "test-key"})
	if err != nil {
		t.Fatalf("NewOpenAI() error = %v", err)
	}

	voices, err := svc.Voices(t.Context())
	if err != nil {
		t.Fatalf("Voices() error = %v", err)
	}
	if len(voices) != len(openAIVoices) {
		t.Fatalf("got %d voices, want %d", len(voices), len(openAIVoices))
	}

	// The returned slice must be a copy.
	voices[0] = "mutated"
	fresh, _ := svc.Voices(t.Context())
	if fresh[0] == "mutated" {
		t.Error("Voices() must return a copy of the static table")
	}
}

func TestOpenAI_SynthesizeStream(t *testing.T) {
	payload := make([]byte, 9000)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	svc, err := NewOpenAI(map[string]any{
		"api_key":  "test-key",
		"base_url": server.URL,
	})
	if err != nil {
		t.Fatalf("NewOpenAI() error = %v", err)
	}

	chunks, err := svc.SynthesizeStream(t.Context(), "hello")
	if err != nil {
		t.Fatalf("SynthesizeStream() error = %v", err)
	}

	total := 0
	for chunk := range chunks {
		if chunk.Err != nil {
			t.Fatalf("chunk error: %v", chunk.Err)
		}
		total += len(chunk.Data)
	}
	if total != len(payload) {
		t.Errorf("received %d bytes, want %d", total, len(payload))
	}
}
