package stt

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
)

// newFasterWhisperServer serves the two endpoints the adapter touches: the
// model list used by the construction probe and the transcription upload.
func newFasterWhisperServer(t *testing.T, transcription http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/models", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"base","object":"model"}]}`))
	})
	mux.HandleFunc("/audio/transcriptions", transcription)
	return httptest.NewServer(mux)
}

func TestNewFasterWhisper_ServerUnreachable(t *testing.T) {
	_, err := NewFasterWhisper(map[string]any{
		"base_url": "http://127.0.0.1:1",
	})
	var initErr *InitError
	if !errors.As(err, &initErr) {
		t.Fatalf("error = %T, want *InitError", err)
	}
	if initErr.Provider != "faster-whisper" {
		t.Errorf("Provider = %v, want faster-whisper", initErr.Provider)
	}
}

func TestFasterWhisper_Transcribe(t *testing.T) {
	server := newFasterWhisperServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Method = %v, want POST", r.Method)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parsing multipart form: %v", err)
		}
		if got := r.FormValue("model"); got != "base" {
			t.Errorf("model = %v, want base", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"task":"transcribe","language":"de","duration":2.5,"text":"hallo welt"}`))
	})
	defer server.Close()

	svc, err := NewFasterWhisper(map[string]any{
		"base_url": server.URL,
	})
	if err != nil {
		t.Fatalf("NewFasterWhisper() error = %v", err)
	}

	audioPath := filepath.Join(t.TempDir(), "audio.wav")
	if err := WriteSilentWAV(audioPath, 0); err != nil {
		t.Fatalf("writing audio: %v", err)
	}

	result, err := svc.Transcribe(t.Context(), audioPath)
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if result.Text != "hallo welt" {
		t.Errorf("Text = %q, want %q", result.Text, "hallo welt")
	}
	if result.Language != "de" {
		t.Errorf("Language = %q, want de", result.Language)
	}
	if result.Duration != 2.5 {
		t.Errorf("Duration = %v, want 2.5", result.Duration)
	}
}

func TestFasterWhisper_Transcribe_ServerError(t *testing.T) {
	server := newFasterWhisperServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"model crashed","type":"server_error"}}`))
	})
	defer server.Close()

	svc, err := NewFasterWhisper(map[string]any{
		"base_url": server.URL,
	})
	if err != nil {
		t.Fatalf("NewFasterWhisper() error = %v", err)
	}

	audioPath := filepath.Join(t.TempDir(), "audio.wav")
	if err := WriteSilentWAV(audioPath, 0); err != nil {
		t.Fatalf("writing audio: %v", err)
	}

	_, err = svc.Transcribe(t.Context(), audioPath)
	var transcriptionErr *TranscriptionError
	if !errors.As(err, &transcriptionErr) {
		t.Fatalf("error = %T, want *TranscriptionError", err)
	}
	if !transcriptionErr.Retryable {
		t.Error("5xx failures should be retryable")
	}
}

func TestFasterWhisper_Transcribe_MissingFile(t *testing.T) {
	server := newFasterWhisperServer(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("transcription endpoint should not be hit for a missing file")
	})
	defer server.Close()

	svc, err := NewFasterWhisper(map[string]any{
		"base_url": server.URL,
	})
	if err != nil {
		t.Fatalf("NewFasterWhisper() error = %v", err)
	}

	_, err = svc.Transcribe(t.Context(), "/nonexistent/audio.wav")
	if err == nil {
		t.Fatal("Transcribe() on missing file should fail")
	}
}
