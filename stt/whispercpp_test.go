package stt

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeStubWhisper creates an executable stand-in for the whisper.cpp CLI
// that writes a fixed JSON transcript to the -of output base.
func writeStubWhisper(t *testing.T, dir, output string) string {
	t.Helper()
	script := `#!/bin/sh
out=""
prev=""
for arg in "$@"; do
  if [ "$prev" = "-of" ]; then out="$arg"; fi
  prev="$arg"
done
cat > "$out.json" <<'EOF'
` + output + `
EOF
`
	path := filepath.Join(dir, "whisper-cli")
	if err := os.WriteFile(path, []byte(script), 0700); err != nil {
		t.Fatalf("writing stub binary: %v", err)
	}
	return path
}

func writeStubModel(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "ggml-tiny.bin")
	if err := os.WriteFile(path, []byte("model"), 0600); err != nil {
		t.Fatalf("writing stub model: %v", err)
	}
	return path
}

func TestNewWhisper_MissingBinary(t *testing.T) {
	_, err := NewWhisper(map[string]any{
		"binary": "definitely-not-a-real-binary",
	})
	var initErr *InitError
	if !errors.As(err, &initErr) {
		t.Fatalf("error = %T, want *InitError", err)
	}
	if !strings.Contains(err.Error(), "definitely-not-a-real-binary") {
		t.Errorf("error should name the missing binary: %v", err)
	}
}

func TestNewWhisper_MissingModel(t *testing.T) {
	dir := t.TempDir()
	binary := writeStubWhisper(t, dir, "{}")

	_, err := NewWhisper(map[string]any{
		"binary":    binary,
		"model":     "tiny",
		"model_dir": filepath.Join(dir, "no-such-dir"),
	})
	var initErr *InitError
	if !errors.As(err, &initErr) {
		t.Fatalf("error = %T, want *InitError", err)
	}
	if !strings.Contains(err.Error(), "tiny") {
		t.Errorf("error should name the missing model: %v", err)
	}
}

func TestWhisper_Transcribe(t *testing.T) {
	dir := t.TempDir()
	binary := writeStubWhisper(t, dir, `{
  "result": {"language": "en"},
  "transcription": [
    {"text": " Hello", "offsets": {"from": 0, "to": 1000}},
    {"text": " world.", "offsets": {"from": 1000, "to": 2500}}
  ]
}`)
	writeStubModel(t, dir)

	svc, err := NewWhisper(map[string]any{
		"binary":    binary,
		"model":     "tiny",
		"model_dir": dir,
	})
	if err != nil {
		t.Fatalf("NewWhisper() error = %v", err)
	}

	audioPath := filepath.Join(dir, "audio.wav")
	if err := WriteSilentWAV(audioPath, 0); err != nil {
		t.Fatalf("writing audio: %v", err)
	}

	result, err := svc.Transcribe(t.Context(), audioPath)
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if result.Text != "Hello world." {
		t.Errorf("Text = %q, want %q", result.Text, "Hello world.")
	}
	if result.Language != "en" {
		t.Errorf("Language = %q, want en", result.Language)
	}
	if result.Duration != 2.5 {
		t.Errorf("Duration = %v, want 2.5", result.Duration)
	}
}

func TestWhisper_Transcribe_MissingFile(t *testing.T) {
	dir := t.TempDir()
	binary := writeStubWhisper(t, dir, "{}")
	writeStubModel(t, dir)

	svc, err := NewWhisper(map[string]any{
		"binary":    binary,
		"model_dir": dir,
	})
	if err != nil {
		t.Fatalf("NewWhisper() error = %v", err)
	}

	_, err = svc.Transcribe(t.Context(), filepath.Join(dir, "missing.wav"))
	if err == nil {
		t.Fatal("Transcribe() on missing file should fail")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should wrap os.ErrNotExist: %v", err)
	}
}

func TestWhisper_TranscribeStream_NotSupported(t *testing.T) {
	svc := &WhisperService{}
	_, err := svc.TranscribeStream(t.Context(), nil)
	if !errors.Is(err, ErrStreamingNotSupported) {
		t.Errorf("error = %v, want ErrStreamingNotSupported", err)
	}
}

func TestParseWhisperOutput_Invalid(t *testing.T) {
	_, err := parseWhisperOutput([]byte("not json"))
	var transcriptionErr *TranscriptionError
	if !errors.As(err, &transcriptionErr) {
		t.Fatalf("error = %T, want *TranscriptionError", err)
	}
}
