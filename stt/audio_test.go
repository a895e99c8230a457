package stt

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWrapPCMAsWAV(t *testing.T) {
	pcm := make([]byte, 320)
	wav := WrapPCMAsWAV(pcm, DefaultSampleRate, DefaultChannels, DefaultBitDepth)

	if len(wav) != wavHeaderSize+len(pcm) {
		t.Fatalf("len = %d, want %d", len(wav), wavHeaderSize+len(pcm))
	}

	if string(wav[0:4]) != "RIFF" {
		t.Errorf("missing RIFF marker: %q", wav[0:4])
	}
	if string(wav[8:12]) != "WAVE" {
		t.Errorf("missing WAVE marker: %q", wav[8:12])
	}
	if string(wav[36:40]) != "data" {
		t.Errorf("missing data marker: %q", wav[36:40])
	}

	if got := binary.LittleEndian.Uint32(wav[24:28]); got != DefaultSampleRate {
		t.Errorf("sample rate = %d, want %d", got, DefaultSampleRate)
	}
	if got := binary.LittleEndian.Uint16(wav[22:24]); got != DefaultChannels {
		t.Errorf("channels = %d, want %d", got, DefaultChannels)
	}
	if got := binary.LittleEndian.Uint16(wav[34:36]); got != DefaultBitDepth {
		t.Errorf("bits per sample = %d, want %d", got, DefaultBitDepth)
	}
	if got := binary.LittleEndian.Uint32(wav[40:44]); got != uint32(len(pcm)) {
		t.Errorf("data size = %d, want %d", got, len(pcm))
	}
}

func TestSilentWAV_Duration(t *testing.T) {
	wav := SilentWAV(time.Second)

	// 1 second of 16kHz mono 16-bit audio is 32000 PCM bytes.
	wantPCM := DefaultSampleRate * DefaultBitDepth / 8
	if len(wav) != wavHeaderSize+wantPCM {
		t.Errorf("len = %d, want %d", len(wav), wavHeaderSize+wantPCM)
	}

	// Every sample must be zero.
	for i, b := range wav[wavHeaderSize:] {
		if b != 0 {
			t.Fatalf("non-zero sample at offset %d", i)
		}
	}
}

func TestWriteSilentWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "probe.wav")
	if err := WriteSilentWAV(path, 500*time.Millisecond); err != nil {
		t.Fatalf("WriteSilentWAV() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading probe file: %v", err)
	}
	if string(data[0:4]) != "RIFF" {
		t.Error("probe file is not a WAV")
	}
}
