package audio

import (
	"errors"
	"testing"
)

const sampleProbe = `{
  "streams": [
    {"codec_type": "video", "codec_name": "mjpeg"},
    {"codec_type": "audio", "codec_name": "mp3", "sample_rate": "44100", "channels": 2}
  ],
  "format": {"format_name": "mp3", "duration": "3.250000"}
}`

func TestParseProbe(t *testing.T) {
	info, err := parseProbe("/music/low-e.mp3", []byte(sampleProbe))
	if err != nil {
		t.Fatalf("parseProbe failed: %v", err)
	}

	want := SourceInfo{
		Filename:    "low-e.mp3",
		Format:      "mp3",
		Codec:       "mp3",
		DurationSec: 3.25,
		SampleRate:  44100,
		Channels:    2,
	}
	if *info != want {
		t.Errorf("Expected %+v, got %+v", want, *info)
	}
}

func TestParseProbeNoAudio(t *testing.T) {
	_, err := parseProbe("clip.mp4", []byte(`{"streams":[{"codec_type":"video"}],"format":{}}`))
	if !errors.Is(err, errNoAudioStream) {
		t.Errorf("Expected errNoAudioStream, got %v", err)
	}
}

func TestParseProbeBadJSON(t *testing.T) {
	if _, err := parseProbe("x", []byte("not json")); err == nil {
		t.Error("Expected a JSON error")
	}
}

func TestIsWAV(t *testing.T) {
	tests := map[string]bool{
		"a.wav":      true,
		"B.WAV":      true,
		"dir/c.Wav":  true,
		"d.mp3":      false,
		"wav":        false,
		"e.wav.flac": false,
	}
	for path, want := range tests {
		if got := IsWAV(path); got != want {
			t.Errorf("IsWAV(%q) = %v, want %v", path, got, want)
		}
	}
}
