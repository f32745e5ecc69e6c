package plugin

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/wopr-network/wopr-plugin-voice-vibevoice/internal/store"
	"github.com/wopr-network/wopr-plugin-voice-vibevoice/internal/tts"
	"github.com/wopr-network/wopr-plugin-voice-vibevoice/internal/wav"
)

// fakeSynth counts calls and returns a fixed clip.
type fakeSynth struct {
	calls  int
	pcm    []byte
	rate   int
	err    error
	closed bool
}

func (f *fakeSynth) Synthesize(ctx context.Context, text string, opts tts.SynthesizeOpts) (*tts.SynthesizeResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &tts.SynthesizeResult{PCM: f.pcm, SampleRate: f.rate, Channels: 1, Voice: opts.Voice}, nil
}

func (f *fakeSynth) Voices(ctx context.Context) ([]tts.Voice, error) {
	return []tts.Voice{{ID: "alice"}}, nil
}

func (f *fakeSynth) Health(ctx context.Context) error { return f.err }

func (f *fakeSynth) Close() error {
	f.closed = true
	return nil
}

func TestSynthesize_WrapsWAVByDefault(t *testing.T) {
	t.Parallel()

	synth := &fakeSynth{pcm: []byte{1, 2, 3, 4}, rate: 24000}
	p := NewTTSProvider("vibevoice", synth, nil)

	res, err := p.Synthesize(context.Background(), &Request{Text: "hello", Voice: "alice"})
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}

	if res.RequestID == "" {
		t.Error("RequestID not assigned")
	}
	if res.ContentType != "audio/wav" {
		t.Errorf("ContentType = %q, want audio/wav", res.ContentType)
	}

	pcm, rate := wav.Demux(res.Audio)
	if rate != 24000 || !bytes.Equal(pcm, synth.pcm) {
		t.Errorf("unwrapped audio = (%v, %d), want (%v, 24000)", pcm, rate, synth.pcm)
	}
}

func TestSynthesize_RawPCMFormat(t *testing.T) {
	t.Parallel()

	synth := &fakeSynth{pcm: []byte{5, 6}, rate: 22050}
	p := NewTTSProvider("vibevoice", synth, nil)

	res, err := p.Synthesize(context.Background(), &Request{Text: "hi", Format: FormatPCM})
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if res.ContentType != "audio/pcm" {
		t.Errorf("ContentType = %q, want audio/pcm", res.ContentType)
	}
	if !bytes.Equal(res.Audio, synth.pcm) {
		t.Errorf("Audio = %v, want raw %v", res.Audio, synth.pcm)
	}
}

func TestSynthesize_UnknownFormat(t *testing.T) {
	t.Parallel()

	p := NewTTSProvider("vibevoice", &fakeSynth{pcm: []byte{0}, rate: 24000}, nil)
	if _, err := p.Synthesize(context.Background(), &Request{Text: "hi", Format: "ogg"}); err == nil {
		t.Fatal("Synthesize() error = nil for unsupported format")
	}
}

func TestSynthesize_CacheSkipsSecondRoundTrip(t *testing.T) {
	t.Parallel()

	cache, err := store.Open(filepath.Join(t.TempDir(), "clips.db"))
	if err != nil {
		t.Fatalf("opening cache: %v", err)
	}
	defer cache.Close()

	synth := &fakeSynth{pcm: []byte{7, 7, 7}, rate: 24000}
	p := NewTTSProvider("vibevoice", synth, cache)

	req := &Request{Text: "cached phrase", Voice: "alice"}
	first, err := p.Synthesize(context.Background(), req)
	if err != nil {
		t.Fatalf("first Synthesize() error = %v", err)
	}
	if first.Cached {
		t.Error("first result marked cached")
	}

	second, err := p.Synthesize(context.Background(), &Request{Text: "cached phrase", Voice: "alice"})
	if err != nil {
		t.Fatalf("second Synthesize() error = %v", err)
	}
	if !second.Cached {
		t.Error("second result not marked cached")
	}
	if synth.calls != 1 {
		t.Errorf("backend called %d times, want 1", synth.calls)
	}
	if !bytes.Equal(first.Audio, second.Audio) {
		t.Error("cached audio differs from fresh audio")
	}
}

func TestSynthesize_BackendErrorPropagates(t *testing.T) {
	t.Parallel()

	boom := errors.New("server down")
	p := NewTTSProvider("vibevoice", &fakeSynth{err: boom}, nil)

	_, err := p.Synthesize(context.Background(), &Request{Text: "hi"})
	if !errors.Is(err, boom) {
		t.Errorf("Synthesize() error = %v, want wrapped %v", err, boom)
	}
}

func TestShutdownClosesSynthesizer(t *testing.T) {
	t.Parallel()

	synth := &fakeSynth{}
	p := NewTTSProvider("vibevoice", synth, nil)
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if !synth.closed {
		t.Error("Shutdown() did not close the synthesizer")
	}
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	a := NewTTSProvider("vibevoice", &fakeSynth{}, nil)
	b := NewTTSProvider("chatterbox", &fakeSynth{}, nil)

	if err := r.Register(a); err != nil {
		t.Fatalf("Register(a) error = %v", err)
	}
	if err := r.Register(b); err != nil {
		t.Fatalf("Register(b) error = %v", err)
	}
	if err := r.Register(a); err == nil {
		t.Error("duplicate Register() error = nil, want error")
	}
	if err := r.Register(NewTTSProvider("", &fakeSynth{}, nil)); err == nil {
		t.Error("empty-name Register() error = nil, want error")
	}

	if got, ok := r.Get("chatterbox"); !ok || got != b {
		t.Errorf("Get(chatterbox) = (%v, %v)", got, ok)
	}
	if _, ok := r.Get("piper"); ok {
		t.Error("Get(piper) = ok for unregistered name")
	}

	names := r.Names()
	if len(names) != 2 || names[0] != "chatterbox" || names[1] != "vibevoice" {
		t.Errorf("Names() = %v, want [chatterbox vibevoice]", names)
	}
}
