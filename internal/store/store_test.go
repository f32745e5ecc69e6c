package store

import (
	"bytes"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "clips.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetMissingReturnsNil(t *testing.T) {
	s := openTestStore(t)

	clip, err := s.Get(Key("vibevoice", "alice", 1.0, "hello"))
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if clip != nil {
		t.Errorf("Get() = %v, want nil for missing key", clip)
	}
}

func TestPutThenGet(t *testing.T) {
	s := openTestStore(t)

	key := Key("vibevoice", "alice", 1.0, "hello")
	in := &Clip{PCM: []byte{1, 2, 3, 4}, SampleRate: 24000, Channels: 1, Voice: "alice"}
	if err := s.Put(key, "vibevoice", in); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	out, err := s.Get(key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if out == nil {
		t.Fatal("Get() = nil after Put()")
	}
	if !bytes.Equal(out.PCM, in.PCM) || out.SampleRate != in.SampleRate ||
		out.Channels != in.Channels || out.Voice != in.Voice {
		t.Errorf("Get() = %+v, want %+v", out, in)
	}
}

func TestPutReplaces(t *testing.T) {
	s := openTestStore(t)

	key := Key("chatterbox", "bob", 1.0, "again")
	_ = s.Put(key, "chatterbox", &Clip{PCM: []byte{1}, SampleRate: 22050, Channels: 1})
	if err := s.Put(key, "chatterbox", &Clip{PCM: []byte{9, 9}, SampleRate: 44100, Channels: 1}); err != nil {
		t.Fatalf("second Put() error = %v", err)
	}

	out, err := s.Get(key)
	if err != nil || out == nil {
		t.Fatalf("Get() = (%v, %v)", out, err)
	}
	if out.SampleRate != 44100 || len(out.PCM) != 2 {
		t.Errorf("Get() = %+v, want replaced clip", out)
	}
}

func TestKeySensitivity(t *testing.T) {
	t.Parallel()

	base := Key("vibevoice", "alice", 1.0, "hello")
	variants := []string{
		Key("chatterbox", "alice", 1.0, "hello"),
		Key("vibevoice", "bob", 1.0, "hello"),
		Key("vibevoice", "alice", 1.5, "hello"),
		Key("vibevoice", "alice", 1.0, "goodbye"),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collides with base key", i)
		}
	}
	if again := Key("vibevoice", "alice", 1.0, "hello"); again != base {
		t.Error("Key() is not deterministic")
	}
}
