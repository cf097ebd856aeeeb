package config_test

import (
	"path/filepath"
	"testing"

	"github.com/ais-stomp/stompclient/config"
)

func TestSaveThenLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stompcli.json")

	want := &config.Config{
		BrokerName: "localhost",
		Hostname:   "127.0.0.1",
		Port:       61613,
		User:       "guest",
		Password:   "guest",
		TopicNames: []string{"/topic/a", "/topic/b"},
	}
	if err := config.Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Hostname != want.Hostname || got.Port != want.Port || len(got.TopicNames) != 2 {
		t.Fatalf("round-trip mismatch: %+v vs %+v", got, want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatalf("expected an error loading a missing file")
	}
}
