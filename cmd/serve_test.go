package cmd

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func TestServerStateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.json")
	want := serverRuntimeState{PID: os.Getpid(), Addr: "127.0.0.1:9000", StartedAt: time.Now().UTC().Truncate(time.Second), Source: "memory"}
	if err := writeState(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := readState(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.PID != want.PID || got.Addr != want.Addr || !got.StartedAt.Equal(want.StartedAt) {
		t.Fatalf("state = %+v, want %+v", got, want)
	}

	if err := ensureServerNotRunning(path); err == nil {
		t.Fatal("state naming this live process should block a second server")
	}
}

func TestEnsureServerNotRunning_RemovesStaleState(t *testing.T) {
	dir := t.TempDir()
	if err := ensureServerNotRunning(filepath.Join(dir, "missing.json")); err != nil {
		t.Fatalf("missing state file: %v", err)
	}

	path := filepath.Join(dir, "server.json")
	if err := writeState(path, serverRuntimeState{PID: 99999999, Addr: "127.0.0.1:9000"}); err != nil {
		t.Fatal(err)
	}
	if err := ensureServerNotRunning(path); err != nil {
		t.Fatalf("stale state: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("stale state file should be removed")
	}
}

func TestReadState_RejectsMissingPID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.json")
	if err := writeState(path, serverRuntimeState{Addr: "127.0.0.1:9000"}); err != nil {
		t.Fatal(err)
	}
	if _, err := readState(path); err == nil {
		t.Fatal("state without a pid should be rejected")
	}
}

func TestFilterDetachArg(t *testing.T) {
	got := filterDetachArg([]string{"serve", "--detach", "--addr", "x", "--detach=true", "-q"})
	want := []string{"serve", "--addr", "x", "-q"}
	if !slices.Equal(got, want) {
		t.Fatalf("filterDetachArg = %v, want %v", got, want)
	}
}
