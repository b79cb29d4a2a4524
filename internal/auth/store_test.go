package auth

import (
	"path/filepath"
	"testing"
)

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()
	store := Store{Path: filepath.Join(t.TempDir(), "credentials.enc")}
	in := Credentials{APIToken: "tok-abc", CalendarID: "primary"}
	if err := store.Save(in, "hunter2"); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := store.Load("hunter2")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out != in {
		t.Fatalf("round-trip mismatch: got %+v want %+v", out, in)
	}
	if _, err := store.Load("wrong-passphrase"); err == nil {
		t.Fatal("expected decrypt error with wrong passphrase")
	}
}

func TestStoreRejectsCorruptFile(t *testing.T) {
	t.Parallel()
	store := Store{Path: filepath.Join(t.TempDir(), "missing.enc")}
	if _, err := store.Load("hunter2"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
