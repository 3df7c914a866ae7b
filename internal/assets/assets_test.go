package assets

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureDownloadsOnce(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "asset.bin")
	if err := Ensure(path, srv.URL); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("downloaded content = %q", data)
	}

	// Present file short-circuits the download.
	if err := Ensure(path, srv.URL); err != nil {
		t.Fatalf("second Ensure: %v", err)
	}
	if hits != 1 {
		t.Errorf("server hit %d times, want 1", hits)
	}
}

func TestEnsureFailsOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "asset.bin")
	if err := Ensure(path, srv.URL); err == nil {
		t.Fatal("Ensure should fail on 404")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("failed download must not leave a file behind")
	}
}

func TestEnsureKeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asset.bin")
	if err := os.WriteFile(path, []byte("original"), 0o644); err != nil {
		t.Fatal(err)
	}

	// URL is never contacted for an existing file.
	if err := Ensure(path, "http://127.0.0.1:1/unreachable"); err != nil {
		t.Fatalf("Ensure over existing file: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "original" {
		t.Errorf("existing file overwritten: %q", data)
	}
}
