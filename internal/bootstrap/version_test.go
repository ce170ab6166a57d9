package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"
)

func TestFetchManifestFilename(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[VERSION]\nINDEX = manifest-20260731.bin\n"))
	}))
	defer srv.Close()

	client := newBootstrapClient(t.TempDir(), "fast-dl-test", 5*time.Second)
	name, err := FetchManifestFilename(client, srv.URL+"/version.ini")
	if err != nil {
		t.Fatalf("FetchManifestFilename: %v", err)
	}
	if name != "manifest-20260731.bin" {
		t.Errorf("name = %q, want manifest-20260731.bin", name)
	}
}

func TestFetchManifestFilenameMissingKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[VERSION]\nOTHER = x\n"))
	}))
	defer srv.Close()

	client := newBootstrapClient(t.TempDir(), "fast-dl-test", 5*time.Second)
	if _, err := FetchManifestFilename(client, srv.URL+"/version.ini"); err == nil {
		t.Fatal("expected error for missing INDEX key")
	}
}

func TestFetchManifestBlob(t *testing.T) {
	want := []byte{1, 2, 3, 4}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(want)
	}))
	defer srv.Close()

	client := newBootstrapClient(filepath.Join(t.TempDir(), "cache"), "fast-dl-test", 5*time.Second)
	got, err := FetchManifestBlob(client, srv.URL, "manifest.bin")
	if err != nil {
		t.Fatalf("FetchManifestBlob: %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
