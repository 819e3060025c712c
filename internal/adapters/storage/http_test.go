package storage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jobrunner/meridian/internal/domain"
)

func newTestHTTPServer(t *testing.T) *httptest.Server {
	t.Helper()
	files := map[string]string{
		"/index.txt": "# definition files\n" +
			"germany.yaml 15 1700000000\n" +
			"\n" +
			"/nested/france.yml\n" +
			"README.md 12\n",
		"/germany.yaml":      "definitions: []",
		"/nested/france.yml": "definitions: []",
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "meridian" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, found := files[r.URL.Path]
		if !found {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPStorageList(t *testing.T) {
	srv := newTestHTTPServer(t)
	storage := NewHTTPStorage(HTTPConfig{BaseURL: srv.URL + "/", Username: "meridian", Password: "secret"})

	objects, err := storage.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(objects) != 2 {
		t.Fatalf("len(objects) = %d, want 2: %+v", len(objects), objects)
	}
	if objects[0].Key != "germany.yaml" || objects[0].Size != 15 || objects[0].LastModified != 1700000000 {
		t.Errorf("objects[0] = %+v", objects[0])
	}
	if objects[1].Key != "nested/france.yml" || objects[1].Size != 0 {
		t.Errorf("objects[1] = %+v", objects[1])
	}
}

func TestHTTPStorageUnauthorized(t *testing.T) {
	srv := newTestHTTPServer(t)
	storage := NewHTTPStorage(HTTPConfig{BaseURL: srv.URL})

	_, err := storage.List(context.Background())
	var storageErr *domain.StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("List() error = %v, want *domain.StorageError", err)
	}
	if !strings.Contains(err.Error(), "HTTP 401") {
		t.Errorf("error = %v, want HTTP 401", err)
	}
}

func TestHTTPStorageDownloadAndExists(t *testing.T) {
	srv := newTestHTTPServer(t)
	storage := NewHTTPStorage(HTTPConfig{BaseURL: srv.URL, Username: "meridian", Password: "secret"})
	ctx := context.Background()

	dest := filepath.Join(t.TempDir(), "nested", "france.yml")
	if err := storage.Download(ctx, "nested/france.yml", dest); err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("failed to read download: %v", err)
	}
	if string(data) != "definitions: []" {
		t.Errorf("content = %q", data)
	}

	if err := storage.Download(ctx, "missing.yaml", filepath.Join(t.TempDir(), "x.yaml")); err == nil {
		t.Error("Download() of a missing file should fail")
	}

	tests := []struct {
		key  string
		want bool
	}{
		{"germany.yaml", true},
		{"missing.yaml", false},
	}
	for _, tt := range tests {
		got, err := storage.Exists(ctx, tt.key)
		if err != nil {
			t.Fatalf("Exists(%q) error = %v", tt.key, err)
		}
		if got != tt.want {
			t.Errorf("Exists(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestParseIndexErrors(t *testing.T) {
	tests := []string{
		"germany.yaml big\n",
		"germany.yaml 10 yesterday\n",
	}
	for _, index := range tests {
		if _, err := parseIndex(strings.NewReader(index)); err == nil {
			t.Errorf("parseIndex(%q) should fail", index)
		}
	}
}
