package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStoreSave(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/media/")
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	url, err := store.Save(context.Background(), "my shot.png", strings.NewReader("pngbytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(url, "/media/") {
		t.Fatalf("expected a /media/ URL, got %q", url)
	}
	if !strings.HasSuffix(url, "_my_shot.png") {
		t.Fatalf("expected sanitized filename in URL, got %q", url)
	}

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, "/media/")))
	if err != nil {
		t.Fatalf("read blob: %v", err)
	}
	if string(data) != "pngbytes" {
		t.Fatalf("blob content mismatch: %q", data)
	}
}

func TestLocalStoreUniqueNames(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/media")
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	ctx := context.Background()
	first, err := store.Save(ctx, "notes.pdf", strings.NewReader("a"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	second, err := store.Save(ctx, "notes.pdf", strings.NewReader("b"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if first == second {
		t.Fatalf("colliding upload names were not disambiguated: %q", first)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"report.pdf", "report.pdf"},
		{"my file.txt", "my_file.txt"},
		{"../../etc/passwd", "passwd"},
		{"", "upload"},
		{".", "upload"},
	}
	for _, tt := range tests {
		if got := sanitize(tt.in); got != tt.want {
			t.Errorf("sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
