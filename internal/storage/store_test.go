package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestMediaKeyLayout(t *testing.T) {
	key := MediaKey("/media/", "/VIDEO/", "video/mp4")

	now := time.Now().UTC()
	wantPrefix := fmt.Sprintf("media/VIDEO/%04d/%02d/%02d/", now.Year(), now.Month(), now.Day())
	if !strings.HasPrefix(key, wantPrefix) {
		t.Fatalf("key = %q, want prefix %q", key, wantPrefix)
	}
	if !strings.HasSuffix(key, ".mp4") {
		t.Fatalf("key = %q, want .mp4 suffix", key)
	}
	if strings.Contains(key, "//") {
		t.Fatalf("key = %q contains empty path segment", key)
	}
}

func TestMediaKeyIsUnique(t *testing.T) {
	a := MediaKey("media", "IMAGE", "image/png")
	b := MediaKey("media", "IMAGE", "image/png")
	if a == b {
		t.Fatalf("two keys collided: %q", a)
	}
}

func TestExtensionForContentType(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
	}{
		{"image/png", ".png"},
		{"image/jpeg", ".jpg"},
		{"image/jpg", ".jpg"},
		{" IMAGE/WEBP ", ".webp"},
		{"video/mp4", ".mp4"},
		{"audio/mpeg", ".mp3"},
		{"audio/wav", ".wav"},
		{"application/octet-stream", ".bin"},
		{"", ".bin"},
	}
	for _, tt := range tests {
		if got := ExtensionForContentType(tt.contentType); got != tt.want {
			t.Errorf("ExtensionForContentType(%q) = %q, want %q", tt.contentType, got, tt.want)
		}
	}
}

func TestFileStorePutAndRead(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, "http://localhost:8080/static/")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	url, err := store.Put(context.Background(), "media/IMAGE/a.png", "image/png", []byte("pixels"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if url != "http://localhost:8080/static/media/IMAGE/a.png" {
		t.Fatalf("url = %q, want trailing slash trimmed from base", url)
	}

	onDisk, err := os.ReadFile(filepath.Join(dir, "media", "IMAGE", "a.png"))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(onDisk) != "pixels" {
		t.Fatalf("stored bytes = %q, want %q", onDisk, "pixels")
	}

	back, err := store.Read(context.Background(), "media/IMAGE/a.png")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(back) != "pixels" {
		t.Fatalf("Read bytes = %q, want %q", back, "pixels")
	}
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "http://localhost")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	for _, key := range []string{"../../etc/passwd", "..", "", "   "} {
		if _, err := store.Put(context.Background(), key, "image/png", []byte("x")); err == nil {
			t.Errorf("Put(%q) accepted a key that escapes the root", key)
		}
	}
}

func TestFileStoreRequiresBasePath(t *testing.T) {
	if _, err := NewFileStore("  ", "http://localhost"); err == nil {
		t.Fatal("NewFileStore accepted an empty base path")
	}
}

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{"media/a.png", "media/a.png", false},
		{"/media/a.png", "media/a.png", false},
		{"./media/a.png", "media/a.png", false},
		{"media\\b\\c.png", "media/b/c.png", false},
		{"media/../a.png", "a.png", false},
		{"../a.png", "", true},
		{".", "", true},
	}
	for _, tt := range tests {
		got, err := sanitizeKey(tt.key)
		if tt.wantErr {
			if err == nil {
				t.Errorf("sanitizeKey(%q) = %q, want error", tt.key, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("sanitizeKey(%q): %v", tt.key, err)
			continue
		}
		if got != tt.want {
			t.Errorf("sanitizeKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
