package media

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"dcgen/internal/domain"
)

// urlTransport serves fixed bodies keyed by full request URL.
type urlTransport struct {
	responses map[string][]byte
}

func (u *urlTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if data, ok := u.responses[req.URL.String()]; ok {
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"video/mp4"}},
			Body:       io.NopCloser(bytes.NewReader(data)),
		}, nil
	}
	return &http.Response{
		StatusCode: http.StatusNotFound,
		Body:       io.NopCloser(strings.NewReader("not found")),
	}, nil
}

type memRepo struct {
	inserted []domain.SavedMedia
	listed   []domain.SavedMedia
	deleted  []string
	err      error
}

func (m *memRepo) Insert(ctx context.Context, media *domain.SavedMedia) error {
	if m.err != nil {
		return m.err
	}
	m.inserted = append(m.inserted, *media)
	return nil
}

func (m *memRepo) ListByUser(ctx context.Context, userID string, mediaType domain.MediaType, now time.Time) ([]domain.SavedMedia, error) {
	return m.listed, m.err
}

func (m *memRepo) Delete(ctx context.Context, mediaID, userID string) error {
	m.deleted = append(m.deleted, mediaID)
	return m.err
}

func (m *memRepo) DeleteExpired(ctx context.Context, ids []string) error { return nil }

type memStore struct {
	puts int
	err  error
}

func (m *memStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.puts++
	return "https://media.dcgen.example/" + key, nil
}

func TestSaveRehostsArtifact(t *testing.T) {
	transport := &urlTransport{responses: map[string][]byte{
		"https://provider.example.com/out.mp4": []byte("mp4bytes"),
	}}
	repo := &memRepo{}
	store := &memStore{}
	svc := NewService(Options{
		Repo:       repo,
		Store:      store,
		HTTPClient: &http.Client{Transport: transport},
		TTL:        time.Hour,
	})

	saved, err := svc.Save(context.Background(), "u1", domain.MediaTypeVideo, "https://provider.example.com/out.mp4", "a cat", nil)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(saved.URL, "https://media.dcgen.example/") {
		t.Fatalf("url = %q, want re-hosted", saved.URL)
	}
	if saved.SourceURL != "https://provider.example.com/out.mp4" {
		t.Fatalf("source url = %q", saved.SourceURL)
	}
	if store.puts != 1 {
		t.Fatalf("puts = %d, want 1", store.puts)
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("inserted = %d, want 1", len(repo.inserted))
	}
	if got := saved.ExpiresAt.Sub(saved.CreatedAt); got != time.Hour {
		t.Fatalf("retention = %s, want 1h", got)
	}
}

func TestSaveFallsBackOnDownloadError(t *testing.T) {
	transport := &urlTransport{responses: map[string][]byte{}}
	repo := &memRepo{}
	svc := NewService(Options{
		Repo:       repo,
		Store:      &memStore{},
		HTTPClient: &http.Client{Transport: transport},
	})

	saved, err := svc.Save(context.Background(), "u1", domain.MediaTypeVideo, "https://provider.example.com/out.mp4", "a cat", nil)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.URL != "https://provider.example.com/out.mp4" {
		t.Fatalf("url = %q, want provider url fallback", saved.URL)
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("fallback must still persist the artifact")
	}
}

func TestSaveFallsBackOnStoreError(t *testing.T) {
	transport := &urlTransport{responses: map[string][]byte{
		"https://provider.example.com/out.mp4": []byte("mp4bytes"),
	}}
	repo := &memRepo{}
	svc := NewService(Options{
		Repo:       repo,
		Store:      &memStore{err: errors.New("bucket gone")},
		HTTPClient: &http.Client{Transport: transport},
	})

	saved, err := svc.Save(context.Background(), "u1", domain.MediaTypeVideo, "https://provider.example.com/out.mp4", "", nil)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.URL != "https://provider.example.com/out.mp4" {
		t.Fatalf("url = %q, want provider url fallback", saved.URL)
	}
}

func TestSaveWithoutStoreKeepsProviderURL(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(Options{Repo: repo})

	saved, err := svc.Save(context.Background(), "u1", domain.MediaTypeImage, "https://provider.example.com/a.png", "", nil)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.URL != "https://provider.example.com/a.png" {
		t.Fatalf("url = %q", saved.URL)
	}
}

func TestSaveEmptyURL(t *testing.T) {
	svc := NewService(Options{Repo: &memRepo{}})
	if _, err := svc.Save(context.Background(), "u1", domain.MediaTypeImage, "", "", nil); err == nil {
		t.Fatalf("expected error for empty artifact url")
	}
}

func TestExportZipSkipsUnreachableArtifacts(t *testing.T) {
	transport := &urlTransport{responses: map[string][]byte{
		"https://media.dcgen.example/a.mp4": []byte("aaaa"),
	}}
	repo := &memRepo{listed: []domain.SavedMedia{
		{ID: "m1", URL: "https://media.dcgen.example/a.mp4"},
		{ID: "m2", URL: "https://media.dcgen.example/missing.mp4"},
	}}
	svc := NewService(Options{
		Repo:       repo,
		HTTPClient: &http.Client{Transport: transport},
	})

	data, err := svc.ExportZip(context.Background(), "u1", "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("read zip: %v", err)
	}
	if len(zr.File) != 1 {
		t.Fatalf("zip entries = %d, want 1", len(zr.File))
	}
	if !strings.Contains(zr.File[0].Name, "m1") {
		t.Fatalf("entry = %q, want the reachable artifact", zr.File[0].Name)
	}
}

func TestExportZipEmptyHistory(t *testing.T) {
	svc := NewService(Options{Repo: &memRepo{}})
	if _, err := svc.ExportZip(context.Background(), "u1", ""); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
