// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/desertthunder/plcopy/internal/models"
	"github.com/desertthunder/plcopy/internal/services"
	"github.com/desertthunder/plcopy/internal/shared"
	"golang.org/x/oauth2"
)

// MockPlaylistService is an in-memory [services.PlaylistService] and [services.PlaylistLister].
//
// Created playlists get ids "PLmock1", "PLmock2", ... and are readable afterwards.
type MockPlaylistService struct {
	mu sync.Mutex

	Metadata map[string]*models.PlaylistMetadata
	Items    map[string][]string
	Mine     []models.Playlist

	MetadataErr error
	ListErr     error
	CreateErr   error
	DeleteErr   error
	AppendErrAt int // 1-based append call that fails with a 403 APIError, 0 never

	Created  []string
	Appended []string
	Deleted  []string
}

var (
	_ services.PlaylistService = (*MockPlaylistService)(nil)
	_ services.PlaylistLister  = (*MockPlaylistService)(nil)
)

// NewMockPlaylistService returns a service holding one source playlist.
func NewMockPlaylistService(id, title string, videoIDs ...string) *MockPlaylistService {
	return &MockPlaylistService{
		Metadata: map[string]*models.PlaylistMetadata{
			id: {Title: title, Thumbnails: map[string]models.Thumbnail{}},
		},
		Items: map[string][]string{id: videoIDs},
		Mine: []models.Playlist{
			{ID: id, Metadata: models.PlaylistMetadata{Title: title}, ItemCount: int64(len(videoIDs))},
		},
	}
}

func (m *MockPlaylistService) GetMetadata(ctx context.Context, id string) (*models.PlaylistMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MetadataErr != nil {
		return nil, m.MetadataErr
	}
	meta, ok := m.Metadata[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}
	return meta, nil
}

func (m *MockPlaylistService) Pages(ctx context.Context, id string) iter.Seq2[[]string, error] {
	return func(yield func([]string, error) bool) {
		m.mu.Lock()
		err, items := m.ListErr, slices.Clone(m.Items[id])
		m.mu.Unlock()

		if err != nil {
			yield(nil, err)
			return
		}
		yield(items, nil)
	}
}

func (m *MockPlaylistService) VideoIDs(ctx context.Context, id string, order models.Order) ([]string, error) {
	var ids []string
	for page, err := range m.Pages(ctx, id) {
		if err != nil {
			return nil, err
		}
		ids = append(ids, page...)
	}
	if order == models.Descending {
		slices.Reverse(ids)
	}
	return ids, nil
}

func (m *MockPlaylistService) CreatePlaylist(ctx context.Context, meta *models.PlaylistMetadata, private bool) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	id := fmt.Sprintf("PLmock%d", len(m.Created)+1)
	copied := *meta
	copied.Visibility = models.Public
	if private {
		copied.Visibility = models.Private
	}
	m.Metadata[id] = &copied
	m.Created = append(m.Created, id)
	return id, nil
}

func (m *MockPlaylistService) AppendVideo(ctx context.Context, playlistID, videoID string) (*models.InsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Appended = append(m.Appended, videoID)
	if m.AppendErrAt > 0 && len(m.Appended) == m.AppendErrAt {
		return nil, &shared.APIError{Op: "playlistItems.insert", Status: 403, Message: "forbidden"}
	}
	pos := int64(len(m.Items[playlistID]))
	m.Items[playlistID] = append(m.Items[playlistID], videoID)
	return &models.InsertResult{ItemID: fmt.Sprintf("%s-%d", playlistID, pos), PlaylistID: playlistID, VideoID: videoID, Position: pos}, nil
}

func (m *MockPlaylistService) DeletePlaylist(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, id)
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.Metadata, id)
	delete(m.Items, id)
	return nil
}

func (m *MockPlaylistService) ListMine(ctx context.Context) ([]models.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return slices.Clone(m.Mine), nil
}

// Export mirrors services.YouTubeClient.Export.
func (m *MockPlaylistService) Export(ctx context.Context, id string, order models.Order) (*models.PlaylistExport, error) {
	meta, err := m.GetMetadata(ctx, id)
	if err != nil {
		return nil, err
	}
	ids, err := m.VideoIDs(ctx, id, order)
	if err != nil {
		return nil, err
	}
	return &models.PlaylistExport{
		Playlist: models.Playlist{ID: id, Metadata: *meta, ItemCount: int64(len(ids))},
		Order:    order.String(),
		VideoIDs: ids,
	}, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockAuthorizer stands in for the interactive consent flow.
type MockAuthorizer struct {
	Token *oauth2.Token
	Err   error
	Calls int
}

func (m *MockAuthorizer) Authorize(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Token, nil
}

// WriteClientSecrets writes an installed-app client secret file into dir and returns its path.
func WriteClientSecrets(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "client_secret.json")
	secrets := `{"installed":{"client_id":"id.apps.googleusercontent.com","client_secret":"shh",
		"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token",
		"redirect_uris":["http://localhost"]}}`
	if err := os.WriteFile(path, []byte(secrets), 0600); err != nil {
		t.Fatalf("Failed to write client secrets: %v", err)
	}
	return path
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
