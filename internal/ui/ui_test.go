package ui

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/plcopy/internal/models"
	"github.com/desertthunder/plcopy/internal/tasks"
	tu "github.com/desertthunder/plcopy/internal/testing"
)

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func newTestModel(t *testing.T, svc *tu.MockPlaylistService, opts Options) *Model {
	t.Helper()
	m := NewModel(context.Background(), svc, tasks.NewCopyEngine(svc, nil), opts)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

// press sends a key and runs the returned command once, feeding its message back.
func press(t *testing.T, m *Model, k string) {
	t.Helper()
	_, cmd := m.Update(keyPress(k))
	if cmd != nil {
		if msg, ok := cmd().(Msg); ok {
			m.Update(msg)
		}
	}
}

// runCopy drains progress until the copy completes.
func runCopy(t *testing.T, m *Model) {
	t.Helper()
	_, cmd := m.Update(keyPress("y"))
	for i := 0; cmd != nil && m.view != ResultView; i++ {
		if i > 1000 {
			t.Fatal("copy never completed")
		}
		msg := cmd()
		_, cmd = m.Update(msg)
	}
}

func TestModel(t *testing.T) {
	t.Run("picks a playlist and copies it in descending order", func(t *testing.T) {
		svc := tu.NewMockPlaylistService("XXX", "My Mix", "a1", "a2", "a3")
		m := newTestModel(t, svc, Options{})

		m.Update(m.fetchPlaylists()())
		if !m.listReady || m.view != PlaylistListView {
			t.Fatalf("expected playlist list, got view %d", m.view)
		}
		if !strings.Contains(m.View(), "My Mix") {
			t.Errorf("expected playlist in view:\n%s", m.View())
		}

		press(t, m, "enter")
		if m.view != VideoListView {
			t.Fatalf("expected video list, got view %d", m.view)
		}

		press(t, m, "o")
		if want := []string{"a3", "a2", "a1"}; !slices.Equal(m.orderedIDs(), want) {
			t.Errorf("expected %v, got %v", want, m.orderedIDs())
		}

		press(t, m, "enter")
		if m.view != ConfirmView {
			t.Fatalf("expected confirm view, got %d", m.view)
		}
		if view := m.View(); !strings.Contains(view, "desc") || !strings.Contains(view, "private") {
			t.Errorf("confirm view should show order and privacy:\n%s", view)
		}

		runCopy(t, m)

		result, err := m.Outcome()
		if err != nil {
			t.Fatalf("copy failed: %v", err)
		}
		if result.DestinationID != "PLmock1" {
			t.Errorf("unexpected destination %q", result.DestinationID)
		}
		if want := []string{"a3", "a2", "a1"}; !slices.Equal(svc.Appended, want) {
			t.Errorf("expected inserts %v, got %v", want, svc.Appended)
		}
		if !strings.Contains(m.View(), "Copy Complete") {
			t.Errorf("expected success view:\n%s", m.View())
		}
	})

	t.Run("preselected source skips the picker", func(t *testing.T) {
		svc := tu.NewMockPlaylistService("XXX", "My Mix", "a1")
		m := newTestModel(t, svc, Options{SourceID: "XXX"})

		m.Update(m.fetchVideos("XXX")())
		if m.view != VideoListView {
			t.Fatalf("expected video list, got view %d", m.view)
		}
		if m.listReady {
			t.Error("playlist picker should not be loaded")
		}
	})

	t.Run("privacy cycles in the confirm view", func(t *testing.T) {
		svc := tu.NewMockPlaylistService("XXX", "My Mix", "a1")
		m := newTestModel(t, svc, Options{SourceID: "XXX"})
		m.Update(m.fetchVideos("XXX")())
		press(t, m, "enter")

		want := []tasks.PrivacyPolicy{tasks.PrivacyPublic, tasks.PrivacySource, tasks.PrivacyPrivate}
		for _, p := range want {
			press(t, m, "p")
			if m.opts.Copy.Privacy != p {
				t.Errorf("expected %v, got %v", p, m.opts.Copy.Privacy)
			}
		}
	})

	t.Run("failed copy shows partial progress", func(t *testing.T) {
		svc := tu.NewMockPlaylistService("XXX", "My Mix", "a1", "a2", "a3")
		svc.AppendErrAt = 2
		m := newTestModel(t, svc, Options{SourceID: "XXX"})
		m.Update(m.fetchVideos("XXX")())
		press(t, m, "enter")

		runCopy(t, m)

		result, err := m.Outcome()
		if err == nil {
			t.Fatal("expected copy error")
		}
		if result.Appended() != 1 {
			t.Errorf("expected 1 appended video, got %d", result.Appended())
		}
		view := m.View()
		if !strings.Contains(view, "Copy failed") || !strings.Contains(view, "1/3") {
			t.Errorf("unexpected failure view:\n%s", view)
		}
	})

	t.Run("fetch error is shown and retried", func(t *testing.T) {
		svc := tu.NewMockPlaylistService("XXX", "My Mix")
		svc.ListErr = errors.New("quota exceeded")
		m := newTestModel(t, svc, Options{})

		m.Update(m.fetchPlaylists()())
		if !strings.Contains(m.View(), "quota exceeded") {
			t.Errorf("expected error view:\n%s", m.View())
		}

		svc.ListErr = nil
		press(t, m, "esc")
		if m.err != nil || !m.listReady {
			t.Errorf("expected a successful retry, err=%v ready=%v", m.err, m.listReady)
		}
	})

	t.Run("quit", func(t *testing.T) {
		m := newTestModel(t, tu.NewMockPlaylistService("XXX", "My Mix"), Options{})
		_, cmd := m.Update(keyPress("q"))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}

func TestItems(t *testing.T) {
	pl := playlistItem{playlist: models.Playlist{
		ID:        "PL1",
		Metadata:  models.PlaylistMetadata{Title: "Mix", Description: "d", Visibility: models.Public},
		ItemCount: 4,
	}}
	if pl.Title() != "Mix" || pl.FilterValue() != "Mix" {
		t.Errorf("unexpected title %q", pl.Title())
	}
	if desc := pl.Description(); desc != "4 videos • public • d" {
		t.Errorf("unexpected description %q", desc)
	}

	v := videoItem{position: 2, videoID: "abc"}
	if v.Title() != "2. abc" || !strings.HasSuffix(v.Description(), "watch?v=abc") {
		t.Errorf("unexpected video item %q / %q", v.Title(), v.Description())
	}
}
