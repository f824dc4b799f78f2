package formatter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/plcopy/internal/models"
	"github.com/desertthunder/plcopy/internal/shared"
	"github.com/desertthunder/plcopy/internal/tasks"
	th "github.com/desertthunder/plcopy/internal/testing"
)

func testExport() *models.PlaylistExport {
	return &models.PlaylistExport{
		Playlist: models.Playlist{
			ID: "PL123",
			Metadata: models.PlaylistMetadata{
				Title:       "My Mix",
				Description: "A test playlist",
				Visibility:  models.Public,
			},
			ItemCount: 3,
		},
		Order:    "desc",
		VideoIDs: []string{"a3", "a2", "a1"},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"txt", FormatText, false},
		{"MD", FormatMarkdown, false},
		{"markdown", FormatMarkdown, false},
		{"csv", FormatCSV, false},
		{" json ", FormatJSON, false},
		{"yaml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v", tt.in, err)
			}
			if err != nil && !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(testExport())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 4 {
			t.Fatalf("expected header + 3 rows, got %d lines", len(lines))
		}
		if lines[0] != "Position,VideoID,URL" {
			t.Errorf("CSV missing headers, got: %s", lines[0])
		}
		if lines[1] != "1,a3,https://www.youtube.com/watch?v=a3" {
			t.Errorf("unexpected first row: %s", lines[1])
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(testExport(), "cover.jpg")
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# My Mix",
			"![Cover](cover.jpg)",
			"**Description**: A test playlist",
			"**Videos**: 3",
			"**Visibility**: public",
			"**Order**: desc",
			"1. [a3](https://www.youtube.com/watch?v=a3)",
			"3. [a1](https://www.youtube.com/watch?v=a1)",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q", want)
			}
		}
	})

	t.Run("ExportToMarkdown without cover", func(t *testing.T) {
		data, _ := ExportToMarkdown(testExport(), "")
		if strings.Contains(string(data), "![Cover]") {
			t.Error("expected no cover image line")
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(testExport())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{"Playlist: My Mix", "ID: PL123", "Videos: 3", "1. a3\n", "3. a1\n"} {
			if !strings.Contains(output, want) {
				t.Errorf("Text missing %q", want)
			}
		}
	})

	t.Run("Render", func(t *testing.T) {
		for _, format := range []Format{FormatText, FormatMarkdown, FormatCSV, FormatJSON} {
			t.Run(string(format), func(t *testing.T) {
				data, err := Render(testExport(), format)
				if err != nil {
					t.Fatalf("Render failed: %v", err)
				}
				if len(data) == 0 {
					t.Error("expected output")
				}
			})
		}

		t.Run("json keeps order and visibility", func(t *testing.T) {
			data, _ := Render(testExport(), FormatJSON)
			var decoded models.PlaylistExport
			if err := json.Unmarshal(data, &decoded); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if decoded.Order != "desc" || decoded.Playlist.Metadata.Visibility != models.Public {
				t.Errorf("unexpected decoded export: %+v", decoded)
			}
		})

		t.Run("unknown format", func(t *testing.T) {
			if _, err := Render(testExport(), Format("xml")); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	})
}

func TestWriteExports(t *testing.T) {
	t.Run("WriteCSVExport", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			result, err := WriteCSVExport(testExport(), "")
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}

			if result.VideosFile != "PL123_videos.csv" {
				t.Errorf("Expected videos file 'PL123_videos.csv', got '%s'", result.VideosFile)
			}
			if result.MetadataFile != "PL123_metadata.json" {
				t.Errorf("Expected metadata file 'PL123_metadata.json', got '%s'", result.MetadataFile)
			}

			th.AssertFileExists(t, result.VideosFile)
			th.AssertFileExists(t, result.MetadataFile)

			metadataContent := th.MustReadFile(t, result.MetadataFile)
			if !strings.Contains(metadataContent, "PL123") || !strings.Contains(metadataContent, "My Mix") {
				t.Errorf("Metadata JSON missing expected fields")
			}
		})

		t.Run("WithCustomPath", func(t *testing.T) {
			base := filepath.Join(t.TempDir(), "custom_export")
			result, err := WriteCSVExport(testExport(), base)
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}
			if result.VideosFile != base+"_videos.csv" {
				t.Errorf("unexpected videos file %s", result.VideosFile)
			}
			th.AssertFileExists(t, result.VideosFile)
		})
	})

	t.Run("WriteMarkdownExport", func(t *testing.T) {
		t.Run("WithCover", func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("jpeg-bytes"))
			}))
			defer srv.Close()

			export := testExport()
			export.Playlist.Metadata.Thumbnails = map[string]models.Thumbnail{"high": {URL: srv.URL + "/hq.jpg"}}

			dir := filepath.Join(t.TempDir(), "out")
			result, err := WriteMarkdownExport(export, dir, nil)
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}

			th.AssertDirExists(t, result.Directory)
			if result.CoverImage != filepath.Join(dir, "cover.jpg") {
				t.Errorf("unexpected cover path %q", result.CoverImage)
			}
			if got := th.MustReadFile(t, result.CoverImage); got != "jpeg-bytes" {
				t.Errorf("unexpected cover contents %q", got)
			}

			readme := th.MustReadFile(t, filepath.Join(dir, "README.md"))
			if !strings.Contains(readme, "![Cover](cover.jpg)") {
				t.Error("README should reference the cover image")
			}
		})

		t.Run("CoverDownloadFailureWarns", func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))
			defer srv.Close()

			export := testExport()
			export.Playlist.Metadata.Thumbnails = map[string]models.Thumbnail{"default": {URL: srv.URL}}

			var warn bytes.Buffer
			result, err := WriteMarkdownExport(export, t.TempDir(), &warn)
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}
			if result.CoverImage != "" || len(result.Files) != 1 {
				t.Errorf("expected only README, got %v", result.Files)
			}
			if !strings.Contains(warn.String(), "status 404") {
				t.Errorf("expected a warning, got %q", warn.String())
			}
		})
	})

	t.Run("WriteExport", func(t *testing.T) {
		tests := []struct {
			format    Format
			path      string
			wantFiles []string
		}{
			{FormatText, "list.txt", []string{"list.txt"}},
			{FormatJSON, "list.json", []string{"list.json"}},
			{FormatCSV, "list.csv", []string{"list_videos.csv", "list_metadata.json"}},
			{FormatMarkdown, "md", []string{filepath.Join("md", "README.md")}},
		}

		for _, tt := range tests {
			t.Run(string(tt.format), func(t *testing.T) {
				dir := t.TempDir()
				files, err := WriteExport(testExport(), tt.format, filepath.Join(dir, tt.path))
				if err != nil {
					t.Fatalf("WriteExport failed: %v", err)
				}
				if len(files) != len(tt.wantFiles) {
					t.Fatalf("expected %d files, got %v", len(tt.wantFiles), files)
				}
				for i, want := range tt.wantFiles {
					if files[i] != filepath.Join(dir, want) {
						t.Errorf("expected %s, got %s", filepath.Join(dir, want), files[i])
					}
					th.AssertFileExists(t, files[i])
				}
			})
		}
	})

	t.Run("DownloadImage", func(t *testing.T) {
		if _, err := DownloadImage(""); err == nil {
			t.Error("expected error for empty URL")
		}
	})
}

func TestReports(t *testing.T) {
	t.Run("CopyReport", func(t *testing.T) {
		result := &tasks.CopyResult{
			State:         tasks.Done,
			SourceID:      "XXX",
			Metadata:      &models.PlaylistMetadata{Title: "My Mix"},
			DestinationID: "PLnew",
			VideoIDs:      []string{"a3", "a2", "a1"},
			Items:         make([]models.InsertResult, 3),
			RunID:         "run-1",
		}

		output := string(CopyReport(result, nil))
		for _, want := range []string{"Source: My Mix (XXX)", "Status: completed", "Destination: PLnew", "Videos: 3/3", "Run: run-1"} {
			if !strings.Contains(output, want) {
				t.Errorf("report missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("CopyReport failure", func(t *testing.T) {
		result := &tasks.CopyResult{
			State:         tasks.Failed,
			FailedAt:      tasks.Appending,
			SourceID:      "XXX",
			DestinationID: "PLnew",
			VideoIDs:      []string{"a1", "a2"},
			Items:         make([]models.InsertResult, 1),
			CleanedUp:     true,
		}

		output := string(CopyReport(result, errors.New("quota exceeded")))
		for _, want := range []string{"Status: failed during appending", "Videos: 1/2", "Partial playlist deleted", "Error: quota exceeded"} {
			if !strings.Contains(output, want) {
				t.Errorf("report missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("CopyReport without result", func(t *testing.T) {
		output := string(CopyReport(nil, errors.New("missing required argument")))
		if output != "Error: missing required argument\n" {
			t.Errorf("unexpected report %q", output)
		}
	})

	t.Run("CopyReport dry run", func(t *testing.T) {
		result := &tasks.CopyResult{State: tasks.Done, SourceID: "XXX", VideoIDs: []string{"a1"}}
		if output := string(CopyReport(result, nil)); !strings.Contains(output, "Status: dry run") {
			t.Errorf("expected dry run status:\n%s", output)
		}
	})

	run := models.NewCopyRun(7, "PLsrc", "asc", "private")
	run.SetID("run-7")
	run.Start()
	run.SetDestinationPlaylistID("PLdst")
	run.SetItemsTotal(2)
	run.SetItemsCopied(2)
	run.Finish(nil)

	t.Run("RunsTable", func(t *testing.T) {
		output := string(RunsTable([]*models.CopyRun{run}))
		for _, want := range []string{"STATUS", "7", "completed", "PLsrc", "PLdst", "2/2"} {
			if !strings.Contains(output, want) {
				t.Errorf("table missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("RunDetail", func(t *testing.T) {
		output := string(RunDetail(run))
		for _, want := range []string{"run-7", "#7", "PLdst", "2/2"} {
			if !strings.Contains(output, want) {
				t.Errorf("detail missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("RunViews", func(t *testing.T) {
		views := RunViews([]*models.CopyRun{run})
		data, err := json.Marshal(views)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if !strings.Contains(string(data), `"destination_playlist_id":"PLdst"`) {
			t.Errorf("unexpected JSON: %s", data)
		}
	})

	t.Run("PlaylistsTable", func(t *testing.T) {
		output := string(PlaylistsTable([]models.Playlist{{ID: "PL1", Metadata: models.PlaylistMetadata{Title: "First"}, ItemCount: 4}}))
		for _, want := range []string{"TITLE", "PL1", "First", "4", "private"} {
			if !strings.Contains(output, want) {
				t.Errorf("table missing %q:\n%s", want, output)
			}
		}
	})
}
