// package formatter renders playlists, copy results, and copy history as text, Markdown, CSV, or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/plcopy/internal/models"
	"github.com/desertthunder/plcopy/internal/shared"
)

const watchURL = "https://www.youtube.com/watch?v="

// Format is an output format for playlist exports.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
)

// ParseFormat accepts text, markdown (md), csv, or json. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: format %q (must be text, markdown, csv, or json)", shared.ErrInvalidArgument, s)
	}
}

// VideoURL returns the watch page for a video id.
func VideoURL(videoID string) string {
	return watchURL + videoID
}

// Render converts an export to the given format.
func Render(export *models.PlaylistExport, format Format) ([]byte, error) {
	switch format {
	case FormatMarkdown:
		return ExportToMarkdown(export, "")
	case FormatCSV:
		return ExportToCSV(export)
	case FormatJSON:
		return shared.MarshalJSON(export, true)
	case FormatText, "":
		return ExportToText(export)
	default:
		return nil, fmt.Errorf("%w: format %q", shared.ErrInvalidArgument, format)
	}
}

// ExportToCSV converts a PlaylistExport to CSV format with columns: Position, VideoID, URL
func ExportToCSV(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "VideoID", "URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, id := range export.VideoIDs {
		record := []string{strconv.Itoa(i + 1), id, VideoURL(id)}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a PlaylistExport to Markdown format with optional cover image
func ExportToMarkdown(export *models.PlaylistExport, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer
	meta := export.Playlist.Metadata

	fmt.Fprintf(&buf, "# %s\n\n", meta.Title)

	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", imageFilename)
	}

	if meta.Description != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", meta.Description)
	}

	fmt.Fprintf(&buf, "**Videos**: %d\n", len(export.VideoIDs))
	fmt.Fprintf(&buf, "**Visibility**: %s\n", meta.Visibility)
	if export.Order != "" {
		fmt.Fprintf(&buf, "**Order**: %s\n", export.Order)
	}
	buf.WriteString("\n## Videos\n\n")

	for i, id := range export.VideoIDs {
		fmt.Fprintf(&buf, "%d. [%s](%s)\n", i+1, id, VideoURL(id))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a PlaylistExport to plain text format
func ExportToText(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer
	meta := export.Playlist.Metadata

	fmt.Fprintf(&buf, "Playlist: %s\n", meta.Title)
	if export.Playlist.ID != "" {
		fmt.Fprintf(&buf, "ID: %s\n", export.Playlist.ID)
	}
	if meta.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", meta.Description)
	}
	fmt.Fprintf(&buf, "Visibility: %s\n", meta.Visibility)
	fmt.Fprintf(&buf, "Videos: %d\n\n", len(export.VideoIDs))

	for i, id := range export.VideoIDs {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, id)
	}

	return buf.Bytes(), nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// ToMetadataJSON generates a JSON representation of playlist metadata (without video ids)
func ToMetadataJSON(playlist models.Playlist) ([]byte, error) {
	return shared.MarshalJSON(playlist, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	VideosFile   string
	MetadataFile string
}

// WriteCSVExport exports a playlist to CSV format with accompanying metadata JSON file.
//
// Defaults to playlist ID as the base filename & creates {base}_videos.csv and {base}_metadata.json
func WriteCSVExport(export *models.PlaylistExport, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = export.Playlist.ID
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	videosFile := baseFilepath + "_videos.csv"
	if err := shared.WriteFileAtomic(videosFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(export.Playlist)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := shared.WriteFileAtomic(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		VideosFile:   videosFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport exports a playlist to Markdown format in a dedicated directory.
//
// Directory name defaults to the playlist ID.
// When the playlist has a thumbnail it is downloaded as cover.jpg; download failures only produce a warning.
// Creates a directory structure: {dir}/README.md and optionally {dir}/cover.jpg
func WriteMarkdownExport(export *models.PlaylistExport, outputDir string, warn io.Writer) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = export.Playlist.ID
	}
	if warn == nil {
		warn = os.Stderr
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create directory: %v", shared.ErrIO, err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if thumb, ok := export.Playlist.Metadata.BestThumbnail(); ok {
		imageData, err := DownloadImage(thumb.URL)
		if err != nil {
			fmt.Fprintf(warn, "Warning: failed to download cover image: %v\n", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := filepath.Join(outputDir, coverImageFilename)
			if err := shared.WriteFileAtomic(coverImagePath, imageData, 0644); err != nil {
				fmt.Fprintf(warn, "Warning: failed to save cover image: %v\n", err)
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(export, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := shared.WriteFileAtomic(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport exports a playlist to plain text format.
//
// Defaults to {playlist.ID}_videos.txt as the filename.
func WriteTextExport(export *models.PlaylistExport, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s_videos.txt", export.Playlist.ID)
	}

	textData, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := shared.WriteFileAtomic(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

// WriteExport writes export to path in format and returns the files created.
//
// Markdown treats path as a directory, CSV as a base name, text and JSON as a file name.
func WriteExport(export *models.PlaylistExport, format Format, path string) ([]string, error) {
	switch format {
	case FormatMarkdown:
		res, err := WriteMarkdownExport(export, path, nil)
		if err != nil {
			return nil, err
		}
		return res.Files, nil
	case FormatCSV:
		res, err := WriteCSVExport(export, strings.TrimSuffix(path, ".csv"))
		if err != nil {
			return nil, err
		}
		return []string{res.VideosFile, res.MetadataFile}, nil
	case FormatJSON:
		if path == "" {
			path = export.Playlist.ID + ".json"
		}
		data, err := shared.MarshalJSON(export, true)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal JSON: %w", err)
		}
		if err := shared.WriteFileAtomic(path, data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write JSON file: %w", err)
		}
		return []string{path}, nil
	default:
		file, err := WriteTextExport(export, path)
		if err != nil {
			return nil, err
		}
		return []string{file}, nil
	}
}
