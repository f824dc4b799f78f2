package ui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/plcopy/internal/models"
	"github.com/desertthunder/plcopy/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	VideoListView
	ConfirmView
	CopyView
	ResultView
)

// Browser lists the account's playlists and previews a playlist's videos.
type Browser interface {
	ListMine(ctx context.Context) ([]models.Playlist, error)
	Export(ctx context.Context, playlistID string, order models.Order) (*models.PlaylistExport, error)
}

// Options preselects what the TUI copies.
type Options struct {
	SourceID string            // Skip the playlist picker when set
	Copy     tasks.CopyOptions // Initial order and privacy, editable in the confirm view
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	browser      Browser
	engine       *tasks.CopyEngine
	opts         Options
	width        int
	height       int
	loading      bool
	playlistList list.Model
	listReady    bool
	playlists    []models.Playlist
	videoList    list.Model
	export       *models.PlaylistExport // fetched in ascending order
	progressChan chan tasks.ProgressUpdate
	done         chan copyComplete
	progress     tasks.ProgressUpdate
	percent      float64
	result       *tasks.CopyResult
	err          error
	bar          progress.Model
	spinner      spinner.Model
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, browser Browser, engine *tasks.CopyEngine, opts Options) *Model {
	return &Model{
		ctx:     ctx,
		view:    PlaylistListView,
		browser: browser,
		engine:  engine,
		opts:    opts,
		loading: true,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.title.UnsetMarginBottom())),
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init fetches the playlist picker contents, or the preselected playlist's videos.
func (m *Model) Init() tea.Cmd {
	if m.opts.SourceID != "" {
		return tea.Batch(m.spinner.Tick, m.fetchVideos(m.opts.SourceID))
	}
	return tea.Batch(m.spinner.Tick, m.fetchPlaylists())
}

// Outcome returns the copy result once [ResultView] was reached.
func (m *Model) Outcome() (*tasks.CopyResult, error) {
	return m.result, m.err
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.listReady {
			m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.export != nil {
			m.videoList.SetSize(msg.Width-4, msg.Height-8)
		}
		if w := msg.Width - 8; w > 10 && w < 80 {
			m.bar.Width = w
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case VideoListView:
			return m.handleVideoListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case CopyView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPlaylistsFetched:
		data := msg.data.(playlistsFetched)
		m.loading = false
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.playlists = data.playlists
		items := make([]list.Item, len(data.playlists))
		for i, pl := range data.playlists {
			items[i] = playlistItem{playlist: pl}
		}
		m.playlistList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.playlistList.Title = "Your Playlists"
		m.playlistList.SetSize(m.width-4, m.height-8)
		m.listReady = true
		return m, nil

	case MsgVideosFetched:
		data := msg.data.(videosFetched)
		m.loading = false
		if data.err != nil {
			m.err = data.err
			m.view = PlaylistListView
			return m, nil
		}
		m.export = data.export
		m.rebuildVideoList()
		m.view = VideoListView
		return m, nil

	case MsgProgressUpdate:
		update := msg.data.(tasks.ProgressUpdate)
		m.progress = update
		if update.Total > 0 {
			m.percent = float64(update.Step) / float64(update.Total)
		}
		return m, waitForProgress(m.progressChan, m.done)

	case MsgCopyComplete:
		data := msg.data.(copyComplete)
		m.result = data.result
		m.err = data.err
		m.view = ResultView
		m.progressChan = nil
		m.done = nil
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(fmt.Sprintf("Error: %v", m.err)), helpView)
	}

	if m.loading {
		return fmt.Sprintf("%s Loading...", m.spinner.View())
	}

	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case VideoListView:
		return m.renderVideoList()
	case ConfirmView:
		return m.renderConfirm()
	case CopyView:
		return m.renderCopy()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.listReady {
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.back) && !m.loading:
			m.err = nil
			m.loading = true
			return m, m.fetchPlaylists()
		}
		return m, nil
	}

	if m.playlistList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.playlistList, cmd = m.playlistList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.err = nil
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if pl, ok := m.playlistList.SelectedItem().(playlistItem); ok {
			m.loading = true
			return m, m.fetchVideos(pl.playlist.ID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleVideoListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.videoList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.videoList, cmd = m.videoList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = PlaylistListView
		if !m.listReady {
			m.loading = true
			return m, m.fetchPlaylists()
		}
		return m, nil
	case key.Matches(msg, m.keys.order):
		m.toggleOrder()
		return m, nil
	case key.Matches(msg, m.keys.enter):
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.videoList, cmd = m.videoList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back):
		m.view = VideoListView
	case key.Matches(msg, m.keys.order):
		m.toggleOrder()
	case key.Matches(msg, m.keys.privacy):
		m.opts.Copy.Privacy = (m.opts.Copy.Privacy + 1) % (tasks.PrivacySource + 1)
	case key.Matches(msg, m.keys.yes):
		m.view = CopyView
		return m, m.startCopy()
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.view = PlaylistListView
		m.export = nil
		m.result = nil
		m.err = nil
		m.progress = tasks.ProgressUpdate{}
		m.percent = 0
		if !m.listReady {
			m.loading = true
			return m, m.fetchPlaylists()
		}
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.view == PlaylistListView && m.listReady:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case m.view == VideoListView && m.export != nil:
		m.videoList, cmd = m.videoList.Update(msg)
	}
	return m, cmd
}

func (m *Model) toggleOrder() {
	if m.opts.Copy.Order == models.Ascending {
		m.opts.Copy.Order = models.Descending
	} else {
		m.opts.Copy.Order = models.Ascending
	}
	m.rebuildVideoList()
}

// orderedIDs applies the selected order to the ascending export.
func (m *Model) orderedIDs() []string {
	if m.export == nil {
		return nil
	}
	ids := slices.Clone(m.export.VideoIDs)
	if m.opts.Copy.Order == models.Descending {
		slices.Reverse(ids)
	}
	return ids
}

func (m *Model) rebuildVideoList() {
	ids := m.orderedIDs()
	items := make([]list.Item, len(ids))
	for i, id := range ids {
		items[i] = videoItem{position: i + 1, videoID: id}
	}
	m.videoList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.videoList.Title = fmt.Sprintf("Videos in '%s' (%s)", m.export.Playlist.Metadata.Title, m.opts.Copy.Order)
	m.videoList.SetSize(m.width-4, m.height-8)
}

func (m *Model) fetchPlaylists() tea.Cmd {
	ctx, browser := m.ctx, m.browser
	return func() tea.Msg {
		playlists, err := browser.ListMine(ctx)
		return playlistsFetchedMsg(playlists, err)
	}
}

func (m *Model) fetchVideos(playlistID string) tea.Cmd {
	ctx, browser := m.ctx, m.browser
	return func() tea.Msg {
		export, err := browser.Export(ctx, playlistID, models.Ascending)
		return videosFetchedMsg(export, err)
	}
}

func (m *Model) startCopy() tea.Cmd {
	ch := make(chan tasks.ProgressUpdate, 64)
	done := make(chan copyComplete, 1)
	m.progressChan, m.done = ch, done
	m.percent = 0

	ctx, engine, sourceID, opts := m.ctx, m.engine, m.export.Playlist.ID, m.opts.Copy
	go func() {
		result, err := engine.Copy(ctx, sourceID, opts, ch)
		done <- copyComplete{result: result, err: err}
		close(ch)
	}()

	return waitForProgress(ch, done)
}

// waitForProgress yields the next update, or the final result once the channel is closed.
func waitForProgress(ch <-chan tasks.ProgressUpdate, done <-chan copyComplete) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-ch
		if !ok {
			out := <-done
			return copyCompleteMsg(out.result, out.err)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderPlaylistList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), helpView)
}

func (m *Model) renderVideoList() string {
	copyKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "copy"))
	helpKeys := []key.Binding{copyKey, m.keys.order, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.videoList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	meta := m.export.Playlist.Metadata
	title := styles.title.Render(fmt.Sprintf("Copy '%s' into a new playlist?", meta.Title))

	var b strings.Builder
	row := func(k, v string) { fmt.Fprintf(&b, "%s%s\n", styles.label.Render(k), v) }
	row("Source", m.export.Playlist.ID)
	row("Videos", fmt.Sprintf("%d", len(m.export.VideoIDs)))
	row("Order", m.opts.Copy.Order.String())
	row("Privacy", m.opts.Copy.Privacy.String())
	if m.opts.Copy.CleanupOnFailure {
		row("On failure", "delete partial playlist")
	}
	if m.opts.Copy.DryRun {
		b.WriteString(styles.warn.Render("Dry run: nothing will be created") + "\n")
	}

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.order, m.keys.privacy, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, b.String(), helpView)
}

func (m *Model) renderCopy() string {
	title := styles.title.Render("Copying Playlist")

	var phase string
	switch m.progress.State {
	case tasks.Start:
		phase = "Fetching source playlist..."
	case tasks.MetadataFetched:
		phase = "Creating destination playlist..."
	case tasks.DestinationCreated:
		phase = "Enumerating videos..."
	case tasks.ItemsEnumerated, tasks.Appending:
		phase = fmt.Sprintf("Appending videos (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.CleaningUp:
		phase = "Cleaning up..."
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s %s\n\n%s\n\n%s",
		title,
		m.spinner.View(), phase,
		m.bar.ViewAs(m.percent),
		styles.help.Render(m.progress.Message),
	)
}

func (m *Model) renderResult() string {
	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	if m.result == nil {
		msg := "No result available"
		if m.err != nil {
			msg = fmt.Sprintf("Copy failed: %v", m.err)
		}
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(msg), helpView)
	}

	var b strings.Builder
	row := func(k, v string) { fmt.Fprintf(&b, "%s%s\n", styles.label.Render(k), v) }

	var title string
	switch {
	case m.err != nil:
		title = styles.err.Render(fmt.Sprintf("✗ Copy failed during %s", m.result.FailedAt))
	case m.result.DestinationID == "":
		title = styles.ok.Render("✓ Dry run complete")
	default:
		title = styles.ok.Render("✓ Copy Complete!")
	}

	row("Source", m.result.SourceID)
	if m.result.DestinationID != "" {
		row("Destination", m.result.DestinationID)
	}
	row("Videos", fmt.Sprintf("%d/%d", m.result.Appended(), len(m.result.VideoIDs)))
	if m.result.CleanedUp {
		row("Cleanup", "partial playlist deleted")
	}
	if m.err != nil {
		b.WriteString("\n" + styles.warn.Render(m.err.Error()) + "\n")
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, b.String(), helpView)
}
