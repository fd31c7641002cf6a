package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/moodlist/internal/models"
	"github.com/desertthunder/moodlist/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	DraftListView ViewState = iota
	TrackListView
	ConfirmView
	PublishView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx           context.Context
	view          ViewState
	engine        *tasks.GeneratorEngine
	user          *models.User
	width         int
	height        int
	draftList     list.Model
	drafts        []*models.Draft
	trackList     list.Model
	selectedDraft *models.Draft
	result        *models.PublishedPlaylist
	err           error
	help          help.Model
	keys          keyMap
}

// keyMap defines the key bindings for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	enter   key.Binding
	back    key.Binding
	yes     key.Binding
	no      key.Binding
	remove  key.Binding
	restart key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		yes:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "no")),
		remove:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove track")),
		restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "back to drafts")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.back, k.yes, k.no},
		{k.remove, k.restart, k.quit},
	}
}

// draftItem wraps [models.Draft] to implement list.Item.
type draftItem struct {
	draft *models.Draft
}

func (i draftItem) FilterValue() string { return i.draft.Mood() }
func (i draftItem) Title() string {
	return fmt.Sprintf("%s (%d tracks)", tasks.PlaylistName(i.draft.Mood()), len(i.draft.Tracks()))
}
func (i draftItem) Description() string {
	return strings.Join(i.draft.Genres(), ", ")
}

// trackItem wraps [models.Track] to implement list.Item.
type trackItem struct {
	track models.Track
}

func (i trackItem) FilterValue() string { return i.track.Name }
func (i trackItem) Title() string       { return i.track.Name }
func (i trackItem) Description() string { return i.track.Artists }

type draftsFetchedMsg struct {
	drafts []*models.Draft
	err    error
}

type draftUpdatedMsg struct {
	draft *models.Draft
	err   error
}

type publishCompleteMsg struct {
	result *models.PublishedPlaylist
	err    error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, engine *tasks.GeneratorEngine, user *models.User) *Model {
	return &Model{
		ctx:    ctx,
		view:   DraftListView,
		engine: engine,
		user:   user,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init initializes the TUI by fetching the user's drafts.
func (m *Model) Init() tea.Cmd {
	return m.fetchDrafts()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.draftList.Width() == 0 {
			m.draftList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.trackList.Width() == 0 {
			m.trackList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case DraftListView:
			return m.handleDraftListKeys(msg)
		case TrackListView:
			return m.handleTrackListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case draftsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.drafts = msg.drafts
		items := make([]list.Item, len(msg.drafts))
		for i, draft := range msg.drafts {
			items[i] = draftItem{draft: draft}
		}
		m.draftList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.draftList.Title = "Pending Drafts"
		m.draftList.SetSize(m.width-4, m.height-8)
		m.view = DraftListView
		return m, nil

	case draftUpdatedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.selectedDraft = msg.draft
		m.setTrackList(msg.draft)
		return m, nil

	case publishCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case DraftListView:
		return m.renderDraftList()
	case TrackListView:
		return m.renderTrackList()
	case ConfirmView:
		return m.renderConfirm()
	case PublishView:
		return m.renderPublish()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleDraftListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		selected := m.draftList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(draftItem); ok {
				m.selectedDraft = item.draft
				m.setTrackList(item.draft)
				m.view = TrackListView
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.draftList, cmd = m.draftList.Update(msg)
	return m, cmd
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = DraftListView
		return m, m.fetchDrafts()
	case "x":
		selected := m.trackList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(trackItem); ok {
				return m, m.removeTrack(item.track.ID)
			}
		}
		return m, nil
	case "enter":
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n":
		m.view = TrackListView
		return m, nil
	case "y":
		m.view = PublishView
		return m, m.publish()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = DraftListView
		m.selectedDraft = nil
		m.result = nil
		m.err = nil
		return m, m.fetchDrafts()
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case DraftListView:
		m.draftList, cmd = m.draftList.Update(msg)
	case TrackListView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) setTrackList(draft *models.Draft) {
	items := make([]list.Item, len(draft.Tracks()))
	for i, track := range draft.Tracks() {
		items[i] = trackItem{track: track}
	}
	m.trackList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.trackList.Title = fmt.Sprintf("Tracks in '%s'", tasks.PlaylistName(draft.Mood()))
	m.trackList.SetSize(m.width-4, m.height-8)
}

func (m *Model) fetchDrafts() tea.Cmd {
	return func() tea.Msg {
		drafts, err := m.engine.ListDrafts(m.user)
		return draftsFetchedMsg{drafts: drafts, err: err}
	}
}

func (m *Model) removeTrack(trackID string) tea.Cmd {
	return func() tea.Msg {
		draft, err := m.engine.RemoveTrack(m.user, m.selectedDraft.ID(), trackID)
		return draftUpdatedMsg{draft: draft, err: err}
	}
}

func (m *Model) publish() tea.Cmd {
	return func() tea.Msg {
		record, err := m.engine.Publish(m.ctx, m.user, m.selectedDraft.ID())
		return publishCompleteMsg{result: record, err: err}
	}
}

func (m *Model) renderDraftList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.draftList.View(), helpView)
}

func (m *Model) renderTrackList() string {
	publishKey := key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "publish"),
	)
	helpKeys := []key.Binding{publishKey, m.keys.remove, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.trackList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	name := tasks.PlaylistName(m.selectedDraft.Mood())
	title := styles.title.Render(fmt.Sprintf("Publish '%s' to Spotify?", name))
	info := fmt.Sprintf("\nMood: %s\nGenres: %s\nTracks: %d\n",
		m.selectedDraft.Mood(),
		strings.Join(m.selectedDraft.Genres(), ", "),
		len(m.selectedDraft.Tracks()),
	)

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderPublish() string {
	title := styles.title.Render("Publishing Playlist")
	return fmt.Sprintf("%s\n\nCreating playlist on Spotify...", title)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Publish failed: %v\n\nPress r to go back, q to quit", m.err))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress r to go back, q to quit")
	}

	title := styles.ok.Render("✓ Playlist Published!")
	info := fmt.Sprintf(
		"\nName: %s\nSpotify ID: %s\nTracks: %d",
		m.result.Name(),
		m.result.SpotifyPlaylistID(),
		len(m.result.Tracks()),
	)

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}
