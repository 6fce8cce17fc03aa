package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/femiolat/blastr/internal/models"
	"github.com/femiolat/blastr/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ContactListView ViewState = iota
	ComposeView
	ConfirmView
	SendView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       tasks.Engine
	sheetPath    string
	session      *tasks.Session
	width        int
	height       int
	contactList  list.Model
	compose      textarea.Model
	personalize  bool
	sendAll      bool
	progressBar  progress.Model
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	result       *tasks.SendResult
	err          error
	help         help.Model
	keys         keyMap
}

type previewLoadedMsg struct {
	session *tasks.Session
	err     error
}

type progressUpdateMsg tasks.ProgressUpdate

type sendCompleteMsg struct {
	result *tasks.SendResult
	err    error
}

// NewModel creates a new TUI model. The spreadsheet at sheetPath is uploaded
// on Init.
func NewModel(ctx context.Context, engine tasks.Engine, sheetPath string) *Model {
	ta := textarea.New()
	ta.Placeholder = "Type your message. Use {name} for the recipient's first name."
	ta.CharLimit = 0

	return &Model{
		ctx:         ctx,
		view:        ContactListView,
		engine:      engine,
		sheetPath:   sheetPath,
		compose:     ta,
		progressBar: progress.New(progress.WithDefaultGradient()),
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// Init uploads the spreadsheet and loads the preview.
func (m *Model) Init() tea.Cmd {
	return m.uploadSheet()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.contactList.Width() == 0 {
			m.contactList.SetSize(msg.Width-4, msg.Height-8)
		}
		m.compose.SetWidth(msg.Width - 4)
		m.progressBar.Width = msg.Width - 8
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ContactListView:
			return m.handleContactListKeys(msg)
		case ComposeView:
			return m.handleComposeKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case previewLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.session = msg.session
		items := make([]list.Item, msg.session.Count())
		for i, contact := range msg.session.Rows() {
			items[i] = contactItem{contact: contact, session: msg.session}
		}
		m.contactList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.contactList.Title = fmt.Sprintf("Contacts (%d)", msg.session.Count())
		m.contactList.SetSize(m.width-4, m.height-8)
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case sendCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	return m.updateSubmodels(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case ContactListView:
		return m.renderContactList()
	case ComposeView:
		return m.renderCompose()
	case ConfirmView:
		return m.renderConfirm()
	case SendView:
		return m.renderSend()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleContactListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.session == nil {
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	}

	// Let list filtering consume keys while active.
	if m.contactList.FilterState() != list.Filtering {
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if item, ok := m.contactList.SelectedItem().(contactItem); ok {
				m.session.Toggle(item.contact.ID)
			}
			return m, nil
		case "a":
			m.session.SelectAll()
			return m, nil
		case "n":
			m.session.DeselectAll()
			return m, nil
		case "enter":
			m.view = ComposeView
			m.compose.Focus()
			return m, textarea.Blink
		}
	}

	var cmd tea.Cmd
	m.contactList, cmd = m.contactList.Update(msg)
	return m, cmd
}

func (m *Model) handleComposeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.compose.Blur()
		m.view = ContactListView
		return m, nil
	case "ctrl+p":
		m.personalize = !m.personalize
		return m, nil
	case "ctrl+s":
		if m.session == nil || len(m.compose.Value()) == 0 {
			return m, nil
		}
		m.sendAll = m.session.SelectedCount() == 0
		m.compose.Blur()
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.compose, cmd = m.compose.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "n", "esc":
		m.view = ComposeView
		m.compose.Focus()
		return m, textarea.Blink
	case "y":
		m.view = SendView
		return m, m.startSend()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "enter":
		return m, tea.Quit
	case "r":
		m.view = ContactListView
		m.result = nil
		m.err = nil
		m.sendAll = false
		return m, nil
	}
	return m, nil
}

func (m *Model) updateSubmodels(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ContactListView:
		if m.session != nil {
			m.contactList, cmd = m.contactList.Update(msg)
		}
	case ComposeView:
		m.compose, cmd = m.compose.Update(msg)
	}
	return m, cmd
}

func (m *Model) uploadSheet() tea.Cmd {
	return func() tea.Msg {
		session, err := m.engine.Upload(m.ctx, m.sheetPath, nil)
		return previewLoadedMsg{session: session, err: err}
	}
}

func (m *Model) startSend() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	progressChan := m.progressChan

	opts := tasks.SendOpts{
		Message:     m.compose.Value(),
		Personalize: m.personalize,
		All:         m.sendAll,
	}

	go func() {
		result, err := m.engine.Send(m.ctx, opts, progressChan)
		m.result = result
		m.err = err
		close(progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return sendCompleteMsg{result: m.result, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return sendCompleteMsg{result: m.result, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderContactList() string {
	if m.session == nil {
		return fmt.Sprintf("Uploading %s...", m.sheetPath)
	}

	status := fmt.Sprintf("%d of %d selected", m.session.SelectedCount(), m.session.Count())
	helpKeys := []key.Binding{m.keys.toggle, m.keys.all, m.keys.none, m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n%s\n\n%s", m.contactList.View(), styles.help.Render(status), helpView)
}

func (m *Model) renderCompose() string {
	title := styles.title.Render("Compose Message")

	persona := "off"
	if m.personalize {
		persona = "on"
	}
	info := styles.help.Render(fmt.Sprintf("personalization: %s", persona))

	helpKeys := []key.Binding{m.keys.send, m.keys.persona, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s\n\n%s", title, m.compose.View(), info, helpView)
}

func (m *Model) renderConfirm() string {
	count := m.session.SelectedCount()
	var title string
	if m.sendAll {
		title = styles.warn.Render(fmt.Sprintf("No contacts selected. Send to all %d?", m.session.Count()))
		count = m.session.Count()
	} else {
		title = styles.title.Render(fmt.Sprintf("Send to %d selected contacts?", count))
	}

	info := fmt.Sprintf("\nRecipients: %d\nPersonalize: %v\n\n%s\n", count, m.personalize, m.compose.Value())

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderSend() string {
	title := styles.title.Render("Sending")

	var bar string
	var detail string
	if snapshot, ok := m.progress.Data.(models.Progress); ok {
		bar = m.progressBar.ViewAs(float64(snapshot.Percent) / 100)
		detail = fmt.Sprintf("%d sent, %d failed of %d", snapshot.Sent, snapshot.Failed, snapshot.Total)
	} else {
		bar = m.progressBar.ViewAs(0)
		detail = m.progress.Message
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, bar, detail)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Send failed: %v\n\nPress r to start over, q to quit", m.err))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress r to start over, q to quit")
	}

	title := styles.ok.Render("✓ Send Complete!")
	info := fmt.Sprintf(
		"\nJob: %s\nRecipients: %d\nSent: %d\nFailed: %d\nStatus: %s",
		m.result.SendJobID,
		m.result.Targets,
		m.result.Final.Sent,
		m.result.Final.Failed,
		m.result.Final.Status,
	)

	var warn string
	if m.result.Final.Failed > 0 {
		warn = "\n\n" + styles.warn.Render(fmt.Sprintf("%d messages were not delivered", m.result.Final.Failed))
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, warn, helpView)
}
