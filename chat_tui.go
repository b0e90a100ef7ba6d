package main

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	markdown "github.com/vlanse/go-term-markdown"

	"github.com/lumen-ai/lumen/chat"
)

const textinputPlaceholder = "Type a message..."

type chatTuiState struct {
	app       *chat.App
	sessionID string

	imageMode   bool
	webSearch   bool
	aspectRatio string
	imageModel  string

	spin           bool
	spinner        spinner.Model
	viewport       viewport.Model
	textarea       textarea.Model
	renderMarkdown bool
	viewportWidth  int

	inPicker bool
	picker   list.Model
}

type sessionItem struct {
	title, desc, id string
}

func (i sessionItem) Title() string       { return i.title }
func (i sessionItem) Description() string { return i.desc }
func (i sessionItem) FilterValue() string { return i.title + " " + i.desc }

type turnDoneMsg struct{}

func initialChatState(app *chat.App, cfg *Config) chatTuiState {
	ta := textarea.New()
	ta.Placeholder = textinputPlaceholder
	ta.Focus()

	ta.Prompt = "┃ "
	ta.CharLimit = 100000
	ta.MaxHeight = 32
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)

	vp := viewport.New(32, 12)
	vp.MouseWheelEnabled = true

	sp := spinner.New()

	picker := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	picker.Title = "Sessions"
	picker.SetShowHelp(false)

	s := chatTuiState{
		app:            app,
		sessionID:      app.Sessions()[0].ID,
		aspectRatio:    cfg.aspectRatio(),
		imageModel:     cfg.imageModel(),
		spinner:        sp,
		textarea:       ta,
		viewport:       vp,
		renderMarkdown: true,
		viewportWidth:  80,
		picker:         picker,
	}
	s.refreshViewport("")
	return s
}

func (m chatTuiState) Init() tea.Cmd {
	return tea.Batch(textarea.Blink)
}

func (m *chatTuiState) session() *chat.Session {
	s, ok := m.app.Session(m.sessionID)
	if !ok {
		s = m.app.Sessions()[0]
		m.sessionID = s.ID
	}
	return s
}

func (m *chatTuiState) refreshViewport(suffix string) {
	s := m.session()
	if len(s.Messages) == 0 {
		m.viewport.SetContent("<chat history is empty>")
		return
	}
	m.viewport.SetContent(formatMessageLog(s.Messages, m.renderMarkdown, m.viewportWidth, suffix))
	m.viewport.GotoBottom()
}

func (m chatTuiState) sendMsg(usermsg string) (tea.Model, tea.Cmd) {
	send := chat.Send{
		Text:        usermsg,
		ImageMode:   m.imageMode,
		AspectRatio: m.aspectRatio,
		ImageModel:  m.imageModel,
		WebSearch:   m.webSearch,
	}

	m.spin = true
	m.spinner.Spinner = spinner.Pulse
	m.spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("171"))

	m.textarea.Reset()
	m.textarea.Placeholder = textinputPlaceholder
	m.textarea.Focus()

	app, sessionID := m.app, m.sessionID
	dispatchCmd := func() tea.Msg {
		app.SendMessage(context.Background(), sessionID, send)
		return turnDoneMsg{}
	}
	return m, tea.Batch(m.spinner.Tick, dispatchCmd)
}

func (m chatTuiState) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)

	if m.inPicker {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			if msg.Type == tea.KeyEsc || msg.Type == tea.KeyCtrlC {
				m.inPicker = false
				return m, nil
			}
			if msg.Type == tea.KeyEnter {
				if selected := m.picker.SelectedItem(); selected != nil {
					m.sessionID = selected.(sessionItem).id
					m.refreshViewport("")
				}
				m.inPicker = false
				return m, nil
			}
		case tea.WindowSizeMsg:
			m.picker.SetSize(msg.Width, msg.Height)
		}
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch msg.Type {

		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyCtrlH: // session picker
			if m.spin {
				return m, nil
			}
			items := []list.Item{}
			for _, s := range m.app.Sessions() {
				items = append(items, sessionItem{
					title: fmt.Sprintf("%s (%s)", s.Title, s.Model),
					desc:  s.UpdatedAt.Format("01/02 15:04"),
					id:    s.ID,
				})
			}
			m.picker.SetItems(items)
			m.picker.SetSize(m.viewportWidth+2, m.viewport.Height+m.textarea.Height())
			m.inPicker = true
			return m, nil

		case tea.KeyCtrlN:
			if m.spin {
				return m, nil
			}
			s := m.app.NewSession()
			m.sessionID = s.ID
			m.textarea.Reset()
			m.textarea.Focus()
			m.refreshViewport("")
			return m, nil

		case tea.KeyCtrlX:
			if m.spin {
				return m, nil
			}
			m.app.DeleteSession(m.sessionID)
			m.sessionID = m.app.Sessions()[0].ID
			m.refreshViewport("")
			return m, nil

		case tea.KeyCtrlG:
			m.imageMode = !m.imageMode
			if m.imageMode {
				m.textarea.Placeholder = "Describe an image..."
			} else {
				m.textarea.Placeholder = textinputPlaceholder
			}
			return m, nil

		case tea.KeyCtrlW:
			m.webSearch = !m.webSearch
			return m, nil

		case tea.KeyCtrlS:
			if m.spin {
				return m, nil
			}
			if s := m.session(); len(s.Messages) > 0 {
				clipboard.WriteAll(formatMessageLog(s.Messages, false, 0, ""))
			}
			return m, nil

		case tea.KeyCtrlE:
			if m.spin {
				return m, nil
			}
			if s := m.session(); len(s.Messages) > 0 {
				clipboard.WriteAll(s.Messages[len(s.Messages)-1].Content)
			}
			return m, nil

		case tea.KeyEnter:
			if msg.Alt {
				m.textarea.SetValue(m.textarea.Value() + "\n")
			} else {
				usermsg := m.textarea.Value()
				if len(strings.Trim(usermsg, " \r\t\n")) == 0 {
					return m, nil
				}
				if m.spin {
					// One turn in flight per session.
					return m, nil
				}
				ret, cmds := m.sendMsg(usermsg)
				return ret, tea.Batch(tiCmd, vpCmd, spCmd, cmds)
			}
		}

	case tea.WindowSizeMsg:
		m.textarea.SetWidth(msg.Width - 2)
		m.viewport.Width = msg.Width - 2
		m.viewportWidth = msg.Width - 2
		m.viewport.Height = msg.Height - 1 - m.textarea.Height()
		if !m.spin {
			// Mid-turn the log is refreshed by turnDoneMsg instead.
			m.refreshViewport("")
		}

	case turnDoneMsg:
		m.spin = false
		m.refreshViewport("")
		return m, tea.Batch(tiCmd, vpCmd)
	}

	if m.spin {
		m.spinner, spCmd = m.spinner.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, spCmd)
	}

	return m, tea.Batch(tiCmd, vpCmd)
}

func (m chatTuiState) View() string {
	if m.inPicker {
		return m.picker.View()
	}

	status := ""
	if m.imageMode {
		status += " [image]"
	}
	if m.webSearch {
		status += " [web]"
	}
	if m.spin {
		status += " " + m.spinner.View()
	}

	return fmt.Sprintf("%s\n%s%s\n", m.viewport.View(), m.textarea.View(), status)
}

var markdownCache = struct {
	sync.Mutex
	cache map[string]string
}{cache: make(map[string]string)}

func formatMessageLog(msgs []chat.Message, renderMarkdown bool, lineWidth int, suffix string) string {
	var ret strings.Builder

	for i, msg := range msgs {
		content := strings.TrimRight(msg.Content, " \t\r\n")

		if msg.Kind == chat.KindImage {
			content = fmt.Sprintf("[generated image, %s]\n%s", msg.AspectRatio, msg.Content)
		} else if pack, ok := ParseSeoPack(content); ok {
			content = pack.Render()
		}

		if renderMarkdown {
			content = renderCached(content, lineWidth)
		}
		content = strings.TrimRight(content, " \t\r\n")

		sfx := ""
		if i == len(msgs)-1 && len(suffix) > 0 {
			sfx = suffix
		}

		fmt.Fprintf(&ret, "### %s:\n%s%s\n\n", strings.ToUpper(msg.Role), content, sfx)
	}

	return ret.String()
}

func renderCached(content string, lineWidth int) string {
	key := fmt.Sprintf("%s__%d", content, lineWidth)
	markdownCache.Lock()
	defer markdownCache.Unlock()
	if cached, ok := markdownCache.cache[key]; ok {
		return cached
	}
	rendered := string(markdown.Render(content, lineWidth, 0))
	markdownCache.cache[key] = rendered
	return rendered
}

func runChatTUI(app *chat.App, cfg *Config) error {
	p := tea.NewProgram(initialChatState(app, cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
