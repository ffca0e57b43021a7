package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"supportbot/internal/domain"
	"supportbot/internal/service"
)

// ChatPort is the TUI-facing subset of the support service.
type ChatPort interface {
	Chat(ctx context.Context, sessionID, message string, history []domain.Turn) (domain.Reply, error)
	Clear(ctx context.Context, sessionID string) error
	Overview() string
	Metrics(ctx context.Context, sessionID string) (service.MetricsView, error)
}

type replyMsg struct {
	query string
	reply domain.Reply
	err   error
}

type infoMsg struct {
	text string
	err  error
}

type clearedMsg struct{ err error }

// Model is the Bubble Tea model for the terminal chat client.
type Model struct {
	service    ChatPort
	sessionID  string
	maxHistory int
	input      textinput.Model
	viewport   viewport.Model
	history    []domain.Turn
	info       string
	status     string
	waiting    bool
	ready      bool
}

// New creates a chat model bound to one session.
func New(service ChatPort, sessionID string, maxHistory int) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask me anything about Thoughtful AI..."
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		service:    service,
		sessionID:  sessionID,
		maxHistory: maxHistory,
		input:      ti,
		viewport:   vp,
		status:     "enter send · ctrl+o agents · ctrl+t metrics · ctrl+l clear · ctrl+c quit",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and reply events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		tw, th := transcriptBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 2 + 1 + ih + 1 // header, status, spacer
		m.viewport.Width = max(20, msg.Width-tw)
		m.viewport.Height = max(3, msg.Height-reserved-th)
		m.refresh()
		return m, nil

	case replyMsg:
		m.waiting = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.history = append(m.history,
			domain.Turn{Role: domain.RoleUser, Content: msg.query},
			domain.Turn{Role: domain.RoleAssistant, Content: msg.reply.Text},
		)
		m.history = trim(m.history, m.maxHistory)
		m.status = fmt.Sprintf("source=%s intent=%s", msg.reply.Source, msg.reply.Intent)
		m.refresh()
		return m, nil

	case infoMsg:
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.info = msg.text
		m.refresh()
		return m, nil

	case clearedMsg:
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.history, m.info = nil, ""
		m.status = "Conversation cleared."
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD:
			return m, tea.Quit
		case tea.KeyCtrlL:
			return m, m.clear()
		case tea.KeyCtrlO:
			return m, m.overview()
		case tea.KeyCtrlT:
			return m, m.metrics()
		case tea.KeyEnter:
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.waiting {
				return m, nil
			}
			m.input.Reset()
			m.waiting = true
			m.status = "Thinking..."
			return m, m.send(q)
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the transcript, input box and status line.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("Thoughtful AI Support")
	sub := mutedStyle.Render("session " + m.sessionID)
	transcript := transcriptBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + sub + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) send(query string) tea.Cmd {
	history := append([]domain.Turn(nil), m.history...)
	return func() tea.Msg {
		reply, err := m.service.Chat(context.Background(), m.sessionID, query, history)
		return replyMsg{query: query, reply: reply, err: err}
	}
}

func (m Model) clear() tea.Cmd {
	return func() tea.Msg {
		return clearedMsg{err: m.service.Clear(context.Background(), m.sessionID)}
	}
}

func (m Model) overview() tea.Cmd {
	return func() tea.Msg {
		return infoMsg{text: m.service.Overview()}
	}
}

func (m Model) metrics() tea.Cmd {
	return func() tea.Msg {
		view, err := m.service.Metrics(context.Background(), m.sessionID)
		return infoMsg{text: view.Markdown(), err: err}
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) renderTranscript() string {
	if len(m.history) == 0 && m.info == "" {
		return mutedStyle.Render("Ask about EVA, CAM, PHIL, DANA, pricing, demos or integrations.")
	}
	var b strings.Builder
	for _, t := range m.history {
		if t.Role == domain.RoleUser {
			b.WriteString(userStyle.Render("You: ") + t.Content + "\n\n")
			continue
		}
		b.WriteString(botStyle.Render("Bot: ") + t.Content + "\n\n")
	}
	if m.info != "" {
		b.WriteString(infoStyle.Render(m.info))
	}
	return strings.TrimRight(b.String(), "\n")
}

// trim keeps the last n exchanges.
func trim(h []domain.Turn, n int) []domain.Turn {
	if n > 0 && len(h) > 2*n {
		return h[len(h)-2*n:]
	}
	return h
}

var (
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	headerStyle        = lipgloss.NewStyle().Bold(true)
	mutedStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	userStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	botStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	infoStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)
