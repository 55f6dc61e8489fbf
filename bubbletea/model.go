package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/memorial"
)

var _ tea.Model = Model{}

// Model is the Bubble Tea model for the court TUI.
type Model struct {
	// Input is the edict input line. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable transcript. Exported for test access.
	Viewport viewport.Model

	store  *memorial.Store
	send   SendFunc
	theme  memorial.Theme
	styles Styles

	// changes receives a token after every store mutation. It holds at most
	// one pending token, so the store never blocks on the UI.
	changes     chan struct{}
	unsubscribe func()

	coll      memorial.Collection
	shownID   string
	blocks    []MessageBlock
	memorials map[string]*MemorialBlock // keyed by message id

	running bool
	err     error
	ready   bool
	width   int
	height  int
}

// New creates a TUI Model over store. Edicts are submitted through send.
// The model subscribes to store immediately; call Close to unsubscribe.
func New(store *memorial.Store, send SendFunc, theme memorial.Theme) Model {
	ti := textinput.New()
	ti.Placeholder = "Draft your imperial edict here..."
	ti.Prompt = "朕 "
	ti.Focus()
	ti.CharLimit = 0

	changes := make(chan struct{}, 1)
	unsubscribe := store.Subscribe(func(memorial.Collection) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	return Model{
		Input:       ti,
		store:       store,
		send:        send,
		theme:       theme,
		styles:      NewStyles(theme),
		changes:     changes,
		unsubscribe: unsubscribe,
		coll:        store.Snapshot(),
		memorials:   make(map[string]*MemorialBlock),
	}
}

// Close removes the model's store subscription.
func (m Model) Close() {
	m.unsubscribe()
}

// Running returns whether an edict is awaiting its reply.
func (m Model) Running() bool { return m.running }

// Err returns the last error, if any.
func (m Model) Err() error { return m.err }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, listenForChanges(m.changes))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StoreChangedMsg:
		m.coll = m.store.Snapshot()
		m = m.refresh()
		return m, listenForChanges(m.changes)

	case SendDoneMsg:
		m.running = false
		if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
			m.err = msg.Err
		}
		return m, m.Input.Focus()

	case DeleteDoneMsg:
		if msg.Err != nil {
			m.err = msg.Err
		}
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)
	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())

	sw := sidebarWidth(m.width)
	if sw == 0 {
		return b.String()
	}
	sidebar := renderSidebar(m.coll, sw, m.height, m.styles)
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, b.String())
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	inputH := 1
	statusHeight := 1
	borderHeight := 2 // newlines between sections
	vpHeight := max(msg.Height-inputH-statusHeight-borderHeight, 1)
	vpWidth := msg.Width - sidebarWidth(msg.Width)

	m.width = msg.Width
	m.height = msg.Height
	if !m.ready {
		m.Viewport = viewport.New(vpWidth, vpHeight)
		m.ready = true
		m = m.refresh()
	} else {
		m.Viewport.Width = vpWidth
		m.Viewport.Height = vpHeight
		m.Viewport.SetContent(m.renderContent())
	}
	m.Input.Width = vpWidth - lipgloss.Width(m.Input.Prompt) - 1
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyEnter:
		if m.running {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		m.Input.SetValue("")
		m.Input.Blur()
		m.err = nil
		m.running = true
		return m, sendEdict(m.send, text)

	case tea.KeyCtrlN:
		m.store.Create()
		return m, nil

	case tea.KeyCtrlX:
		id := m.store.Snapshot().CurrentID
		if id == "" {
			return m, nil
		}
		return m, deleteSession(m.store, id)

	case tea.KeyCtrlUp:
		m.selectAdjacent(-1)
		return m, nil

	case tea.KeyCtrlDown:
		m.selectAdjacent(1)
		return m, nil

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.Viewport, cmd = m.Viewport.Update(msg)
		return m, cmd
	}

	if m.running {
		return m, nil
	}
	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

// selectAdjacent makes the session offset positions away from the current
// one current. Selection stops at either end of the list.
func (m Model) selectAdjacent(offset int) {
	c := m.store.Snapshot()
	for i, s := range c.Sessions {
		if s.ID != c.CurrentID {
			continue
		}
		j := i + offset
		if j >= 0 && j < len(c.Sessions) {
			m.store.Select(c.Sessions[j].ID)
		}
		return
	}
}

// refresh rebuilds the transcript blocks from the current session. Reply
// blocks are reused across refreshes so their rendering caches survive
// streaming.
func (m Model) refresh() Model {
	sess, _ := m.coll.Current()
	blocks := make([]MessageBlock, 0, len(sess.Messages))
	memorials := make(map[string]*MemorialBlock, len(sess.Messages))
	for _, msg := range sess.Messages {
		switch msg.Role {
		case memorial.RoleUser:
			blocks = append(blocks, NewEdictBlock(sanitize(msg.Content), m.styles))
		case memorial.RoleModel:
			if !msg.Streaming && msg.Content == "" {
				// A reply that failed before its first fragment.
				continue
			}
			if !msg.Streaming && msg.Content == memorial.FallbackReply {
				blocks = append(blocks, NewErrorBlock(msg.Content, m.theme, m.styles))
				continue
			}
			b, ok := m.memorials[msg.ID]
			if !ok {
				b = NewMemorialBlock(m.theme, m.styles)
			}
			b.SetContent(sanitize(msg.Content))
			b.SetStreaming(msg.Streaming)
			memorials[msg.ID] = b
			blocks = append(blocks, b)
		}
	}
	m.blocks = blocks
	m.memorials = memorials

	if !m.ready {
		return m
	}
	follow := sess.ID != m.shownID || m.Viewport.AtBottom()
	m.shownID = sess.ID
	m.Viewport.SetContent(m.renderContent())
	if follow {
		m.Viewport.GotoBottom()
	}
	return m
}

func (m Model) renderContent() string {
	if len(m.blocks) == 0 {
		return m.splash()
	}
	var b strings.Builder
	for i, block := range m.blocks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(block.View(m.Viewport.Width))
	}
	return b.String()
}

func (m Model) splash() string {
	text := strings.Join([]string{
		m.styles.Seal.Render("The Court is in Session"),
		"",
		m.styles.Accent.Render("Awaiting Your Majesty's Vermilion Brush..."),
		"",
		m.styles.Muted.Render("Draft your edict below. The ministers stand ready to advise."),
	}, "\n")
	return lipgloss.Place(m.Viewport.Width, m.Viewport.Height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().MaxWidth(m.Viewport.Width).Align(lipgloss.Center).Render(text))
}

func (m Model) statusLine() string {
	if m.err != nil {
		return m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err))
	}
	if m.running {
		return m.styles.Muted.Render("The Grand Councilor is composing a memorial...")
	}
	return m.styles.Muted.Render("enter send · ctrl+n new · ctrl+x dismiss · ctrl+↑↓ switch · ctrl+c quit")
}

// sendEdict runs send off the UI goroutine and reports completion.
func sendEdict(send SendFunc, text string) tea.Cmd {
	return func() tea.Msg {
		return SendDoneMsg{Err: send(context.Background(), text)}
	}
}

func deleteSession(store *memorial.Store, id string) tea.Cmd {
	return func() tea.Msg {
		return DeleteDoneMsg{Err: store.Delete(context.Background(), id)}
	}
}

// listenForChanges waits for the next store change.
func listenForChanges(changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-changes
		return StoreChangedMsg{}
	}
}
