package main

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/hicap-oss/parley/internal/client"
	"github.com/hicap-oss/parley/internal/proto"
	"github.com/hicap-oss/parley/internal/stream"
)

type state int

const (
	idleState state = iota
	submittedState
	streamingState
	stoppedState
)

// busy reports whether a request is in flight. While busy, submissions are
// ignored and the spinner runs.
func (s state) busy() bool {
	return s == submittedState || s == streamingState
}

const (
	chatInputHeight  = 3
	chatFooterHeight = 1
)

// Chat is the Bubble Tea model that drives one conversation: it submits
// requests to the relay, pumps the event stream into the assembler, and
// renders the growing transcript.
type Chat struct {
	config Config
	client *client.Client

	assembler *stream.Assembler
	tapper    *stream.Tapper
	debug     *stream.Buffer

	state         state
	stream        *client.Stream
	cancelRequest context.CancelFunc

	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner
	glam     *glamour.TermRenderer

	width     int
	height    int
	showDebug bool
	err       parleyError
	quitting  bool
}

func newChat(cfg Config, cl *client.Client, messages []proto.Message) *Chat {
	ta := textarea.New()
	ta.Placeholder = "Send a message..."
	ta.ShowLineNumbers = false
	ta.SetHeight(chatInputHeight)
	ta.Focus()

	a := stream.NewAssembler()
	for _, msg := range messages {
		a.Append(msg)
	}

	return &Chat{
		config:    cfg,
		client:    cl,
		assembler: a,
		tapper:    &stream.Tapper{},
		debug:     &stream.Buffer{},
		textarea:  ta,
		viewport:  viewport.New(80, 20),
	}
}

// streamStartedMsg is a tea.Msg carrying the opened response stream.
type streamStartedMsg struct{ stream *client.Stream }

// streamEventMsg is a tea.Msg carrying one decoded relay event.
type streamEventMsg struct{ event proto.Event }

// streamClosedMsg is a tea.Msg signaling that the stream is exhausted.
type streamClosedMsg struct{ err error }

func (m *Chat) startRequestCmd(ctx context.Context, req proto.Request, tap *stream.Tap) tea.Cmd {
	return func() tea.Msg {
		s, err := m.client.Stream(ctx, req, tap)
		if err != nil {
			return parleyError{err, "There was a problem reaching the relay."}
		}
		return streamStartedMsg{s}
	}
}

func receiveEventCmd(s *client.Stream) tea.Cmd {
	return func() tea.Msg {
		if s.Next() {
			return streamEventMsg{s.Current()}
		}
		return streamClosedMsg{err: s.Err()}
	}
}

// Init implements tea.Model.
func (m *Chat) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (m *Chat) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if m.state.busy() {
				m.stop()
			}
			m.quitting = true
			return m, tea.Quit
		case "esc":
			if m.state.busy() {
				m.stop()
				return m, nil
			}
		case "ctrl+d":
			m.showDebug = !m.showDebug
			m.syncViewport()
			return m, nil
		case "enter":
			if cmd := m.submit(); cmd != nil {
				return m, cmd
			}
		}

	case stepSpinnerMsg:
		if m.state.busy() {
			m.spinner = m.spinner.step()
			return m, stepSpinner()
		}
		return m, nil

	case streamStartedMsg:
		if m.state != submittedState {
			// The user stopped while the request was connecting.
			_ = msg.stream.Close()
			m.finishTurn()
			return m, nil
		}
		m.stream = msg.stream
		m.state = streamingState
		return m, receiveEventCmd(m.stream)

	case streamEventMsg:
		switch m.state {
		case streamingState:
			m.assembler.Apply(msg.event)
			m.syncViewport()
			return m, receiveEventCmd(m.stream)
		case stoppedState:
			// Late event after stop: drop it, keep draining to the close.
			return m, receiveEventCmd(m.stream)
		}
		return m, nil

	case streamClosedMsg:
		if msg.err != nil && m.state == streamingState {
			m.err = parleyError{msg.err, "The response stream failed."}
		}
		m.finishTurn()
		return m, nil

	case parleyError:
		if m.state == stoppedState && errors.Is(msg, context.Canceled) {
			m.finishTurn()
			return m, nil
		}
		m.err = msg
		m.finishTurn()
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// submit starts a new request from the textarea content. It is a no-op
// unless the machine is idle: in-flight requests keep their slot, and a
// stopped turn must finish draining before the next one starts.
func (m *Chat) submit() tea.Cmd {
	if m.state != idleState {
		return nil
	}
	text := strings.TrimSpace(m.textarea.Value())
	if text == "" {
		return nil
	}

	m.err = parleyError{}
	m.debug.Clear()
	m.assembler.Append(proto.TextMessage(proto.RoleUser, text))
	m.textarea.Reset()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelRequest = cancel
	tap := m.tapper.Activate(stream.NewTap(m.debug.Append))

	m.state = submittedState
	req := proto.Request{
		Messages: m.assembler.Transcript(),
		Model:    m.config.Model,
		System:   m.config.System,
	}
	m.syncViewport()
	return tea.Batch(m.startRequestCmd(ctx, req, tap), stepSpinner())
}

// stop cancels the in-flight request and keeps whatever content has arrived.
func (m *Chat) stop() {
	if !m.state.busy() {
		return
	}
	m.state = stoppedState
	if m.cancelRequest != nil {
		m.cancelRequest()
	}
	m.tapper.Release()
	m.assembler.FinalizeOpen()
	m.syncViewport()
}

// finishTurn returns the model to idle, whatever path the request took.
func (m *Chat) finishTurn() {
	if m.stream != nil {
		_ = m.stream.Close()
		m.stream = nil
	}
	m.tapper.Release()
	m.assembler.FinalizeOpen()
	m.cancelRequest = nil
	m.state = idleState
	m.textarea.Focus()
	m.syncViewport()
}

func (m *Chat) resize(width, height int) {
	m.width = width
	m.height = height
	m.textarea.SetWidth(width)
	m.viewport.Width = width
	vh := height - chatInputHeight - chatFooterHeight - 2
	if vh < 1 {
		vh = 1
	}
	m.viewport.Height = vh
	m.glam = nil
	m.syncViewport()
}

func (m *Chat) syncViewport() {
	wasAtBottom := m.viewport.AtBottom()
	if m.showDebug {
		m.viewport.SetContent(m.debugView())
	} else {
		m.viewport.SetContent(m.renderTranscript())
	}
	if wasAtBottom {
		m.viewport.GotoBottom()
	}
}

func (m *Chat) debugView() string {
	raw := m.debug.String()
	if raw == "" {
		raw = stdoutStyles().Comment.Render("No raw data for the current response yet.")
	}
	return stdoutStyles().DebugTitle.String() + "\n\n" + raw
}

func (m *Chat) renderTranscript() string {
	md := proto.Conversation(m.assembler.Render()).String()
	if !isOutputTTY() {
		return md
	}
	if m.glam == nil {
		width := m.width
		if width <= 0 {
			width = 80
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		m.glam = r
	}
	out, err := m.glam.Render(md)
	if err != nil {
		return md
	}
	return out
}

func (m *Chat) errorView() string {
	if m.err.err == nil {
		return ""
	}
	s := stdoutStyles()
	return s.ErrPadding.Render(
		s.ErrorHeader.String() + " " + s.ErrorDetails.Render(m.err.reason+" "+m.err.Error()),
	)
}

// View implements tea.Model.
func (m *Chat) View() string {
	if m.quitting {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")
	if view := m.errorView(); view != "" {
		sb.WriteString(view)
		sb.WriteString("\n")
	}
	if m.state.busy() {
		sb.WriteString(m.spinner.View())
		sb.WriteString("\n")
	}
	sb.WriteString(m.textarea.View())
	sb.WriteString("\n")
	sb.WriteString(m.footerView())
	return sb.String()
}

func (m *Chat) footerView() string {
	s := stdoutStyles()
	hints := []string{"enter: send", "esc: stop", "ctrl+d: raw stream", "ctrl+c: quit"}
	return s.Comment.Render(strings.Join(hints, " • "))
}

// Messages returns the finalized transcript.
func (m *Chat) Messages() []proto.Message {
	return m.assembler.Transcript()
}

// Err returns the last request error, if any.
func (m *Chat) Err() error {
	return m.err.err
}
