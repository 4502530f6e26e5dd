// Package tui 是聊天顾问的终端交互界面。
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/lvraikkonen/azure-calculator/internal/advisor"
	"github.com/lvraikkonen/azure-calculator/internal/cart"
	"github.com/lvraikkonen/azure-calculator/internal/chat"
	"github.com/lvraikkonen/azure-calculator/internal/cli/ui"
	"github.com/lvraikkonen/azure-calculator/internal/domain/entity"
	"github.com/lvraikkonen/azure-calculator/internal/stream"
)

// UI configuration constants
const (
	defaultInputWidth     = 100
	defaultViewportWidth  = 100
	defaultViewportHeight = 30
	defaultWindowWidth    = 100
	defaultWindowHeight   = 40
	inputCharLimit        = 4000
	inputHeightReserved   = 2
	statusHeightReserved  = 3
	minContentHeight      = 10

	mockChunkDelay = 300 * time.Millisecond
)

// Style definitions
var (
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	boldStyle   = lipgloss.NewStyle().Bold(true)
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	chipStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("237")).
			Padding(0, 1)
)

// streamState represents the state of streaming response
type streamState int

const (
	streamIdle streamState = iota
	streamStreaming
)

// Options 是聊天界面的依赖与配置。
type Options struct {
	// Transport 为 nil 时走本地模拟流。
	Transport stream.Transport
	Manager   *chat.Manager
	Advisor   *advisor.Advisor
	Cart      *cart.Cart
	CartStore *cart.Store
	Currency  string
	Logger    *slog.Logger
}

// ChatProgram encapsulates the chat TUI program
type ChatProgram struct {
	model chatModel
}

// NewChatProgram creates a new chat program instance
func NewChatProgram(opts Options) *ChatProgram {
	return &ChatProgram{model: initialModel(opts)}
}

// Run starts the chat TUI program
func (p *ChatProgram) Run() error {
	program := tea.NewProgram(p.model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// streamEvent 把会话回调桥接进 Bubble Tea 消息循环。
type streamEvent struct {
	chunk      string
	structured *stream.StructuredData
	rendered   string
	err        error
	kind       eventKind
}

type eventKind int

const (
	eventChunk eventKind = iota
	eventStructured
	eventComplete
	eventError
)

// chatModel is the Bubble Tea model containing all chat interface state
type chatModel struct {
	// Dependencies
	opts Options

	// UI components
	input       textinput.Model
	contentView viewport.Model
	spin        spinner.Model

	// Streaming response state
	state          streamState
	content        string
	assistantStart int  // 本轮助手回复在 content 里的起点, 终稿覆盖用
	gotChunk       bool // 是否已收到首个片段, 控制思考动画

	token  string // chat.Manager 的流写入令牌
	cancel func()
	events chan streamEvent

	// Advisor state
	bundle      *entity.Bundle
	suggestions []string
	suggestIdx  int

	// Error state
	err error

	// Window dimensions
	width  int
	height int
}

// initialModel creates the initial chat model
func initialModel(opts Options) chatModel {
	input := textinput.New()
	input.Placeholder = ""
	input.Focus()
	input.CharLimit = inputCharLimit
	input.Width = defaultInputWidth
	input.Prompt = ""
	input.TextStyle = lipgloss.NewStyle()
	input.PromptStyle = lipgloss.NewStyle()

	contentViewport := viewport.New(defaultViewportWidth, defaultViewportHeight)
	contentViewport.SetContent("")

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return chatModel{
		opts:        opts,
		input:       input,
		contentView: contentViewport,
		spin:        sp,
		state:       streamIdle,
		width:       defaultWindowWidth,
		height:      defaultWindowHeight,
	}
}

// Init initializes the model (Bubble Tea interface)
func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

// Message type definitions
type (
	streamEventMsg struct{ event streamEvent }
	streamDoneMsg  struct{}
)

// Update processes messages and updates the model (Bubble Tea interface)
func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyPress(msg)...)

	case tea.WindowSizeMsg:
		m.handleWindowResize(msg)

	case streamEventMsg:
		m.handleEvent(msg.event)
		if m.state == streamStreaming {
			cmds = append(cmds, waitForEvent(m.events))
		}

	case streamDoneMsg:
		// 事件通道关闭, 流已取消或结束

	case spinner.TickMsg:
		if m.state == streamStreaming && !m.gotChunk {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	// 非流式状态下更新输入框
	if m.state != streamStreaming {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKeyPress handles keyboard input
func (m *chatModel) handleKeyPress(msg tea.KeyMsg) []tea.Cmd {
	var cmds []tea.Cmd

	switch msg.Type {
	case tea.KeyCtrlC:
		m.stopStream()
		cmds = append(cmds, tea.Quit)

	case tea.KeyEsc:
		if m.state == streamStreaming {
			m.stopStream()
			m.refreshContent()
		} else {
			cmds = append(cmds, tea.Quit)
		}

	case tea.KeyEnter:
		if m.state != streamStreaming {
			text := strings.TrimSpace(m.input.Value())
			if text != "" {
				cmds = append(cmds, m.startStreaming(text)...)
			}
		}

	case tea.KeyTab:
		// Tab 轮流把建议填进输入框
		if m.state != streamStreaming && len(m.suggestions) > 0 {
			m.input.SetValue(m.suggestions[m.suggestIdx%len(m.suggestions)])
			m.input.CursorEnd()
			m.suggestIdx++
		}

	case tea.KeyCtrlR:
		if m.state != streamStreaming && m.bundle != nil {
			m.applyBundle()
		}

	case tea.KeyUp:
		m.contentView.LineUp(1)

	case tea.KeyDown:
		m.contentView.LineDown(1)

	case tea.KeyPgUp:
		m.contentView.ViewUp()

	case tea.KeyPgDown:
		m.contentView.ViewDown()
	}

	return cmds
}

// handleWindowResize handles window size changes
func (m *chatModel) handleWindowResize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height

	contentHeight := msg.Height - inputHeightReserved - statusHeightReserved
	if contentHeight < minContentHeight {
		contentHeight = minContentHeight
	}

	m.contentView.Width = msg.Width
	m.contentView.Height = contentHeight
	m.input.Width = msg.Width - 3

	// Reapply wrapping when window size changes
	m.refreshContent()
}

// startStreaming 发起一轮流式问答。
func (m *chatModel) startStreaming(text string) []tea.Cmd {
	m.input.Reset()
	m.err = nil
	m.gotChunk = false
	m.suggestions = nil
	m.suggestIdx = 0

	// 添加用户消息到内容区
	m.content += "\n"
	m.content += boldStyle.Render("You")
	m.content += "\n"
	m.content += text
	m.content += "\n\n"
	m.content += accentStyle.Render("Assistant")
	m.content += "\n"
	m.assistantStart = len(m.content)

	m.token = m.opts.Manager.BeginStream(text)
	m.events = make(chan streamEvent, 16)
	events := m.events
	cb := stream.Callbacks{
		OnChunk: func(chunk string) {
			events <- streamEvent{kind: eventChunk, chunk: chunk}
		},
		OnStructuredData: func(data stream.StructuredData) {
			events <- streamEvent{kind: eventStructured, structured: &data}
		},
		OnComplete: func(rendered string) {
			events <- streamEvent{kind: eventComplete, rendered: rendered}
		},
		OnError: func(err error) {
			events <- streamEvent{kind: eventError, err: err}
		},
	}

	conversationID := ""
	if conv, ok := m.opts.Manager.Current(); ok {
		conversationID = conv.ID
	}

	if m.opts.Transport != nil {
		session := stream.NewSession(m.opts.Transport, cb, m.opts.Logger)
		m.cancel = session.Start(context.Background(), stream.Request{
			Content:        text,
			ConversationID: conversationID,
		})
	} else {
		m.cancel = stream.SimulateStream(stream.MockReplyChunks(text), mockChunkDelay, cb)
	}

	m.state = streamStreaming
	m.refreshContent()
	return []tea.Cmd{waitForEvent(m.events), m.spin.Tick}
}

// waitForEvent waits for the next streaming event
func waitForEvent(events chan streamEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return streamDoneMsg{}
		}
		return streamEventMsg{event: event}
	}
}

// handleEvent processes one bridged stream event
func (m *chatModel) handleEvent(event streamEvent) {
	// 取消后残留在通道里的事件直接丢弃
	if m.state != streamStreaming {
		return
	}
	switch event.kind {
	case eventChunk:
		m.gotChunk = true
		m.content += event.chunk
		if err := m.opts.Manager.AppendChunk(m.token, event.chunk); err != nil {
			m.opts.Logger.Debug("append chunk rejected", "error", err)
		}
		m.refreshContent()

	case eventStructured:
		m.applyStructured(*event.structured)
		m.refreshContent()

	case eventComplete:
		m.finishStream(event.rendered)

	case eventError:
		m.err = event.err
		m.opts.Logger.Error("stream failed", "error", event.err)
		if m.opts.Transport == nil {
			// 模拟模式用兜底文案顶替助手消息, 与网页端开发模式一致
			conv, _ := m.opts.Manager.Current()
			lastUser := ""
			for i := len(conv.Messages) - 1; i >= 0; i-- {
				if conv.Messages[i].Role == entity.RoleUser {
					lastUser = conv.Messages[i].Content
					break
				}
			}
			fallback := chat.FallbackReply(lastUser)
			if err := m.opts.Manager.FailStream(m.token, fallback); err == nil {
				m.content = m.content[:m.assistantStart] + fallback + "\n"
			}
		} else {
			// 真实后端出错只展示错误横幅, 已收到的部分内容保持原样
			if err := m.opts.Manager.FailStream(m.token, ""); err != nil {
				m.opts.Logger.Debug("fail rejected", "error", err)
			}
			m.content += "\n"
		}
		m.endStream()
		m.refreshContent()
	}
}

// applyStructured 应用结构化数据: 推荐方案、追问建议与服务端对话 id。
func (m *chatModel) applyStructured(data stream.StructuredData) {
	if data.ConversationID != "" {
		if err := m.opts.Manager.SetConversationID(m.token, data.ConversationID); err != nil {
			m.opts.Logger.Debug("conversation id rejected", "error", err)
		}
	}
	if data.Bundle != nil {
		m.bundle = data.Bundle
		m.opts.Advisor.SetBundle(data.Bundle)
	}
	if data.HasSuggestions {
		m.suggestions = data.Suggestions
		m.suggestIdx = 0
	}
}

// finishStream 收尾: 用终稿覆盖助手回复并渲染推荐卡片。
func (m *chatModel) finishStream(rendered string) {
	if rendered != "" {
		m.content = m.content[:m.assistantStart] + rendered
	}
	m.content += "\n"

	if m.bundle != nil {
		m.content += "\n" + ui.RenderBundleTree(m.bundle, m.opts.Currency) + "\n"
		m.content += dimStyle.Render("Ctrl+R 应用方案到清单") + "\n"
	}

	if err := m.opts.Manager.CompleteStream(m.token, rendered); err != nil {
		m.opts.Logger.Debug("complete rejected", "error", err)
	}
	m.endStream()
	m.refreshContent()
}

// stopStream 用户取消当前流。已收到的部分内容保留。
func (m *chatModel) stopStream() {
	if m.state != streamStreaming {
		return
	}
	// 回调可能正阻塞在通道发送上, 先泄流保证 cancel 能返回
	events := m.events
	drained := make(chan struct{})
	go func() {
		for range events {
		}
		close(drained)
	}()
	if m.cancel != nil {
		m.cancel()
	}
	// cancel 返回后不会再有回调写入, 关闭通道让泄流协程与挂起的 waitForEvent 退出
	close(events)
	<-drained
	if err := m.opts.Manager.CancelStream(m.token); err != nil {
		m.opts.Logger.Debug("cancel rejected", "error", err)
	}
	m.content += "\n" + dimStyle.Render("(已取消)") + "\n"
	m.endStream()
}

func (m *chatModel) endStream() {
	m.state = streamIdle
	m.cancel = nil
	m.events = nil
	m.token = ""
}

// applyBundle 把推荐方案应用到产品清单并持久化。
func (m *chatModel) applyBundle() {
	m.opts.Cart.ApplyBundle(m.bundle)
	if m.opts.CartStore != nil {
		if err := m.opts.CartStore.Save(m.opts.Cart); err != nil {
			m.err = err
			m.refreshContent()
			return
		}
	}
	m.content += "\n" + accentStyle.Render(fmt.Sprintf("✓ 已应用 %q 到产品清单 (%d 项)", m.bundle.Name, m.opts.Cart.Len())) + "\n"
	m.refreshContent()
}

// refreshContent refreshes the display content
func (m *chatModel) refreshContent() {
	display := m.content
	if m.err != nil {
		display += "\n" + errorStyle.Render(fmt.Sprintf("错误: %v", m.err))
	}

	// Auto-wrap handling
	if m.width > 0 {
		display = wrapText(display, m.width)
	}

	m.contentView.SetContent(display)
	m.contentView.GotoBottom()
}

// wrapText applies auto-wrapping to text, correctly handling Chinese character widths
func wrapText(text string, maxWidth int) string {
	if maxWidth <= 10 {
		return text
	}

	lines := strings.Split(text, "\n")
	var result strings.Builder

	for i, line := range lines {
		if i > 0 {
			result.WriteString("\n")
		}

		// Keep empty lines as-is
		if strings.TrimSpace(line) == "" {
			continue
		}

		result.WriteString(wrapLine(line, maxWidth))
	}

	return result.String()
}

// wrapLine wraps a single line of text, correctly handling Chinese character widths
func wrapLine(line string, maxWidth int) string {
	if runewidth.StringWidth(line) <= maxWidth {
		return line
	}

	var result strings.Builder
	var currentLine strings.Builder
	currentWidth := 0

	for _, r := range line {
		runeW := runewidth.RuneWidth(r)

		// If adding this character exceeds width, wrap first
		if currentWidth+runeW > maxWidth && currentWidth > 0 {
			result.WriteString(currentLine.String())
			result.WriteString("\n")
			currentLine.Reset()
			currentWidth = 0
		}

		currentLine.WriteRune(r)
		currentWidth += runeW
	}

	if currentLine.Len() > 0 {
		result.WriteString(currentLine.String())
	}

	return result.String()
}

// View renders the UI (Bubble Tea interface)
func (m chatModel) View() string {
	// Top status bar
	title := "新对话"
	if conv, ok := m.opts.Manager.Current(); ok {
		title = conv.Title
	}
	status := dimStyle.Render(fmt.Sprintf("对话 %s", title))
	if m.state == streamStreaming {
		if m.gotChunk {
			status += dimStyle.Render(" • 生成中...")
		} else {
			status += " " + m.spin.View() + dimStyle.Render("思考中...")
		}
	}

	// Content area
	content := m.contentView.View()

	// Suggestion chips
	chips := ""
	if m.state != streamStreaming && len(m.suggestions) > 0 {
		parts := make([]string, 0, len(m.suggestions))
		for _, s := range m.suggestions {
			parts = append(parts, chipStyle.Render(s))
		}
		chips = strings.Join(parts, " ")
	}

	// Input area
	var inputView string
	if m.state == streamStreaming {
		inputView = dimStyle.Render("> ") + dimStyle.Render("等待回复完成... (Esc 取消)")
	} else {
		inputView = promptStyle.Render("> ") + m.input.View()
	}

	// Bottom help text
	help := ""
	if m.state != streamStreaming {
		help = "Enter 发送 • ↑↓ 滚动 • Esc 退出"
		if len(m.suggestions) > 0 {
			help += " • Tab 填入建议"
		}
		if m.bundle != nil {
			help += " • Ctrl+R 应用方案"
		}
		help = dimStyle.Render(help)
	}

	parts := []string{status, "", content, ""}
	if chips != "" {
		parts = append(parts, chips)
	}
	parts = append(parts, inputView)
	if help != "" {
		parts = append(parts, help)
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
