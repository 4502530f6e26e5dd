// Package chat 维护本地会话状态: 对话、消息与流式回复的生命周期。
package chat

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lvraikkonen/azure-calculator/internal/domain"
	"github.com/lvraikkonen/azure-calculator/internal/domain/entity"
)

// previewLimit 是对话列表摘要的截断长度, 按字符计。
const previewLimit = 50

// defaultTitle 是新对话的初始标题。
const defaultTitle = "新对话"

// Manager 持有当前对话与对话列表, 并用流令牌约束流式回复的写入:
// 只有最近一次 BeginStream 发出的令牌能继续修改助手消息, 旧流在新流
// 开始后的任何写入都会被拒绝。
type Manager struct {
	mu        sync.Mutex
	current   *entity.Conversation
	summaries []entity.ConversationSummary

	streamToken string
	assistantID string
	streaming   bool
}

// NewManager 创建空状态的管理器。
func NewManager() *Manager {
	return &Manager{}
}

// NewConversation 开启一个新对话并切换为当前对话。
func (m *Manager) NewConversation() entity.Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	conv := entity.Conversation{
		ID:        uuid.NewString(),
		Title:     defaultTitle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.current = &conv
	m.invalidateStreamLocked()
	return conv
}

// SetCurrent 切换当前对话, 例如从服务端加载历史对话后。
func (m *Manager) SetCurrent(conv entity.Conversation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = &conv
	m.invalidateStreamLocked()
}

// Current 返回当前对话的快照, 没有时返回 false。
func (m *Manager) Current() (entity.Conversation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return entity.Conversation{}, false
	}
	return cloneConversation(*m.current), true
}

// Streaming 报告是否有流式回复在进行中。
func (m *Manager) Streaming() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.streaming
}

// BeginStream 追加用户消息与空的助手消息, 进入流式状态并返回本次流
// 的写入令牌。没有当前对话时自动开启一个。
func (m *Manager) BeginStream(content string) (token string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		now := time.Now()
		m.current = &entity.Conversation{
			ID:        uuid.NewString(),
			Title:     defaultTitle,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	now := time.Now()
	user := entity.Message{
		ID:        uuid.NewString(),
		Role:      entity.RoleUser,
		Content:   content,
		CreatedAt: now,
	}
	assistant := entity.Message{
		ID:        uuid.NewString(),
		Role:      entity.RoleAssistant,
		CreatedAt: now,
	}
	m.current.Messages = append(m.current.Messages, user, assistant)
	m.current.UpdatedAt = now

	m.streamToken = uuid.NewString()
	m.assistantID = assistant.ID
	m.streaming = true
	return m.streamToken
}

// AppendChunk 把增量文本追加到本次流的助手消息上。
func (m *Manager) AppendChunk(token, chunk string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkTokenLocked(token); err != nil {
		return err
	}
	msg := m.assistantLocked()
	msg.Content += chunk
	m.current.UpdatedAt = time.Now()
	return nil
}

// SetConversationID 应用服务端下发的对话标识。流中途换 id 只影响
// 对话本身, 消息仍按本地 id 索引。
func (m *Manager) SetConversationID(token, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkTokenLocked(token); err != nil {
		return err
	}
	if id == "" || m.current.ID == id {
		return nil
	}
	old := m.current.ID
	m.current.ID = id
	for i := range m.summaries {
		if m.summaries[i].ID == old {
			m.summaries[i].ID = id
		}
	}
	return nil
}

// CompleteStream 用最终文本覆盖助手消息并结束流式状态,
// 同时刷新对话列表摘要。
func (m *Manager) CompleteStream(token, rendered string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkTokenLocked(token); err != nil {
		return err
	}
	msg := m.assistantLocked()
	if rendered != "" {
		msg.Content = rendered
	}
	m.finishStreamLocked(msg.Content)
	return nil
}

// FailStream 结束出错的流。fallback 非空时用它顶替助手消息内容,
// 否则移除空的助手消息占位。
func (m *Manager) FailStream(token, fallback string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkTokenLocked(token); err != nil {
		return err
	}
	msg := m.assistantLocked()
	if fallback != "" {
		msg.Content = fallback
		m.finishStreamLocked(msg.Content)
		return nil
	}
	if msg.Content == "" {
		m.removeMessageLocked(msg.ID)
	}
	m.streaming = false
	m.invalidateStreamLocked()
	return nil
}

// CancelStream 结束被用户取消的流。已经收到的部分内容保留。
func (m *Manager) CancelStream(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkTokenLocked(token); err != nil {
		return err
	}
	msg := m.assistantLocked()
	if msg.Content == "" {
		m.removeMessageLocked(msg.ID)
	}
	m.streaming = false
	m.invalidateStreamLocked()
	return nil
}

// RenameCurrent 更新当前对话标题并同步摘要。
func (m *Manager) RenameCurrent(title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return domain.NewInvalidInputError("没有进行中的对话")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.NewInvalidInputError("标题不能为空")
	}
	m.current.Title = title
	m.current.UpdatedAt = time.Now()
	for i := range m.summaries {
		if m.summaries[i].ID == m.current.ID {
			m.summaries[i].Title = title
		}
	}
	return nil
}

// Summaries 返回对话列表摘要的副本, 最新更新的在前。
func (m *Manager) Summaries() []entity.ConversationSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.ConversationSummary, len(m.summaries))
	copy(out, m.summaries)
	return out
}

// SetSummaries 整体替换对话列表, 例如从服务端同步后。
func (m *Manager) SetSummaries(list []entity.ConversationSummary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries = make([]entity.ConversationSummary, len(list))
	copy(m.summaries, list)
}

// FallbackReply 是后端不可用时顶替助手回复的固定文案。
func FallbackReply(content string) string {
	return fmt.Sprintf("[模拟响应] 我收到了你的消息: %q。请问你的业务类型是什么？", content)
}

// Preview 生成对话列表里的消息摘要。
func Preview(content string) string {
	runes := []rune(content)
	if len(runes) > previewLimit {
		runes = runes[:previewLimit]
	}
	return string(runes) + "..."
}

func (m *Manager) checkTokenLocked(token string) error {
	if m.streamToken == "" || token != m.streamToken {
		return domain.NewInvalidInputError("流已结束或被新的流取代")
	}
	return nil
}

// assistantLocked 返回本次流的助手消息, 令牌校验通过后必然存在。
func (m *Manager) assistantLocked() *entity.Message {
	for i := range m.current.Messages {
		if m.current.Messages[i].ID == m.assistantID {
			return &m.current.Messages[i]
		}
	}
	// 令牌有效但消息缺失说明状态被破坏, 补一条避免崩溃
	m.current.Messages = append(m.current.Messages, entity.Message{
		ID:        m.assistantID,
		Role:      entity.RoleAssistant,
		CreatedAt: time.Now(),
	})
	return &m.current.Messages[len(m.current.Messages)-1]
}

func (m *Manager) finishStreamLocked(finalContent string) {
	m.streaming = false
	m.current.UpdatedAt = time.Now()
	m.upsertSummaryLocked(finalContent)
	m.invalidateStreamLocked()
}

func (m *Manager) upsertSummaryLocked(finalContent string) {
	preview := Preview(finalContent)
	for i := range m.summaries {
		if m.summaries[i].ID == m.current.ID {
			m.summaries[i].Title = m.current.Title
			m.summaries[i].LastMessagePreview = preview
			m.summaries[i].UpdatedAt = m.current.UpdatedAt
			// 最近更新的挪到最前
			s := m.summaries[i]
			m.summaries = append(m.summaries[:i], m.summaries[i+1:]...)
			m.summaries = append([]entity.ConversationSummary{s}, m.summaries...)
			return
		}
	}
	m.summaries = append([]entity.ConversationSummary{{
		ID:                 m.current.ID,
		Title:              m.current.Title,
		LastMessagePreview: preview,
		CreatedAt:          m.current.CreatedAt,
		UpdatedAt:          m.current.UpdatedAt,
	}}, m.summaries...)
}

func (m *Manager) removeMessageLocked(id string) {
	for i := range m.current.Messages {
		if m.current.Messages[i].ID == id {
			m.current.Messages = append(m.current.Messages[:i], m.current.Messages[i+1:]...)
			return
		}
	}
}

func (m *Manager) invalidateStreamLocked() {
	m.streamToken = ""
	m.assistantID = ""
}

func cloneConversation(c entity.Conversation) entity.Conversation {
	out := c
	out.Messages = make([]entity.Message, len(c.Messages))
	copy(out.Messages, c.Messages)
	return out
}
