package entity

import "time"

// 消息角色
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message Chat消息（Domain 层纯粹对象）
type Message struct {
	ID        string    // 消息 ID
	Role      string    // user, assistant
	Content   string    // 消息内容
	CreatedAt time.Time // 消息时间戳
}

// Conversation Chat会话
type Conversation struct {
	ID        string    // 会话 ID（本地生成，服务端可在流中重新分配）
	Title     string    // 会话标题
	Messages  []Message // 消息历史
	CreatedAt time.Time // 创建时间
	UpdatedAt time.Time // 更新时间
}

// ConversationSummary 会话摘要（用于会话列表）
type ConversationSummary struct {
	ID                 string
	Title              string
	LastMessagePreview string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
