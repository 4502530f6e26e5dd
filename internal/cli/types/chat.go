package types

// MessageRequest 是发送消息的请求体。对话 id 以两种拼写同时下发,
// 兼容不同版本的后端字段命名。
type MessageRequest struct {
	Content           string                 `json:"content"`
	ConversationID    string                 `json:"conversation_id,omitempty"`
	ConversationCamel string                 `json:"conversationId,omitempty"`
	Context           map[string]interface{} `json:"context,omitempty"`
}

// NewMessageRequest 构造带双拼写对话 id 的请求体。
func NewMessageRequest(content, conversationID string) MessageRequest {
	return MessageRequest{
		Content:           content,
		ConversationID:    conversationID,
		ConversationCamel: conversationID,
	}
}

// MessageResponse 是非流式发送消息的响应体。
type MessageResponse struct {
	ID             string `json:"id"`
	Content        string `json:"content"`
	Role           string `json:"role"`
	CreatedAt      string `json:"createdAt"`
	ConversationID string `json:"conversationId"`
}

// ConversationSummary 是对话列表里的条目。
type ConversationSummary struct {
	ID                 string `json:"id"`
	Title              string `json:"title"`
	LastMessagePreview string `json:"lastMessagePreview"`
	CreatedAt          string `json:"createdAt"`
	UpdatedAt          string `json:"updatedAt"`
}

// ConversationMessage 是服务端返回的历史消息。
type ConversationMessage struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

// Conversation 是 GET /api/v1/chat/conversations/{id} 的响应体。
type Conversation struct {
	ID        string                `json:"id"`
	Title     string                `json:"title"`
	Messages  []ConversationMessage `json:"messages"`
	CreatedAt string                `json:"createdAt"`
	UpdatedAt string                `json:"updatedAt"`
}

// UpdateTitleRequest 是重命名对话的请求体。
type UpdateTitleRequest struct {
	Title string `json:"title"`
}

// 反馈类型。
const (
	FeedbackThumbsUp   = "thumbsUp"
	FeedbackThumbsDown = "thumbsDown"
)

// FeedbackRequest 是消息反馈的请求体。
type FeedbackRequest struct {
	MessageID    string `json:"messageId"`
	FeedbackType string `json:"feedbackType"`
	Comment      string `json:"comment,omitempty"`
}

// FeedbackResponse 是消息反馈的响应体。
type FeedbackResponse struct {
	FeedbackRequest
	ID        string `json:"id"`
	CreatedAt string `json:"createdAt"`
}

// ErrorBody 是后端出错时的响应体, detail 里是人类可读的原因。
type ErrorBody struct {
	Detail string `json:"detail"`
}
