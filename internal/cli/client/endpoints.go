package client

// 后端 API 路径。messages 结尾的斜杠与后端路由保持一致, 去掉会 307。
const (
	endpointLogin            = "/api/v1/auth/login"
	endpointMessages         = "/api/v1/chat/messages/"
	endpointMessagesStream   = "/api/v1/chat/messages/stream"
	endpointConversations    = "/api/v1/chat/conversations"
	endpointConversationByID = "/api/v1/chat/conversations/%s"
	endpointFeedback         = "/api/v1/chat/feedback/"
)
